package feature

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotNumeric is returned by Make when no scoring function is given and the
// input is not a number or a slice of numbers
var ErrNotNumeric = errors.New("input is not numeric")

// Model is an identified, ordered vector of feature values.
// Values usually has one element, or two for separate home and away signals.
type Model struct {
	ID     string    `json:"id"`
	Values []float64 `json:"values"`
	// GoodData is nil when nobody judged the data, false when it is known to be insufficient
	GoodData      *bool   `json:"good_data,omitempty"`
	BadDataReason *string `json:"bad_data_reason,omitempty"`
	// Source is whatever the values were derived from, usually stats.TeamWindowStats
	Source any `json:"-"`
}

// Option annotates a model at construction
type Option func(*Model)

// WithGoodData marks the data as judged sufficient
func WithGoodData() Option {
	return func(m *Model) {
		ok := true
		m.GoodData = &ok
	}
}

// WithBadData marks the data as insufficient. An empty reason leaves the reason unset.
func WithBadData(reason string) Option {
	return func(m *Model) {
		bad := false
		m.GoodData = &bad
		if reason != "" {
			m.BadDataReason = &reason
		}
	}
}

// ScoringFn turns an input into feature values
type ScoringFn[T any] func(T) []float64

// Scalar adapts a single valued function into a ScoringFn
func Scalar[T any](fn func(T) float64) ScoringFn[T] {
	return func(in T) []float64 { return []float64{fn(in)} }
}

// Make builds a model from input using fn. With a nil fn the input itself must
// be a number or a slice of numbers.
func Make[T any](input T, id string, fn ScoringFn[T], opts ...Option) (Model, error) {
	var values []float64
	if fn != nil {
		values = fn(input)
	} else {
		v, err := numericValues(any(input))
		if err != nil {
			return Model{}, fmt.Errorf("failed to make model for %s: %w", id, err)
		}
		values = v
	}

	m := Model{ID: id, Values: values, Source: input}
	for _, opt := range opts {
		opt(&m)
	}
	return m, nil
}

// FromValues builds a model straight from numbers
func FromValues(id string, values ...float64) Model {
	return Model{ID: id, Values: values, Source: values}
}

func numericValues(in any) ([]float64, error) {
	switch v := in.(type) {
	case float64:
		return []float64{v}, nil
	case float32:
		return []float64{float64(v)}, nil
	case int:
		return []float64{float64(v)}, nil
	case int64:
		return []float64{float64(v)}, nil
	case []float64:
		out := make([]float64, len(v))
		copy(out, v)
		return out, nil
	case []int:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNotNumeric, in)
}

// Compare orders two models lexicographically on their values: the first
// element is the primary key, the second the secondary and so on. A model
// that is a strict prefix of the other sorts first.
func Compare(a, b Model) int {
	n := min(len(a.Values), len(b.Values))
	for i := 0; i < n; i++ {
		switch {
		case a.Values[i] < b.Values[i]:
			return -1
		case a.Values[i] > b.Values[i]:
			return 1
		}
	}
	switch {
	case len(a.Values) < len(b.Values):
		return -1
	case len(a.Values) > len(b.Values):
		return 1
	}
	return 0
}

// Equal reports whether both models hold identical values
func Equal(a, b Model) bool {
	return Compare(a, b) == 0
}

// Magnitude is the Euclidean norm of the values
func (m Model) Magnitude() float64 {
	var sum float64
	for _, v := range m.Values {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Arity is the number of values
func (m Model) Arity() int {
	return len(m.Values)
}

// IsBad reports whether the model was explicitly flagged as having insufficient data
func (m Model) IsBad() bool {
	return m.GoodData != nil && !*m.GoodData
}

func (m Model) String() string {
	parts := make([]string, len(m.Values))
	for i, v := range m.Values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprintf("%s[%s]", m.ID, strings.Join(parts, " "))
}

// Factory builds the model for one team. It receives only the team identity
// and pulls whatever statistics it needs itself.
type Factory func(team string) (Model, error)

// CreateModelsForAllTeams builds one independent model per id
func CreateModelsForAllTeams(factory Factory, ids []string) (map[string]Model, error) {
	models := make(map[string]Model, len(ids))
	for _, id := range ids {
		m, err := factory(id)
		if err != nil {
			return nil, fmt.Errorf("failed to create model for %s: %w", id, err)
		}
		models[id] = m
	}
	return models, nil
}

package predict

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/richard-senior/predictomatic/internal/logger"
	"github.com/richard-senior/predictomatic/pkg/feature"
	"github.com/richard-senior/predictomatic/pkg/results"
)

var (
	ErrArityMismatch = errors.New("models have different arity")
	ErrMissingModel  = errors.New("no model for team")
)

const noReason = "No reason given"

// Prediction is the called outcome of one fixture. Diagnostic is set when
// either model was flagged as bad data; the outcome is still usable.
type Prediction struct {
	Outcome    results.Outcome
	Margin     float64
	Diagnostic *string
}

// Predictor compares the home team's first value, plus any boost, with the
// away team's second value (or its first when the model is scalar).
type Predictor struct {
	Models             map[string]feature.Model
	HomeAdvantageBoost float64
	// Threshold is the margin that must be exceeded to call a win
	Threshold float64
	// DrawRange, when set, re-classifies margins inside [lo, hi] as draws
	DrawRange *[2]float64
}

func NewPredictor(models map[string]feature.Model) *Predictor {
	return &Predictor{Models: models}
}

// WithDrawRange sets an inclusive margin range that is always called a draw
func (p *Predictor) WithDrawRange(lo, hi float64) *Predictor {
	p.DrawRange = &[2]float64{lo, hi}
	return p
}

func (p *Predictor) Predict(home, away string) (Prediction, error) {
	hm, ok := p.Models[home]
	if !ok {
		return Prediction{}, fmt.Errorf("%w: %s", ErrMissingModel, home)
	}
	am, ok := p.Models[away]
	if !ok {
		return Prediction{}, fmt.Errorf("%w: %s", ErrMissingModel, away)
	}
	if hm.Arity() != am.Arity() {
		return Prediction{}, fmt.Errorf("%w: %s has %d values, %s has %d", ErrArityMismatch, home, hm.Arity(), away, am.Arity())
	}
	if hm.Arity() == 0 {
		return Prediction{}, fmt.Errorf("%w: %s and %s have no values", ErrArityMismatch, home, away)
	}

	homeMetric := hm.Values[0] + p.HomeAdvantageBoost
	awayMetric := am.Values[0]
	if am.Arity() > 1 {
		awayMetric = am.Values[1]
	}
	margin := homeMetric - awayMetric

	ret := Prediction{Outcome: p.classify(homeMetric, awayMetric, margin), Margin: margin}
	ret.Diagnostic = diagnostic(hm, am)
	if ret.Diagnostic != nil {
		logger.Debug("Prediction with bad data", home, away, *ret.Diagnostic)
	}
	return ret, nil
}

func (p *Predictor) classify(homeMetric, awayMetric, margin float64) results.Outcome {
	outcome := results.Draw
	if math.Abs(margin) > p.Threshold {
		if homeMetric > awayMetric {
			outcome = results.HomeWin
		} else if homeMetric < awayMetric {
			outcome = results.AwayWin
		}
	}
	if p.DrawRange != nil && margin >= p.DrawRange[0] && margin <= p.DrawRange[1] {
		outcome = results.Draw
	}
	return outcome
}

func diagnostic(models ...feature.Model) *string {
	var parts []string
	for _, m := range models {
		if !m.IsBad() {
			continue
		}
		reason := noReason
		if m.BadDataReason != nil && *m.BadDataReason != "" {
			reason = *m.BadDataReason
		}
		parts = append(parts, fmt.Sprintf("Bad model for %s - %s", m.ID, reason))
	}
	if len(parts) == 0 {
		return nil
	}
	d := strings.Join(parts, ", ")
	return &d
}

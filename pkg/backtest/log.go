package backtest

import (
	"fmt"

	"github.com/richard-senior/predictomatic/internal/logger"
	"github.com/richard-senior/predictomatic/pkg/persist"
	"github.com/richard-senior/predictomatic/pkg/predict"
	"github.com/richard-senior/predictomatic/pkg/results"
	"github.com/richard-senior/predictomatic/pkg/stats"
)

// PredictionEntry is one logged prediction, keyed on run, window and fixture
type PredictionEntry struct {
	RunID      string  `column:"run_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	Window     string  `column:"window_size" dbtype:"TEXT NOT NULL" primary:"true"`
	MatchDate  string  `column:"match_date" dbtype:"TEXT NOT NULL" primary:"true"`
	HomeTeam   string  `column:"home_team" dbtype:"TEXT NOT NULL" primary:"true"`
	AwayTeam   string  `column:"away_team" dbtype:"TEXT NOT NULL"`
	Predicted  string  `column:"predicted" dbtype:"TEXT NOT NULL"`
	Margin     float64 `column:"margin" dbtype:"REAL"`
	Actual     string  `column:"actual" dbtype:"TEXT NOT NULL"`
	HomeScore  int     `column:"home_score" dbtype:"INTEGER"`
	AwayScore  int     `column:"away_score" dbtype:"INTEGER"`
	Correct    bool    `column:"correct" dbtype:"BOOLEAN"`
	Variant    string  `column:"variant" dbtype:"TEXT"`
	Diagnostic string  `column:"diagnostic" dbtype:"TEXT"`
}

func (p *PredictionEntry) TableName() string { return "prediction_log" }

func (p *PredictionEntry) PrimaryKey() map[string]any {
	return map[string]any{
		"run_id":      p.RunID,
		"window_size": p.Window,
		"match_date":  p.MatchDate,
		"home_team":   p.HomeTeam,
	}
}

func newPredictionEntry(runID, variant string, w stats.WindowSpec, m results.MatchRecord, pred predict.Prediction, correct bool) *PredictionEntry {
	e := &PredictionEntry{
		RunID:     runID,
		Window:    w.String(),
		MatchDate: m.Date.Format(results.DateLayout),
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		Predicted: string(pred.Outcome),
		Margin:    pred.Margin,
		Actual:    string(m.Outcome()),
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
		Correct:   correct,
		Variant:   variant,
	}
	if pred.Diagnostic != nil {
		e.Diagnostic = *pred.Diagnostic
	}
	return e
}

// PredictionLog stores evaluated predictions for later analysis
type PredictionLog struct {
	db *persist.DB
}

// NewPredictionLog creates the prediction_log table if needed
func NewPredictionLog(db *persist.DB) (*PredictionLog, error) {
	if err := db.CreateTable(&PredictionEntry{}); err != nil {
		return nil, fmt.Errorf("failed to create prediction log: %w", err)
	}
	return &PredictionLog{db: db}, nil
}

// Record saves entries in one transaction
func (l *PredictionLog) Record(entries []*PredictionEntry) error {
	if len(entries) == 0 {
		return nil
	}
	objs := make([]persist.Persistable, len(entries))
	for i, e := range entries {
		objs[i] = e
	}
	if err := l.db.BulkSave(objs); err != nil {
		return fmt.Errorf("failed to record predictions: %w", err)
	}
	logger.Debug("Recorded predictions", len(entries))
	return nil
}

// Run returns every entry logged under runID, oldest fixture first
func (l *PredictionLog) Run(runID string) ([]PredictionEntry, error) {
	return persist.FindWhere[PredictionEntry](l.db, "run_id = ? ORDER BY match_date, home_team, window_size", runID)
}

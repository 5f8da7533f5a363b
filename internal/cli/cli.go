package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/richard-senior/predictomatic/internal/logger"
	"github.com/richard-senior/predictomatic/pkg/config"
	"github.com/richard-senior/predictomatic/pkg/persist"
	"github.com/richard-senior/predictomatic/pkg/results"
	"github.com/richard-senior/predictomatic/pkg/stats"
)

// ErrUsage is returned for unknown commands and bad flags
var ErrUsage = errors.New("usage error")

// App carries what every command needs
type App struct {
	Config *config.Config
	Out    io.Writer
	// Now is the default reference date
	Now func() time.Time
}

type command struct {
	summary string
	run     func(app *App, args []string) error
}

var commands = map[string]command{
	"import":   {"fetch results and store them", runImport},
	"stats":    {"windowed stats for one team", runStats},
	"league":   {"league table over a window", runLeague},
	"predict":  {"predict fixtures", runPredict},
	"backtest": {"evaluate prediction accuracy over a season", runBacktest},
}

// Run parses the global flags, loads configuration and runs one command
func Run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("predictomatic", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "YAML configuration file")
	dsn := fs.String("db", "", "results database, overrides the configuration")
	level := fs.String("loglevel", "", "log level: debug, info, warn, error")
	fs.Usage = func() { usage(fs, out) }
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dsn != "" {
		cfg.Database.DSN = *dsn
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	if err := configureLogging(cfg.Log); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		usage(fs, out)
		return fmt.Errorf("%w: no command given", ErrUsage)
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		usage(fs, out)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, rest[0])
	}

	logger.Debug("Running", rest[0], rest[1:])
	app := &App{Config: cfg, Out: out, Now: time.Now}
	return cmd.run(app, rest[1:])
}

func usage(fs *flag.FlagSet, out io.Writer) {
	fmt.Fprintln(out, "Usage: predictomatic [flags] <command> [command flags]")
	fmt.Fprintln(out, "\nCommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(out, "\nFlags:")
	fs.PrintDefaults()
}

func configureLogging(c config.LogConfig) error {
	level, err := logger.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	if c.Output != "c" {
		if err := logger.SetLogOutput(rune(c.Output[0]), c.File); err != nil {
			return err
		}
	}
	return nil
}

// openStore opens the configured database. The caller closes the returned DB.
func (app *App) openStore() (*persist.DB, *results.SQLStore, error) {
	db, err := persist.Open(app.Config.Database.Driver, app.Config.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	store := results.NewSQLStore(db)
	if err := store.Migrate(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, store, nil
}

// referenceDate parses a --date flag, defaulting to today
func (app *App) referenceDate(s string) (time.Time, error) {
	if s == "" {
		return results.Day(app.Now()), nil
	}
	d, err := results.ParseDay(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q, expected yyyy-mm-dd", ErrUsage, s)
	}
	return d, nil
}

// windowFlags registers --weeks and --samples; a positive --samples wins
type windowFlags struct {
	weeks   *int
	samples *int
}

func addWindowFlags(fs *flag.FlagSet, weeks, samples int) windowFlags {
	return windowFlags{
		weeks:   fs.Int("weeks", weeks, "duration window in weeks"),
		samples: fs.Int("samples", samples, "count window of the most recent matches, overrides --weeks"),
	}
}

func (w windowFlags) spec() (stats.WindowSpec, error) {
	if *w.samples > 0 {
		return stats.Samples(*w.samples), nil
	}
	if *w.weeks <= 0 {
		return stats.WindowSpec{}, fmt.Errorf("%w: window must be positive", ErrUsage)
	}
	return stats.Weeks(*w.weeks), nil
}

// venueFlags registers --only-home and --only-away
type venueFlags struct {
	home *bool
	away *bool
}

func addVenueFlags(fs *flag.FlagSet) venueFlags {
	return venueFlags{
		home: fs.Bool("only-home", false, "only count home matches"),
		away: fs.Bool("only-away", false, "only count away matches"),
	}
}

func (v venueFlags) homeOnly() (*bool, error) {
	switch {
	case *v.home && *v.away:
		return nil, fmt.Errorf("%w: --only-home and --only-away are exclusive", ErrUsage)
	case *v.home:
		return stats.Bool(true), nil
	case *v.away:
		return stats.Bool(false), nil
	}
	return nil, nil
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}
	return nil
}

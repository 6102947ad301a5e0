package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Every line carries a wall-clock timestamp
// such as "14:32:01.45". The level is LogInfo unless --verbose selects LogDebug.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one long-running step, such as a discovery pass, and logs
// its completion with the elapsed time. Use one per goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts timing now; call done when the step finishes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
// Example output: "Discovered 42 APIs (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
// A distinct type keeps them from colliding with keys set by other packages.
type ctxKey int

// loggerKey is the context key under which RootCommand stores the CLI logger.
const loggerKey ctxKey = 0

// withLogger returns a copy of ctx carrying l. RootCommand calls it before
// every subcommand so pipeline and server code reached only through a
// context still logs with the CLI's level and format.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger. Commands run
// outside RootCommand (tests calling a subcommand directly) get
// log.Default() instead of nil.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

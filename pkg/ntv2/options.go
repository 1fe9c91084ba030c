package ntv2

import (
	"io"

	"github.com/sirupsen/logrus"
)

// ParseOptions configures how a grid file is loaded and used.
type ParseOptions struct {
	// Solver bounds the fixed-point iteration used for inverse shifts.
	Solver SolverOptions

	// Logger receives load and solver events. Nil discards them.
	Logger logrus.FieldLogger

	// Name labels the grid in logs and coverage output. Open defaults it
	// to the file name.
	Name string
}

// DefaultParseOptions returns default options.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		Solver: DefaultSolverOptions(),
		Logger: nil,
	}
}

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func loggerOrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return discardLogger
	}
	return l
}

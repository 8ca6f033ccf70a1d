package grid

import (
	"io"
	"log/slog"
	"os"
)

// PipeName is the file name designating the session's standard input for
// reads and standard output for writes.
const PipeName = "="

// Session carries the state shared by grid operations: the logger and the
// streams used for piping. A Session is not safe for concurrent use by
// multiple goroutines.
type Session struct {
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer

	// pipe stays positioned across operations so that a header read from
	// standard input is followed by its data.
	pipe *Reader
}

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithStdin sets the stream read when the file name is PipeName.
func WithStdin(r io.Reader) Option {
	return func(s *Session) { s.stdin = r }
}

// WithStdout sets the stream written when the file name is PipeName.
func WithStdout(w io.Writer) Option {
	return func(s *Session) { s.stdout = w }
}

// NewSession creates a new Session with the given options applied.
func NewSession(opts ...Option) *Session {
	s := &Session{
		logger: slog.New(slog.DiscardHandler),
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// IsPipe reports whether name designates a standard stream.
func IsPipe(name string) bool {
	return name == PipeName
}

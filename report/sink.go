// Package report produces run reports: the parameter summary, convergence
// snapshots, tallies, correct-vs-rejected tables and confusion matrices.
//
// Every report line goes through a Sink, which mirrors it to the long
// outfile and to standard error.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Sink writes every line to a file and to a second stream (normally
// os.Stderr). Writes are unbuffered on both sides so a crash loses no
// completed line.
type Sink struct {
	file *os.File
	out  []io.Writer
}

// Open creates the sink. path may be empty, in which case only stream is
// written.
func Open(path string, stream io.Writer) (*Sink, error) {
	s := &Sink{}
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, errors.Wrapf(err, "creating long outfile %s", path)
		}
		s.file = f
		s.out = append(s.out, f)
	}
	if stream != nil {
		s.out = append(s.out, stream)
	}
	return s, nil
}

// Write sends p to every destination.
func (s *Sink) Write(p []byte) (int, error) {
	for _, w := range s.out {
		if _, err := w.Write(p); err != nil {
			return 0, errors.Wrap(err, "writing report")
		}
	}
	return len(p), nil
}

// Printf formats one report line.
func (s *Sink) Printf(format string, args ...interface{}) {
	fmt.Fprintf(s, format, args...)
}

// Close closes the file side.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

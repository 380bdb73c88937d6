package proc

import (
	"bufio"
	"context"
	"io"
)

// LineSource exposes a reader as a demand-driven line stream. Reads happen
// only when Next is called, so a gated consumer that withholds demand lets
// the pipe fill and backpressures the writing process.
type LineSource struct {
	scanner *bufio.Scanner
}

// NewLineSource wraps r in a line-by-line source.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{scanner: bufio.NewScanner(r)}
}

// Next returns the next line, or io.EOF when the stream ends. The underlying
// read is blocking; ctx is checked before demand is issued.
func (s *LineSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

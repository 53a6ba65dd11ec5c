package split

import (
	"fmt"
	"io"

	"github.com/matja/mdf2wav/cdda"
)

// Run pulls blocks from r until the stream is exhausted and feeds them
// to s. A short or empty read is end of stream, not an error. The open
// track, if any, is closed on every return path.
func Run(r io.Reader, s *Session) error {
	var b cdda.Block
	for {
		err := cdda.ReadBlock(r, &b)
		if err == io.EOF {
			return s.Close()
		}
		if err != nil {
			s.Close()
			return fmt.Errorf("read block: %w", err)
		}
		if err := s.NextBlock(&b); err != nil {
			s.Close()
			return err
		}
	}
}

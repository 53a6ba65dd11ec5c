package split

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrTrackExists is returned by a SinkCreator when the requested track
// name is already taken. Splitting stops rather than overwrite.
var ErrTrackExists = errors.New("track file already exists")

// Sink is one open track file. The header is patched in place when the
// track closes, so an append-only writer is not enough.
type Sink interface {
	io.WriteSeeker
	io.Closer
}

// SinkCreator opens new track sinks by name. Create must fail with
// ErrTrackExists when the name is taken; it must never truncate an
// existing track.
type SinkCreator interface {
	Create(name string) (Sink, error)
}

// Dir creates track files inside a directory on the host filesystem.
type Dir string

func (d Dir) Create(name string) (Sink, error) {
	path := filepath.Join(string(d), name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%q: %w, won't overwrite", path, ErrTrackExists)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ensure interface conformation
var _ SinkCreator = Dir(".")

// Package split demultiplexes a raw CD-DA image stream into one WAV
// file per track, detecting track boundaries from the subcode P
// channel in a single forward pass.
package split

import (
	"fmt"
	"log"
	"os"

	"github.com/matja/mdf2wav/cdda"
	"github.com/matja/mdf2wav/wav"
)

// Session splits incoming blocks into track files. At most one track is
// open at a time: a track begins on every block whose subcode marks a
// track start, and ends at the next track start or at end of stream.
//
// Blocks before the first track start are discarded. A stream with no
// track starts at all produces no files, which is not an error.
//
// The zero value with a Creator set is ready to use.
type Session struct {
	Creator SinkCreator // destination for track files
	Prefix  string      // track name prefix, "track_" if empty
	Logger  *log.Logger // per-track diagnostics, stderr if nil

	track       Sink
	name        string
	trackNum    int
	frames      uint32
	offset      int64
	startOffset int64
}

// NextBlock advances the state machine by one block. A sink creation
// failure is fatal: the caller must stop feeding blocks and report it.
func (s *Session) NextBlock(b *cdda.Block) error {
	if b.IsTrackStart() {
		if err := s.closeTrack(); err != nil {
			return err
		}
		s.trackNum++
		if err := s.startTrack(); err != nil {
			return err
		}
	}
	if s.track != nil {
		if _, err := s.track.Write(b.Payload()); err != nil {
			return fmt.Errorf("write %v: %w", s.name, err)
		}
		s.frames += cdda.FramesPerSector
	}
	s.offset += cdda.BytesPerBlock
	return nil
}

// Close finishes the currently open track, if any: the header is
// patched with the final frame count and the sink is closed. It is
// called by the driver on end of stream and is safe to call when no
// track is open.
func (s *Session) Close() error {
	return s.closeTrack()
}

func (s *Session) startTrack() error {
	s.frames = 0
	s.startOffset = s.offset
	s.name = fmt.Sprintf("%s%02d.wav", s.prefix(), s.trackNum)
	sink, err := s.Creator.Create(s.name)
	if err != nil {
		return err
	}
	// speculative header, patched with the real size on close
	if err := wav.WriteHeader(sink, 0); err != nil {
		sink.Close()
		return fmt.Errorf("write header %v: %w", s.name, err)
	}
	s.track = sink
	return nil
}

func (s *Session) closeTrack() error {
	if s.track == nil {
		return nil
	}
	end := s.offset
	payloadBytes := (end - s.startOffset) * cdda.BytesPerSector / cdda.BytesPerBlock
	durationS := payloadBytes / (cdda.SampleRate * cdda.BytesPerFrame)
	s.logger().Printf("%s: duration_s:%d start_offset:%d end_offset:%d",
		s.name, durationS, s.startOffset, end)

	err := wav.WriteHeader(s.track, s.frames)
	cerr := s.track.Close()
	s.track = nil
	if err != nil {
		return fmt.Errorf("patch header %v: %w", s.name, err)
	}
	if cerr != nil {
		return fmt.Errorf("close %v: %w", s.name, cerr)
	}
	return nil
}

func (s *Session) prefix() string {
	if s.Prefix == "" {
		return "track_"
	}
	return s.Prefix
}

func (s *Session) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(os.Stderr, "", 0)
	}
	return s.Logger
}

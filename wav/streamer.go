package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/faiface/beep"

	"github.com/matja/mdf2wav/cdda"
)

// Format is the beep format of every track file this tool produces.
var Format = beep.Format{
	SampleRate:  cdda.SampleRate,
	NumChannels: cdda.Channels,
	Precision:   cdda.BytesPerSample,
}

// Streamer plays back a track file produced by this tool. It implements
// beep.StreamSeekCloser so ripped tracks can be fed straight to a
// speaker or further beep processing.
type Streamer struct {
	f        *os.File
	dataSize int64
	pos      int64 // frames into the data chunk
	err      error
}

// NewStreamer opens a track file and validates its header.
func NewStreamer(path string) (*Streamer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	hb := make([]byte, HeaderSize)
	if _, err := io.ReadFull(f, hb); err != nil {
		f.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}
	h, err := Decode(hb)
	if err != nil {
		f.Close()
		return nil, err
	}
	if h.AudioFormat != formatPCM || h.Channels != cdda.Channels ||
		h.SampleRate != cdda.SampleRate || h.BitsPerSample != cdda.BitsPerSample {
		f.Close()
		return nil, fmt.Errorf("wav: %v: not CD-DA format", path)
	}
	return &Streamer{f: f, dataSize: int64(h.DataSize)}, nil
}

func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}
	remain := s.dataSize/cdda.BytesPerFrame - s.pos
	if remain <= 0 {
		return 0, false
	}
	if int64(len(samples)) > remain {
		samples = samples[:remain]
	}
	buf := make([]byte, len(samples)*cdda.BytesPerFrame)
	if _, err := io.ReadFull(s.f, buf); err != nil {
		s.err = err
		return 0, false
	}
	for i := range samples {
		samples[i][0], samples[i][1] = extractFrame(buf[i*cdda.BytesPerFrame:])
	}
	s.pos += int64(len(samples))
	return len(samples), true
}

func extractFrame(p []byte) (l, r float64) {
	li := int16(binary.LittleEndian.Uint16(p[0:2]))
	ri := int16(binary.LittleEndian.Uint16(p[2:4]))
	return float64(li) / (1 << 15), float64(ri) / (1 << 15)
}

func (s *Streamer) Err() error {
	return s.err
}

func (s *Streamer) Len() int {
	return int(s.dataSize / cdda.BytesPerFrame)
}

func (s *Streamer) Position() int {
	return int(s.pos)
}

func (s *Streamer) Seek(p int) error {
	if p < 0 || p > s.Len() {
		return fmt.Errorf("wav: seek %d out of bounds (track length %d frames)", p, s.Len())
	}
	_, err := s.f.Seek(HeaderSize+int64(p)*cdda.BytesPerFrame, io.SeekStart)
	if err != nil {
		return err
	}
	s.pos = int64(p)
	return nil
}

func (s *Streamer) Close() error {
	return s.f.Close()
}

var _ beep.StreamSeekCloser = (*Streamer)(nil)

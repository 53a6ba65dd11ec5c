// Package wav reads and writes the canonical 44-byte RIFF/WAVE header
// used for CD-quality PCM track files, and can stream samples back out
// of them.
package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/matja/mdf2wav/cdda"
)

// HeaderSize is the size of a canonical PCM WAV header.
const HeaderSize = 44

const (
	formatPCM    = 1
	subchunk1PCM = 16
)

// Header holds the fields of a PCM WAV header. Every track produced by
// this tool shares the fixed CD-DA format; only DataSize varies.
type Header struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataSize      uint32
}

// NewHeader builds a CD-DA format header for a track of the given
// number of frames (one frame is one 16-bit sample per channel).
//
// Size fields are unsigned 32-bit and wrap for tracks over 4GiB of
// payload, the same as every other RIFF writer.
func NewHeader(frames uint32) Header {
	const blockAlign = cdda.BytesPerFrame
	return Header{
		AudioFormat:   formatPCM,
		Channels:      cdda.Channels,
		SampleRate:    cdda.SampleRate,
		ByteRate:      cdda.SampleRate * blockAlign,
		BlockAlign:    blockAlign,
		BitsPerSample: cdda.BitsPerSample,
		DataSize:      frames * blockAlign,
	}
}

// Encode serializes the header in the canonical little-endian layout.
func (h Header) Encode() []byte {
	b := make([]byte, HeaderSize)
	copy(b[0:4], "RIFF")
	binary.LittleEndian.PutUint32(b[4:8], 36+h.DataSize)
	copy(b[8:12], "WAVE")
	copy(b[12:16], "fmt ")
	binary.LittleEndian.PutUint32(b[16:20], subchunk1PCM)
	binary.LittleEndian.PutUint16(b[20:22], h.AudioFormat)
	binary.LittleEndian.PutUint16(b[22:24], h.Channels)
	binary.LittleEndian.PutUint32(b[24:28], h.SampleRate)
	binary.LittleEndian.PutUint32(b[28:32], h.ByteRate)
	binary.LittleEndian.PutUint16(b[32:34], h.BlockAlign)
	binary.LittleEndian.PutUint16(b[34:36], h.BitsPerSample)
	copy(b[36:40], "data")
	binary.LittleEndian.PutUint32(b[40:44], h.DataSize)
	return b
}

// Decode parses a header previously produced by Encode.
func Decode(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("wav: header too short: %d bytes", len(b))
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return Header{}, fmt.Errorf("wav: not a RIFF/WAVE header")
	}
	if string(b[36:40]) != "data" {
		return Header{}, fmt.Errorf("wav: missing data chunk")
	}
	return Header{
		AudioFormat:   binary.LittleEndian.Uint16(b[20:22]),
		Channels:      binary.LittleEndian.Uint16(b[22:24]),
		SampleRate:    binary.LittleEndian.Uint32(b[24:28]),
		ByteRate:      binary.LittleEndian.Uint32(b[28:32]),
		BlockAlign:    binary.LittleEndian.Uint16(b[32:34]),
		BitsPerSample: binary.LittleEndian.Uint16(b[34:36]),
		DataSize:      binary.LittleEndian.Uint32(b[40:44]),
	}, nil
}

// WriteHeader writes the header for a track of the given frame count
// at offset 0 of ws, seeking there first. It is called once with a
// zero count when a track file is opened, and again with the real
// count to patch the header once the track length is known.
func WriteHeader(ws io.WriteSeeker, frames uint32) error {
	if _, err := ws.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err := ws.Write(NewHeader(frames).Encode())
	return err
}

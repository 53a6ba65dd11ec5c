package cdda

import "io"

// Block is one unit of a raw disc image with subchannel data: a full
// sector of PCM audio followed by 96 bytes of interleaved subcode
// channel data describing it.
type Block [BytesPerBlock]byte

// Payload returns the PCM audio region of the block.
func (b *Block) Payload() []byte {
	return b[:BytesPerSector]
}

// Subcode returns the subchannel region of the block.
func (b *Block) Subcode() []byte {
	return b[BytesPerSector:]
}

// IsTrackStart reports whether this block is the first block of a
// track. The P channel carries all 1's over the pregap at the start of
// each track, so a block starts a track iff the P bit is set in every
// subcode byte. Any single clear bit means no.
//
// The audio payload is never inspected.
func (b *Block) IsTrackStart() bool {
	for _, c := range b.Subcode() {
		if c&SubcodeP == 0 {
			return false
		}
	}
	return true
}

// ReadBlock fills b with the next block from r. It returns io.EOF when
// the stream is exhausted, including when fewer than BytesPerBlock
// bytes remain: a trailing partial block is stream termination, never
// a usable block.
func ReadBlock(r io.Reader, b *Block) error {
	_, err := io.ReadFull(r, b[:])
	if err == io.ErrUnexpectedEOF {
		return io.EOF
	}
	return err
}

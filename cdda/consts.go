// Package cdda describes the layout of raw CD-DA disc images that
// include subchannel data, and the subcode predicate used to find
// track boundaries within them.
package cdda

// SampleRate is the number of samples per second. All Redbook audio
// CDs use 44.1KHz.
const SampleRate = 44100

// BytesPerSample is 2 bytes, representing signed 16-bit samples.
const BytesPerSample = 2

// BitsPerSample is the sample precision, 16 bits.
const BitsPerSample = 8 * BytesPerSample

// Channels is the number of audio channels in the data. All Redbook
// audio CDs are stereo.
const Channels = 2

// BytesPerSector is the number of bytes of audio contained in one
// sector of CD data, 2352 bytes.
const BytesPerSector = 2352

// SubcodeSize is the number of bytes of subchannel data that follow
// each sector in a raw image dumped with subcode channels. Each byte
// carries one bit of each of the eight subcode channels P..W.
const SubcodeSize = 96

// BytesPerBlock is the size of one image block: a full audio sector
// immediately followed by its subchannel data.
const BytesPerBlock = BytesPerSector + SubcodeSize

// SubcodeP is the bit position of the P channel within a subcode byte.
//
// The P channel is a simple pause/music flag: it reads all 1's over
// the pregap at the head of each track, which is what track detection
// keys off of.
const SubcodeP = 1 << 7

// FramesPerSector is the number of audio frames in one sector, 588.
// An audio frame is one 16-bit sample on each channel, 4 bytes.
const FramesPerSector = BytesPerSector / (Channels * BytesPerSample)

// BytesPerFrame is the size of one audio frame across all channels.
const BytesPerFrame = Channels * BytesPerSample

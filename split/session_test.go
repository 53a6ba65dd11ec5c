package split

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matja/mdf2wav/cdda"
	"github.com/matja/mdf2wav/wav"
)

func failIfErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// memSink is an in-memory Sink with just enough seek support for
// header patching.
type memSink struct {
	buf    []byte
	pos    int64
	closed bool
}

func (m *memSink) Write(p []byte) (int, error) {
	if m.closed {
		return 0, os.ErrClosed
	}
	if need := m.pos + int64(len(p)); need > int64(len(m.buf)) {
		grown := make([]byte, need)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:], p)
	m.pos += int64(len(p))
	return len(p), nil
}

func (m *memSink) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.buf)) + offset
	default:
		m.pos = offset
	}
	return m.pos, nil
}

func (m *memSink) Close() error {
	m.closed = true
	return nil
}

type memCreator struct {
	sinks map[string]*memSink
	order []string
}

func newMemCreator() *memCreator {
	return &memCreator{sinks: map[string]*memSink{}}
}

func (c *memCreator) Create(name string) (Sink, error) {
	if _, ok := c.sinks[name]; ok {
		return nil, fmt.Errorf("%q: %w", name, ErrTrackExists)
	}
	s := &memSink{}
	c.sinks[name] = s
	c.order = append(c.order, name)
	return s, nil
}

// block builds one raw image block: the payload filled with fill, the
// subcode region marking a track start or not.
func block(trackStart bool, fill byte) []byte {
	b := make([]byte, cdda.BytesPerBlock)
	for i := range cdda.BytesPerSector {
		b[i] = fill
	}
	if trackStart {
		for i := cdda.BytesPerSector; i < cdda.BytesPerBlock; i++ {
			b[i] = 0xFF
		}
	}
	return b
}

func stream(blocks ...[]byte) []byte {
	return bytes.Join(blocks, nil)
}

func quietSession(c SinkCreator) *Session {
	return &Session{Creator: c, Logger: log.New(io.Discard, "", 0)}
}

func TestNoTrackStarts(t *testing.T) {
	c := newMemCreator()
	in := stream(block(false, 1), block(false, 2), block(false, 3))
	failIfErr(t, Run(bytes.NewReader(in), quietSession(c)))
	assert.Empty(t, c.sinks)
}

func TestEmptyStream(t *testing.T) {
	c := newMemCreator()
	failIfErr(t, Run(bytes.NewReader(nil), quietSession(c)))
	assert.Empty(t, c.sinks)
}

func TestShortStream(t *testing.T) {
	// a trailing partial block is the same as end of stream, even when
	// its subcode region would have marked a track start
	c := newMemCreator()
	in := block(true, 1)[:cdda.BytesPerBlock-1]
	failIfErr(t, Run(bytes.NewReader(in), quietSession(c)))
	assert.Empty(t, c.sinks)
}

func TestSingleTrack(t *testing.T) {
	c := newMemCreator()
	in := stream(block(true, 1), block(false, 2), block(false, 3))
	failIfErr(t, Run(bytes.NewReader(in), quietSession(c)))

	assert.Equal(t, []string{"track_01.wav"}, c.order)
	sink := c.sinks["track_01.wav"]
	assert.True(t, sink.closed)
	assert.Len(t, sink.buf, wav.HeaderSize+3*cdda.BytesPerSector)

	h, err := wav.Decode(sink.buf)
	failIfErr(t, err)
	assert.Equal(t, uint32(3*cdda.BytesPerSector), h.DataSize)
	assert.Equal(t, uint16(cdda.Channels), h.Channels)
	assert.Equal(t, uint32(cdda.SampleRate), h.SampleRate)

	// payload is the blocks' audio regions, in order, subcode stripped
	want := stream(
		block(true, 1)[:cdda.BytesPerSector],
		block(false, 2)[:cdda.BytesPerSector],
		block(false, 3)[:cdda.BytesPerSector],
	)
	assert.Equal(t, want, sink.buf[wav.HeaderSize:])
}

func TestTwoTracks(t *testing.T) {
	c := newMemCreator()
	in := stream(
		block(true, 1), block(false, 2), block(false, 3),
		block(true, 4), block(false, 5),
	)
	failIfErr(t, Run(bytes.NewReader(in), quietSession(c)))

	assert.Equal(t, []string{"track_01.wav", "track_02.wav"}, c.order)

	t1 := c.sinks["track_01.wav"]
	h1, err := wav.Decode(t1.buf)
	failIfErr(t, err)
	assert.Equal(t, uint32(3*cdda.BytesPerSector), h1.DataSize)
	assert.Equal(t, byte(1), t1.buf[wav.HeaderSize])

	t2 := c.sinks["track_02.wav"]
	h2, err := wav.Decode(t2.buf)
	failIfErr(t, err)
	assert.Equal(t, uint32(2*cdda.BytesPerSector), h2.DataSize)
	assert.Equal(t, byte(4), t2.buf[wav.HeaderSize])
	assert.True(t, t1.closed)
	assert.True(t, t2.closed)
}

func TestLeadingBlocksDiscarded(t *testing.T) {
	c := newMemCreator()
	in := stream(block(false, 9), block(false, 9), block(true, 1), block(false, 2))
	failIfErr(t, Run(bytes.NewReader(in), quietSession(c)))

	sink := c.sinks["track_01.wav"]
	assert.Len(t, sink.buf, wav.HeaderSize+2*cdda.BytesPerSector)
}

func TestNameCollisionFailFast(t *testing.T) {
	c := newMemCreator()
	existing := &memSink{buf: []byte("do not touch")}
	c.sinks["track_01.wav"] = existing

	in := stream(block(true, 1), block(false, 2), block(false, 3))
	r := bytes.NewReader(in)
	err := Run(r, quietSession(c))
	assert.ErrorIs(t, err, ErrTrackExists)
	assert.ErrorContains(t, err, "track_01.wav")

	// the pre-existing file is untouched and no further blocks were read
	assert.Equal(t, []byte("do not touch"), existing.buf)
	assert.Equal(t, len(in)-cdda.BytesPerBlock, r.Len())
}

func TestCollisionClosesOpenTrack(t *testing.T) {
	c := newMemCreator()
	c.sinks["track_02.wav"] = &memSink{}

	in := stream(block(true, 1), block(true, 2))
	err := Run(bytes.NewReader(in), quietSession(c))
	assert.ErrorIs(t, err, ErrTrackExists)

	// track 1 was still finished properly before the abort
	t1 := c.sinks["track_01.wav"]
	assert.True(t, t1.closed)
	h, derr := wav.Decode(t1.buf)
	failIfErr(t, derr)
	assert.Equal(t, uint32(cdda.BytesPerSector), h.DataSize)
}

func TestSinkCreationError(t *testing.T) {
	err := Run(bytes.NewReader(block(true, 1)), quietSession(failCreator{}))
	assert.ErrorIs(t, err, os.ErrPermission)
}

type failCreator struct{}

func (failCreator) Create(name string) (Sink, error) {
	return nil, os.ErrPermission
}

func TestDiagnostics(t *testing.T) {
	var logbuf bytes.Buffer
	c := newMemCreator()
	s := &Session{Creator: c, Logger: log.New(&logbuf, "", 0)}

	// 75 sectors is exactly one second of audio
	blocks := make([][]byte, 0, 150)
	blocks = append(blocks, block(true, 1))
	for range 74 {
		blocks = append(blocks, block(false, 1))
	}
	blocks = append(blocks, block(true, 2))
	for range 74 {
		blocks = append(blocks, block(false, 2))
	}
	failIfErr(t, Run(bytes.NewReader(stream(blocks...)), s))

	trackBytes := 75 * cdda.BytesPerBlock
	want := fmt.Sprintf("track_01.wav: duration_s:1 start_offset:0 end_offset:%d\n", trackBytes) +
		fmt.Sprintf("track_02.wav: duration_s:1 start_offset:%d end_offset:%d\n", trackBytes, 2*trackBytes)
	assert.Equal(t, want, logbuf.String())
}

func TestCustomPrefix(t *testing.T) {
	c := newMemCreator()
	s := quietSession(c)
	s.Prefix = "side_a_"
	failIfErr(t, Run(bytes.NewReader(block(true, 1)), s))
	assert.Equal(t, []string{"side_a_01.wav"}, c.order)
}

func TestReadErrorClosesTrack(t *testing.T) {
	c := newMemCreator()
	r := io.MultiReader(bytes.NewReader(block(true, 1)), errReader{})
	err := Run(r, quietSession(c))
	assert.ErrorContains(t, err, "read block")
	assert.True(t, errors.Is(err, errBroken))

	// the open track was still closed with a consistent header
	t1 := c.sinks["track_01.wav"]
	assert.True(t, t1.closed)
	h, derr := wav.Decode(t1.buf)
	failIfErr(t, derr)
	assert.Equal(t, uint32(cdda.BytesPerSector), h.DataSize)
}

var errBroken = errors.New("broken pipe")

type errReader struct{}

func (errReader) Read(p []byte) (int, error) {
	return 0, errBroken
}

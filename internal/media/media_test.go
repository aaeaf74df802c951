package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/reviewz/internal/sound"
)

// encodeWAV writes a 16-bit PCM header followed by n zero bytes of samples.
// With junk set an odd-sized chunk precedes fmt, as some editors write.
func encodeWAV(sampleRate, channels, n int, junk bool) []byte {
	var buf bytes.Buffer
	byteRate := sampleRate * channels * 2
	size := 4 + 8 + 16 + 8 + n
	if junk {
		size += 8 + 3 + 1
	}
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(size))
	buf.WriteString("WAVE")
	if junk {
		buf.WriteString("JUNK")
		binary.Write(&buf, binary.LittleEndian, uint32(3))
		buf.Write([]byte{'a', 'b', 'c', 0})
	}
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(n))
	buf.Write(make([]byte, n))
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDuration(t *testing.T) {
	// 16kHz mono 16-bit is 32000 bytes per second.
	path := writeFile(t, "one.wav", encodeWAV(16000, 1, 48000, false))
	d, ok := Duration(path)
	require.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, d)

	path = writeFile(t, "two.WAV", encodeWAV(8000, 2, 32000, true))
	d, ok = Duration(path)
	require.True(t, ok)
	assert.Equal(t, time.Second, d, "chunk before fmt")
}

func TestDurationNoData(t *testing.T) {
	full := encodeWAV(16000, 1, 0, false)
	// Header only, the data chunk is cut off.
	_, ok := Duration(writeFile(t, "short.wav", full[:len(full)-8]))
	assert.False(t, ok)
}

func TestDurationUnknown(t *testing.T) {
	_, ok := Duration(writeFile(t, "a.mp3", []byte("ID3")))
	assert.False(t, ok, "non-wav extension")

	_, ok = Duration(writeFile(t, "bad.wav", []byte("not a riff file")))
	assert.False(t, ok, "bad header")

	_, ok = Duration(filepath.Join(t.TempDir(), "missing.wav"))
	assert.False(t, ok, "missing file")
}

type recorder struct {
	mu    sync.Mutex
	calls [][]string
	block bool
}

func (r *recorder) run(ctx context.Context, name string, args ...string) error {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{name}, args...))
	r.mu.Unlock()
	if r.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func newTestPlayer(rec *recorder) *CommandPlayer {
	p := NewCommandPlayer(Config{Player: "play", PlayerArgs: []string{"-q"}, Speech: "say"}, nil)
	p.run = rec.run
	return p
}

func TestPlayAllRunsClipsInOrder(t *testing.T) {
	rec := &recorder{}
	p := newTestPlayer(rec)
	wav := writeFile(t, "a.wav", encodeWAV(16000, 1, 32000, false))

	p.Enqueue(sound.Clip{Name: "a.wav", Path: wav})
	p.Enqueue(sound.Clip{Name: "b.mp3", Path: "/media/b.mp3"})
	d, err := p.PlayAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Second, d, "only the wav duration is known")

	p.wg.Wait()
	assert.Equal(t, [][]string{
		{"play", "-q", wav},
		{"play", "-q", "/media/b.mp3"},
	}, rec.snapshot())

	d, err = p.PlayAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, d, "playlist is cleared after playing")
}

func TestStopAllCancelsPlayback(t *testing.T) {
	rec := &recorder{block: true}
	p := newTestPlayer(rec)

	p.Enqueue(sound.Clip{Name: "a.mp3", Path: "a.mp3"})
	p.Enqueue(sound.Clip{Name: "b.mp3", Path: "b.mp3"})
	_, err := p.PlayAll(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, time.Millisecond)
	p.StopAll()
	p.wg.Wait()

	assert.Len(t, rec.snapshot(), 1, "second clip never starts")
}

func TestSpeak(t *testing.T) {
	rec := &recorder{}
	p := newTestPlayer(rec)

	require.NoError(t, p.Speak(context.Background(), "bonjour", "fr"))
	require.NoError(t, p.Speak(context.Background(), "", "fr"))
	p.wg.Wait()

	assert.Equal(t, [][]string{{"say", "-v", "fr", "bonjour"}}, rec.snapshot())
}

func TestNewWithoutPlayer(t *testing.T) {
	assert.IsType(t, NopPlayer{}, New(Config{}, nil))
	assert.IsType(t, NopPlayer{}, New(Config{Player: "definitely-not-a-real-player-binary"}, nil))
}

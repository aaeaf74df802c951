package media

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
)

// Duration reads the play length of a WAV file from its fmt and data
// chunks. ok is false for other formats and for files that cannot be read.
func Duration(path string) (d time.Duration, ok bool) {
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return 0, false
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if dec.Err() != nil || dec.AvgBytesPerSec == 0 {
		return 0, false
	}
	// The RIFF size covers every chunk, so the length comes from the data
	// chunk alone.
	if err := dec.FwdToPCM(); err != nil || dec.PCMSize <= 0 {
		return 0, false
	}
	return time.Duration(int64(dec.PCMSize) * int64(time.Second) / int64(dec.AvgBytesPerSec)), true
}

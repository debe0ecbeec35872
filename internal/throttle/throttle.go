package throttle

import (
	"io"
	"time"
)

// Writer limits sustained write speed to a maximum MB/s by sleeping
// between writes. A zero or negative limit disables throttling.
type Writer struct {
	w         io.Writer
	maxMBps   float64
	lastWrite time.Time
}

// NewWriter wraps w with a MB/s ceiling
func NewWriter(w io.Writer, maxMBps float64) *Writer {
	return &Writer{
		w:         w,
		maxMBps:   maxMBps,
		lastWrite: time.Now(),
	}
}

func (t *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if t.maxMBps > 0 {
		bytesPerSec := t.maxMBps * 1024 * 1024
		expected := time.Duration(float64(len(p)) / bytesPerSec * float64(time.Second))
		if elapsed := time.Since(t.lastWrite); elapsed < expected {
			time.Sleep(expected - elapsed)
		}
	}

	n, err := t.w.Write(p)
	t.lastWrite = time.Now()
	return n, err
}

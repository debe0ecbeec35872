package entropy

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"
)

// ErrUnavailable indicates the OS entropy device could not satisfy a read
var ErrUnavailable = errors.New("entropy source unavailable")

// Source produces cryptographically strong random buffers
// Enables faking in tests to prove failure propagation without breaking crypto/rand
type Source interface {
	Fill(n int) ([]byte, error)
}

// DeviceSource reads from the operating system's CSPRNG
type DeviceSource struct {
	r io.Reader
}

// NewDeviceSource creates a Source backed by crypto/rand
func NewDeviceSource() *DeviceSource {
	return &DeviceSource{r: rand.Reader}
}

// NewReaderSource creates a Source backed by an arbitrary reader (tests)
func NewReaderSource(r io.Reader) *DeviceSource {
	return &DeviceSource{r: r}
}

// Fill allocates and returns a buffer of exactly n random bytes.
// A short read counts as failure: writing fewer random bytes than planned
// would break the block accounting of the overwrite engine.
func (s *DeviceSource) Fill(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrUnavailable, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return buf, nil
}

// Zero overwrites a buffer with zeros before release so random material
// does not stay resident. runtime.KeepAlive prevents the compiler from
// dropping the stores as dead writes.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

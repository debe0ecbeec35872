package plan

import (
	"errors"
	"testing"
)

// stubLimit swaps the rlimit getter for the duration of one test
func stubLimit(t *testing.T, limit uint64, err error) {
	t.Helper()
	orig := dataLimit
	dataLimit = func() (uint64, error) { return limit, err }
	t.Cleanup(func() { dataLimit = orig })
}

// TestByteCountInvariant verifies Blocks*BlockLen == length for every plan
func TestByteCountInvariant(t *testing.T) {
	tests := []struct {
		name   string
		length uint64
		limit  uint64
		safe   bool
	}{
		{"tiny file huge limit", 10, 1 << 40, false},
		{"even split", 10, 19, false}, // blocks=2, blockLen=5
		{"uneven split collapses", 10, 25, false},
		{"limit equals length", 4096, 4096, false},
		{"one byte", 1, 1 << 30, false},
		{"safe mode", 1000, 1 << 30, true},
		{"large file", 1 << 20, 1 << 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubLimit(t, tt.limit, nil)

			p, forced, err := Compute(tt.length, tt.safe)
			if err != nil {
				t.Fatalf("Compute(%d) error: %v", tt.length, err)
			}
			if forced {
				t.Errorf("Compute(%d) forced safe mode with working limit", tt.length)
			}
			if got := p.TotalBytes(); got != tt.length {
				t.Errorf("Blocks*BlockLen = %d, expected %d (plan %+v)", got, tt.length, p)
			}
		})
	}
}

// TestEmptyFile verifies a zero-length file yields a zero plan and no error
func TestEmptyFile(t *testing.T) {
	stubLimit(t, 1<<30, nil)

	p, forced, err := Compute(0, false)
	if err != nil || forced {
		t.Fatalf("Compute(0) = forced %v, err %v", forced, err)
	}
	if p.Blocks != 0 || p.BlockLen != 0 {
		t.Errorf("Compute(0) = %+v, expected zero plan", p)
	}
}

// TestSafeMode verifies one byte per block regardless of limits
func TestSafeMode(t *testing.T) {
	stubLimit(t, 16, nil)

	p, forced, err := Compute(1000, true)
	if err != nil || forced {
		t.Fatalf("safe Compute = forced %v, err %v", forced, err)
	}
	if p.Blocks != 1000 || p.BlockLen != 1 {
		t.Errorf("safe plan = %+v, expected 1000 blocks of 1 byte", p)
	}
}

// TestLimitFailureForcesSafeMode verifies the fallback when introspection fails
func TestLimitFailureForcesSafeMode(t *testing.T) {
	stubLimit(t, 0, errors.New("getrlimit: not permitted"))

	p, forced, err := Compute(64, false)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	if !forced {
		t.Error("expected safe mode to be forced when rlimit query fails")
	}
	if p.Blocks != 64 || p.BlockLen != 1 {
		t.Errorf("forced-safe plan = %+v, expected 64 blocks of 1 byte", p)
	}
}

// TestFileLargerThanLimit verifies the single-block path reports
// insufficient memory instead of planning an unallocatable buffer
func TestFileLargerThanLimit(t *testing.T) {
	stubLimit(t, 512, nil)

	_, _, err := Compute(4096, false)
	if !errors.Is(err, ErrInsufficientMemory) {
		t.Errorf("Compute beyond limit = %v, expected ErrInsufficientMemory", err)
	}
}

// TestInfiniteLimit verifies RLIM_INFINITY collapses to a single block
// including the uint64 wrap for a one-byte file
func TestInfiniteLimit(t *testing.T) {
	stubLimit(t, ^uint64(0), nil)

	for _, length := range []uint64{1, 2, 10, 4096} {
		p, forced, err := Compute(length, false)
		if err != nil || forced {
			t.Fatalf("Compute(%d) = forced %v, err %v", length, forced, err)
		}
		if p.Blocks != 1 || p.BlockLen != length {
			t.Errorf("Compute(%d) under RLIM_INFINITY = %+v, expected single block", length, p)
		}
	}
}

// TestRealGetrlimit exercises the real rlimit getter once
func TestRealGetrlimit(t *testing.T) {
	limit, err := dataLimit()
	if err != nil {
		t.Skipf("getrlimit unavailable: %v", err)
	}
	if limit == 0 {
		t.Error("soft RLIMIT_DATA reported as zero")
	}
}

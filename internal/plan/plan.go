package plan

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrInsufficientMemory indicates the file cannot be buffered within the
// process's soft data limit even as a single block
var ErrInsufficientMemory = errors.New("insufficient memory for block buffer")

// Plan describes how one file is split into write blocks.
// Invariant: Blocks*BlockLen == file length for every valid plan.
type Plan struct {
	Blocks   uint64
	BlockLen uint64
}

// TotalBytes returns the number of bytes one full traversal writes
func (p Plan) TotalBytes() uint64 {
	return p.Blocks * p.BlockLen
}

// dataLimit reports the soft RLIMIT_DATA value.
// Package variable so tests can simulate limits and introspection failure.
var dataLimit = func() (uint64, error) {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_DATA, &rl); err != nil {
		return 0, err
	}
	return uint64(rl.Cur), nil
}

// Compute sizes blocks for a file of the given length under the process's
// soft memory limit. The returned bool reports whether safe mode was forced
// because memory introspection failed; callers must honor it instead of
// mutating their own config.
//
// Rounding policy is deliberate integer division: blocks = limit/length + 1
// biases toward more, smaller blocks, and blockLen = length/blocks rounds
// down, collapsing to a single block when it reaches zero. This keeps the
// byte-count invariant exact with no floating point.
func Compute(length uint64, safe bool) (Plan, bool, error) {
	// An empty file needs no writes and must not reach the divisions below
	if length == 0 {
		return Plan{}, false, nil
	}

	if safe {
		return safePlan(length), false, nil
	}

	limit, err := dataLimit()
	if err != nil {
		// No way to size blocks responsibly; fall back to one byte at a time
		return safePlan(length), true, nil
	}

	blocks := limit/length + 1
	if blocks == 0 {
		// uint64 wrap: limit/length was MaxUint64 (1-byte file under
		// RLIM_INFINITY); any such file fits in a single block
		blocks = 1
	}
	blockLen := length / blocks

	if blockLen == 0 || blocks*blockLen != length {
		// Either the file is small relative to the block count or the
		// rounded-down block length would under-cover the file. Collapse to
		// one exact block; blocks >= 2 only happens when limit >= length,
		// so the whole file fits in a single buffer.
		blocks = 1
		blockLen = length
	}

	if blocks == 1 && blockLen > limit {
		return Plan{}, false, fmt.Errorf("%w: need %d bytes, soft limit %d", ErrInsufficientMemory, blockLen, limit)
	}

	return Plan{Blocks: blocks, BlockLen: blockLen}, false, nil
}

// safePlan writes one byte per call: minimal footprint, maximal syscalls
func safePlan(length uint64) Plan {
	return Plan{Blocks: length, BlockLen: 1}
}

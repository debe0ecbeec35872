package shred

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"shredsafe/internal/database"
	"shredsafe/internal/entropy"
	"shredsafe/internal/fsops"
	"shredsafe/internal/metrics"
	"shredsafe/internal/plan"
	"shredsafe/internal/safety"
	"shredsafe/internal/throttle"

	"github.com/prometheus/client_golang/prometheus"
)

// Options holds the per-invocation shred configuration.
// Immutable once the Shredder is built; the planner forcing safe mode is
// reported back per file, never written into the caller's options.
type Options struct {
	SafeMode     bool    // One byte per write call, minimal footprint
	Verbose      bool    // Plan and progress diagnostics
	Recursive    bool    // Permit descending into directories
	Iterations   int     // Zero+random passes per file (default 3)
	Remove       bool    // Unlink after a successful shred
	DryRun       bool    // Classify and plan but never write or unlink
	MaxSpeedMBps float64 // 0 disables write throttling
}

// Logger interface for structured logging in the engine
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement the Logger interface
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Metrics interface for engine metrics
type Metrics interface {
	FilesShreddedTotal() prometheus.Counter
	BytesWrittenTotal() prometheus.Counter
	PassesTotal() prometheus.Counter
	ErrorsTotal() prometheus.Counter
	ShredDuration() prometheus.Observer
}

// globalMetrics wraps the package-level Prometheus collectors
type globalMetrics struct{}

func (globalMetrics) FilesShreddedTotal() prometheus.Counter { return metrics.FilesShreddedTotal }
func (globalMetrics) BytesWrittenTotal() prometheus.Counter  { return metrics.BytesWrittenTotal }
func (globalMetrics) PassesTotal() prometheus.Counter        { return metrics.PassesTotal }
func (globalMetrics) ErrorsTotal() prometheus.Counter        { return metrics.ErrorsTotal }
func (globalMetrics) ShredDuration() prometheus.Observer     { return metrics.ShredDuration }

// Shredder overwrites file contents in place with alternating zero and
// random passes. One instance handles one invocation's targets, strictly
// sequentially.
type Shredder struct {
	opts      Options
	logger    Logger
	metrics   Metrics
	entropy   entropy.Source
	validator *safety.Validator
	remover   fsops.Remover
	db        *database.ShredDB
}

// New creates a Shredder with the real entropy device, default safety
// validator and os-backed remover. db may be nil to disable auditing.
func New(opts Options, logger *log.Logger, db *database.ShredDB) *Shredder {
	if opts.Iterations <= 0 {
		opts.Iterations = 3
	}
	l := &stdLogger{Logger: logger}
	if logger == nil {
		l.Logger = log.Default()
	}
	return &Shredder{
		opts:      opts,
		logger:    l,
		metrics:   globalMetrics{},
		entropy:   entropy.NewDeviceSource(),
		validator: safety.NewValidator(nil, nil),
		remover:   fsops.OSRemover{},
		db:        db,
	}
}

// SetEntropy replaces the entropy source (tests, hardware RNGs)
func (s *Shredder) SetEntropy(src entropy.Source) {
	s.entropy = src
}

// SetRemover replaces the remover (tests)
func (s *Shredder) SetRemover(r fsops.Remover) {
	s.remover = r
}

// SetValidator replaces the safety validator
func (s *Shredder) SetValidator(v *safety.Validator) {
	s.validator = v
}

// ShredPath classifies a target and routes it: regular files are shredded,
// directories are walked when recursive mode permits, anything else is
// refused. Errors are local to this target.
func (s *Shredder) ShredPath(path string) error {
	if !Exists(path) {
		return s.fail(opErr("exists", path, ErrNotFound))
	}

	ftype, err := Classify(path)
	if err != nil {
		return s.fail(opErr("classify", path, err))
	}

	switch ftype {
	case TypeFile:
		return s.ShredFile(path)
	case TypeDir:
		return s.shredDir(path)
	default:
		return s.fail(opErr("classify", path, fmt.Errorf("%w: %s", ErrUnsupportedType, ftype)))
	}
}

// ShredFile overwrites one regular file in place: measure once, plan
// blocks, then Iterations passes of zero+random writes. The handle is
// closed on every exit path and the file's length never changes.
func (s *Shredder) ShredFile(path string) error {
	if err := s.validator.ValidateTarget(path); err != nil {
		e := opErr("safety", path, err)
		s.logger.Error(e.Error())
		s.record(database.ShredRecord{Action: database.ActionSkip, Path: path, ErrorMessage: e.Error()})
		return e
	}

	start := time.Now()

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return s.fail(opErr("open", path, err))
	}
	defer f.Close()

	length, err := measureLength(f)
	if err != nil {
		return s.fail(opErr("seek", path, err))
	}

	p, forcedSafe, err := plan.Compute(uint64(length), s.opts.SafeMode)
	if err != nil {
		return s.fail(opErr("plan", path, err))
	}
	if forcedSafe && s.opts.Verbose {
		s.logger.Info("memory limit unavailable, using safe mode (slow for large files)", "path", path)
	}
	if s.opts.Verbose {
		s.logger.Info("block plan",
			"path", path, "length", length,
			"blocks", p.Blocks, "block_len", p.BlockLen,
			"iterations", s.opts.Iterations)
	}

	if s.opts.DryRun {
		s.logger.Info("DRY RUN: would shred", "path", path, "length", length, "iterations", s.opts.Iterations)
		s.record(database.ShredRecord{
			Action: database.ActionSkip, Path: path, Size: length,
			Passes: s.opts.Iterations, Blocks: int64(p.Blocks), BlockLen: int64(p.BlockLen),
			SafeMode: s.opts.SafeMode || forcedSafe, ErrorMessage: "dry run",
		})
		return nil
	}

	if err := s.overwrite(f, path, p); err != nil {
		return s.fail(err)
	}

	if length > 0 {
		if err := f.Sync(); err != nil {
			return s.fail(opErr("sync", path, err))
		}
	}

	removed := false
	if s.opts.Remove {
		if err := s.remover.Remove(path); err != nil {
			return s.fail(opErr("remove", path, err))
		}
		removed = true
	}

	duration := time.Since(start)
	s.metrics.FilesShreddedTotal().Inc()
	s.metrics.ShredDuration().Observe(duration.Seconds())
	s.record(database.ShredRecord{
		Action: database.ActionShred, Path: path, Size: length,
		Passes: s.opts.Iterations, Blocks: int64(p.Blocks), BlockLen: int64(p.BlockLen),
		SafeMode: s.opts.SafeMode || forcedSafe, Removed: removed,
		DurationMs: duration.Milliseconds(),
	})
	if s.opts.Verbose {
		s.logger.Info("shredded", "path", path, "bytes", length, "duration", duration)
	}
	return nil
}

// overwrite runs the pass loop. Each pass rewinds to offset 0 and, block
// by block, writes zeros then seeks back and writes random data over them,
// so every byte written lands inside [0, length).
func (s *Shredder) overwrite(f *os.File, path string, p plan.Plan) error {
	// Empty file: nothing to write, success by definition
	if p.Blocks == 0 || p.BlockLen == 0 {
		return nil
	}

	var w io.Writer = f
	if s.opts.MaxSpeedMBps > 0 {
		w = throttle.NewWriter(f, s.opts.MaxSpeedMBps)
	}

	zeros := make([]byte, p.BlockLen)

	for pass := 0; pass < s.opts.Iterations; pass++ {
		// A pass starting at an unknown offset would break the length
		// contract, so a failed rewind aborts the file
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return opErr("seek", path, err)
		}

		for k := uint64(0); k < p.Blocks; k++ {
			off := int64(k * p.BlockLen)

			if _, err := w.Write(zeros); err != nil {
				return opErr("write", path, err)
			}

			// Rewind so the random block covers the bytes just zeroed
			if _, err := f.Seek(off, io.SeekStart); err != nil {
				return opErr("seek", path, err)
			}

			buf, err := s.entropy.Fill(int(p.BlockLen))
			if err != nil {
				return opErr("entropy", path, err)
			}
			_, werr := w.Write(buf)
			entropy.Zero(buf)
			if werr != nil {
				return opErr("write", path, werr)
			}
		}

		s.metrics.PassesTotal().Inc()
		s.metrics.BytesWrittenTotal().Add(float64(2 * p.TotalBytes()))
	}

	return nil
}

// measureLength captures the file length without disturbing the current
// offset: remember position, seek to end, seek back
func measureLength(f *os.File) (int64, error) {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	length, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := f.Seek(pos, io.SeekStart); err != nil {
		return 0, err
	}
	return length, nil
}

// fail logs the diagnostic tuple, bumps the error counter and records the
// failure before propagating it
func (s *Shredder) fail(err error) error {
	s.logger.Error(err.Error())
	s.metrics.ErrorsTotal().Inc()

	rec := database.ShredRecord{Action: database.ActionError, ErrorMessage: err.Error()}
	var oe *OpError
	if errors.As(err, &oe) {
		rec.Path = oe.Path
	}
	s.record(rec)
	return err
}

// record persists one target outcome when auditing is enabled
func (s *Shredder) record(rec database.ShredRecord) {
	if s.db == nil {
		return
	}
	if err := s.db.RecordShred(rec); err != nil {
		s.logger.Error("failed to record shred history", "path", rec.Path, "error", err)
	}
}

package shred

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"shredsafe/internal/database"
)

// shredDir walks a directory depth-first and shreds every regular file
// under it. Each file is an isolated target: one failure never stops the
// walk. Symlinks and special files inside the tree are skipped, never
// followed.
func (s *Shredder) shredDir(path string) error {
	if !s.opts.Recursive {
		e := opErr("dirshred", path, ErrNotRecursive)
		s.logger.Error(e.Error())
		s.record(database.ShredRecord{Action: database.ActionSkip, Path: path, ErrorMessage: e.Error()})
		return e
	}

	var attempted, failed int
	var dirs []string

	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			failed++
			s.logger.Error(opErr("walk", p, err).Error())
			return nil // keep walking, this entry is its own failure
		}
		if d.IsDir() {
			dirs = append(dirs, p)
			return nil
		}
		if !d.Type().IsRegular() {
			if s.opts.Verbose {
				s.logger.Info("skipping non-regular entry", "path", p, "type", d.Type().String())
			}
			return nil
		}

		attempted++
		if err := s.ShredFile(p); err != nil {
			failed++
		}
		return nil
	})
	if walkErr != nil {
		return s.fail(opErr("walk", path, walkErr))
	}

	if failed > 0 {
		return opErr("dirshred", path, fmt.Errorf("%d targets failed (%d files attempted)", failed, attempted))
	}

	if s.opts.Remove && !s.opts.DryRun {
		return s.removeTree(dirs)
	}
	return nil
}

// removeTree unlinks the now-empty directories, deepest first. Files were
// already removed one by one after their shreds.
func (s *Shredder) removeTree(dirs []string) error {
	sort.Slice(dirs, func(i, j int) bool {
		return len(dirs[i]) > len(dirs[j])
	})

	for _, d := range dirs {
		if err := s.remover.Remove(d); err != nil {
			return s.fail(opErr("remove", d, err))
		}
	}
	return nil
}

package engine

import (
	"path/filepath"

	"github.com/bamsammich/treecp/internal/fsys"
	"github.com/bamsammich/treecp/internal/walk"
)

// resolveLink makes a link target absolute relative to the directory the
// link lives in. Targets are only rewritten when dereferencing.
func (op *Operation) resolveLink(linkPath, linkTarget string) string {
	if !op.cfg.Dereference || filepath.IsAbs(linkTarget) {
		return linkTarget
	}
	return filepath.Join(filepath.Dir(linkPath), linkTarget)
}

// copyLink recreates a symbolic link. A destination that already is the
// link, or that already points where the source points, is left alone.
func (op *Operation) copyLink(e walk.Entry, target string) error {
	linkTarget, err := op.fs.Readlink(e.Path)
	if err != nil {
		return newError("readlink", e.Path, err)
	}
	resolved := op.resolveLink(e.Path, linkTarget)

	if resolved == target {
		op.skip(e, target, "link points at its own destination")
		return nil
	}

	if _, err := op.fs.Lstat(target); err != nil {
		if !fsys.NotExist(err) {
			return newError("stat", target, err)
		}
		return op.symlink(e, resolved, target)
	}

	current, err := op.fs.Readlink(target)
	if err != nil {
		if fsys.NotSymlink(err) {
			// A non-link destination is kept as is, even with Overwrite.
			op.skip(e, target, "destination exists and is not a link")
			return nil
		}
		return newError("readlink", target, err)
	}
	if op.resolveLink(target, current) == resolved {
		op.skip(e, target, "link already up to date")
		return nil
	}

	if !op.cfg.Overwrite {
		op.skip(e, target, "destination exists")
		return nil
	}
	if err := op.remove(target); err != nil {
		return err
	}
	return op.symlink(e, resolved, target)
}

func (op *Operation) symlink(e walk.Entry, linkTarget, target string) error {
	if err := op.ensureParent(target); err != nil {
		return err
	}
	if err := op.fs.Symlink(linkTarget, target); err != nil {
		return newError("symlink", target, err)
	}
	op.stats.AddLinksCopied(1)
	op.copied(e, target, 0)
	return nil
}

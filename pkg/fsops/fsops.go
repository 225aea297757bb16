// Package fsops creates the directories and files of a tree on a filesystem.
package fsops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-foldergen/pkg/tree"
)

var (
	// ErrNotEmpty indicates a destination that already has content while
	// neither Override, Merge nor Force was requested.
	ErrNotEmpty = errors.New("destination is not empty")

	// ErrConflict indicates a path that exists with the other kind (a file
	// where a directory is wanted or the reverse).
	ErrConflict = errors.New("path conflict")

	// ErrEscape indicates a path that would leave the destination.
	ErrEscape = errors.New("path escapes destination")
)

// Action is what Apply did, or would do in a dry run, at a path.
type Action string

const (
	ActionWipe     Action = "wipe"
	ActionMkdir    Action = "mkdir"
	ActionDirKept  Action = "dir exists"
	ActionTouch    Action = "touch"
	ActionTruncate Action = "truncate"
	ActionFileKept Action = "file exists"
)

// Op is one filesystem step.
type Op struct {
	Action Action
	Path   string
	Mode   os.FileMode
}

// Result lists the steps of an Apply in order.
type Result struct {
	Dest   string
	DryRun bool
	Ops    []Op
}

// Count returns how many steps performed action.
func (r *Result) Count(action Action) int {
	n := 0
	for _, op := range r.Ops {
		if op.Action == action {
			n++
		}
	}
	return n
}

// Options controls Apply.
type Options struct {
	DryRun   bool
	Override bool // wipe a non-empty destination first
	Merge    bool // build into a non-empty destination, keeping existing files
	Force    bool // build into a non-empty destination, truncating existing files

	DirPerm    os.FileMode
	FilePerm   os.FileMode
	ExecGlobs  []string // slash patterns relative to the destination, created 0755
	DBMode0600 bool     // *.db, *.sqlite and *.sqlite3 files are created 0600

	Logger logrus.FieldLogger
}

// DefaultOptions returns the permissions used when none are configured.
func DefaultOptions() Options {
	return Options{DirPerm: 0o755, FilePerm: 0o644}
}

type applier struct {
	fs   afero.Fs
	dest string
	opts Options
	log  logrus.FieldLogger
	res  *Result
}

// Apply creates entries below dest. Entry paths are slash-separated and
// relative to dest; Tree.Entries produces them with the root name first, so
// the root becomes a directory inside dest.
//
// Existing directories are kept. A destination that already has content
// is refused unless Override, Merge or Force is set.
func Apply(fs afero.Fs, dest string, entries []tree.Entry, opts Options) (*Result, error) {
	if opts.DirPerm == 0 {
		opts.DirPerm = 0o755
	}
	if opts.FilePerm == 0 {
		opts.FilePerm = 0o644
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	a := &applier{
		fs:   fs,
		dest: filepath.Clean(dest),
		opts: opts,
		log:  log.WithField("dest", dest),
		res:  &Result{Dest: filepath.Clean(dest), DryRun: opts.DryRun},
	}

	if err := a.prepare(); err != nil {
		return a.res, err
	}
	for _, e := range entries {
		target, err := SafeJoin(a.dest, strings.Split(e.Path, "/")...)
		if err != nil {
			return a.res, err
		}
		if target == a.dest {
			// A "." root is the destination itself, handled by prepare.
			continue
		}
		if e.Container {
			err = a.ensureDir(target)
		} else {
			err = a.ensureFile(target)
		}
		if err != nil {
			return a.res, err
		}
	}
	return a.res, nil
}

// prepare checks the destination and wipes it when asked to.
func (a *applier) prepare() error {
	exists, err := afero.Exists(a.fs, a.dest)
	if err != nil {
		return fmt.Errorf("check destination %s: %w", a.dest, err)
	}
	if !exists {
		return a.ensureDir(a.dest)
	}
	isDir, err := afero.IsDir(a.fs, a.dest)
	if err != nil {
		return fmt.Errorf("check destination %s: %w", a.dest, err)
	}
	if !isDir {
		return fmt.Errorf("destination %s is a file: %w", a.dest, ErrConflict)
	}
	empty, err := afero.IsEmpty(a.fs, a.dest)
	if err != nil {
		return fmt.Errorf("check destination %s: %w", a.dest, err)
	}
	if empty {
		return a.ensureDir(a.dest)
	}

	switch {
	case a.opts.Override:
		a.record(ActionWipe, a.dest, 0)
		if a.opts.DryRun {
			return nil
		}
		if err := a.fs.RemoveAll(a.dest); err != nil {
			return fmt.Errorf("wipe %s: %w", a.dest, err)
		}
		return a.ensureDir(a.dest)
	case a.opts.Merge || a.opts.Force:
		return a.ensureDir(a.dest)
	}
	return fmt.Errorf("%s: %w (use --override to replace it or --force to build into it)", a.dest, ErrNotEmpty)
}

func (a *applier) ensureDir(path string) error {
	info, err := a.fs.Stat(path)
	switch {
	case err == nil && info.IsDir():
		if a.wiped(path) {
			a.record(ActionMkdir, path, a.opts.DirPerm)
			return nil
		}
		a.record(ActionDirKept, path, info.Mode().Perm())
		return nil

	case err == nil:
		return fmt.Errorf("%s is a file, want a directory: %w", path, ErrConflict)

	case os.IsNotExist(err):
		a.record(ActionMkdir, path, a.opts.DirPerm)
		if a.opts.DryRun {
			return nil
		}
		if err := a.fs.MkdirAll(path, a.opts.DirPerm); err != nil {
			return fmt.Errorf("mkdir %s: %w", path, err)
		}
		return a.fs.Chmod(path, a.opts.DirPerm)

	default:
		return fmt.Errorf("stat %s: %w", path, err)
	}
}

func (a *applier) ensureFile(path string) error {
	mode := a.fileMode(path)
	info, err := a.fs.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("%s is a directory, want a file: %w", path, ErrConflict)

	case err == nil && a.wiped(path):
		a.record(ActionTouch, path, mode)
		return nil

	case err == nil:
		if !a.opts.Force {
			a.record(ActionFileKept, path, info.Mode().Perm())
			return nil
		}
		a.record(ActionTruncate, path, mode)
		if a.opts.DryRun {
			return nil
		}
		f, err := a.fs.OpenFile(path, os.O_WRONLY|os.O_TRUNC, mode)
		if err != nil {
			return fmt.Errorf("truncate %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
		return a.fs.Chmod(path, mode)

	case os.IsNotExist(err):
		a.record(ActionTouch, path, mode)
		if a.opts.DryRun {
			return nil
		}
		f, err := a.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
		return a.fs.Chmod(path, mode)

	default:
		return fmt.Errorf("stat %s: %w", path, err)
	}
}

// wiped reports whether a dry-run override has already claimed path. The
// filesystem still shows the old content, but a real run would not.
func (a *applier) wiped(path string) bool {
	return a.opts.DryRun && a.opts.Override && path != a.dest && len(a.res.Ops) > 0 && a.res.Ops[0].Action == ActionWipe
}

func (a *applier) fileMode(path string) os.FileMode {
	rel := path
	if r, err := filepath.Rel(a.dest, path); err == nil {
		rel = r
	}
	rel = filepath.ToSlash(rel)

	if a.opts.DBMode0600 {
		lower := strings.ToLower(rel)
		for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
			if strings.HasSuffix(lower, ext) {
				return 0o600
			}
		}
	}
	for _, pat := range a.opts.ExecGlobs {
		if ok, _ := filepath.Match(filepath.ToSlash(pat), rel); ok {
			return 0o755
		}
		if ok, _ := filepath.Match(filepath.ToSlash(pat), filepath.Base(rel)); ok {
			return 0o755
		}
	}
	return a.opts.FilePerm
}

func (a *applier) record(action Action, path string, mode os.FileMode) {
	a.res.Ops = append(a.res.Ops, Op{Action: action, Path: path, Mode: mode})
	a.log.WithFields(logrus.Fields{
		"action":  string(action),
		"path":    path,
		"dry_run": a.opts.DryRun,
	}).Debug("fs op")
}

// SafeJoin joins parts below root and fails if the result is outside root.
func SafeJoin(root string, parts ...string) (string, error) {
	cleanRoot := filepath.Clean(root)
	p := filepath.Clean(filepath.Join(append([]string{root}, parts...)...))

	rel, err := filepath.Rel(cleanRoot, p)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s: %w", p, ErrEscape)
	}
	return p, nil
}

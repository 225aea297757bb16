package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-foldergen/pkg/diagram"
	"github.com/mattsolo1/grove-foldergen/pkg/fsops"
	"github.com/mattsolo1/grove-foldergen/pkg/history"
	"github.com/mattsolo1/grove-foldergen/pkg/tree"
	"github.com/mattsolo1/grove-foldergen/pkg/watch"
)

// ErrInvalidSource is returned when a diagram file cannot be used.
var ErrInvalidSource = errors.New("invalid source")

// Service is the core foldergen service
type Service struct {
	Registry *tree.Registry
	History  *history.Store // nil when history is disabled
	Config   *Config

	fs     afero.Fs
	logger logrus.FieldLogger
}

// Config holds service configuration
type Config struct {
	DataDir    string
	DirPerm    os.FileMode
	FilePerm   os.FileMode
	ExecGlobs  []string
	DBMode0600 bool
	History    bool
	Debounce   time.Duration
}

// DefaultConfig returns the settings used when none are given: the usual
// permissions, executable shell scripts, private database files and no
// build history.
func DefaultConfig() *Config {
	return &Config{
		DirPerm:    0o755,
		FilePerm:   0o644,
		ExecGlobs:  []string{"*.sh"},
		DBMode0600: true,
		Debounce:   watch.DefaultDebounce,
	}
}

// New creates a new foldergen service. fs is the filesystem diagrams are
// read from and layouts are created on.
func New(config *Config, reg *tree.Registry, fs afero.Fs, logger logrus.FieldLogger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if reg == nil {
		reg = tree.NewRegistry()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}

	s := &Service{
		Registry: reg,
		Config:   config,
		fs:       fs,
		logger:   logger,
	}

	if config.History {
		store, err := history.Open(config.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		s.History = store
	}
	return s, nil
}

// Close closes the service
func (s *Service) Close() error {
	if s.History != nil {
		if err := s.History.Close(); err != nil {
			return err
		}
	}
	return nil
}

// CheckSource verifies that path names a non-empty regular file. Files
// without a .txt extension are accepted with a warning.
func (s *Service) CheckSource(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: no path given", ErrInvalidSource)
	}
	info, err := s.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s does not exist", ErrInvalidSource, path)
		}
		return fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a file", ErrInvalidSource, path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrInvalidSource, path)
	}
	if ext := filepath.Ext(path); !strings.EqualFold(ext, ".txt") {
		s.logger.WithField("source", path).Warnf("source has extension %q, expected .txt", ext)
	}
	return nil
}

// Parse checks and parses a diagram file.
func (s *Service) Parse(path string) (*diagram.Diagram, error) {
	if err := s.CheckSource(path); err != nil {
		return nil, err
	}
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := diagram.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return d, nil
}

// Load parses a diagram file and builds its tree in the service registry.
func (s *Service) Load(path string) (*tree.Tree, error) {
	d, err := s.Parse(path)
	if err != nil {
		return nil, err
	}
	t, err := d.Build(s.Registry)
	if err != nil {
		return nil, fmt.Errorf("build tree from %s: %w", path, err)
	}
	s.logger.WithFields(logrus.Fields{
		"source":   path,
		"root":     t.Name(),
		"elements": t.Count(),
	}).Debug("loaded diagram")
	return t, nil
}

// Query selects an element of a tree. Exactly one of Path, ID or the
// Level/Position pair is used, in that order of preference.
type Query struct {
	Path     string
	ID       int
	HasID    bool
	Level    int
	Position int
}

// Find loads the diagram at source and resolves q in it.
func (s *Service) Find(source string, q Query) (tree.Element, *tree.Tree, error) {
	t, err := s.Load(source)
	if err != nil {
		return nil, nil, err
	}
	var e tree.Element
	switch {
	case q.Path != "":
		e, err = t.GetByPath(q.Path)
	case q.HasID:
		e, err = t.GetByID(q.ID)
	default:
		e, err = t.GetByCoordinates(q.Level, q.Position)
	}
	if err != nil {
		return nil, t, err
	}
	return e, t, nil
}

// DefaultDest is the destination used when none is given: a directory named
// after the diagram file, without extension, in the working directory.
func DefaultDest(source string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	base := filepath.Base(source)
	return filepath.Join(cwd, strings.TrimSuffix(base, filepath.Ext(base))), nil
}

// Outcome describes a finished build.
type Outcome struct {
	Tree   *tree.Tree
	Result *fsops.Result
	Record *history.Build
}

type buildOptions struct {
	dryRun   bool
	override bool
	force    bool
	merge    bool
}

type BuildOption func(*buildOptions)

func DryRun() BuildOption {
	return func(o *buildOptions) {
		o.dryRun = true
	}
}

func Override() BuildOption {
	return func(o *buildOptions) {
		o.override = true
	}
}

func Force() BuildOption {
	return func(o *buildOptions) {
		o.force = true
	}
}

func Merge() BuildOption {
	return func(o *buildOptions) {
		o.merge = true
	}
}

// Build creates the layout described by the diagram at source inside dest.
// The attempt is recorded in the history store, failed or not.
func (s *Service) Build(source, dest string, options ...BuildOption) (*Outcome, error) {
	opts := &buildOptions{}
	for _, opt := range options {
		opt(opts)
	}

	rec := &history.Build{
		Source: source,
		Dest:   dest,
		DryRun: opts.dryRun,
	}
	out := &Outcome{Record: rec}

	err := s.build(out, source, dest, opts)
	if err != nil {
		rec.Status = history.StatusFailed
		rec.Error = err.Error()
	}
	if out.Result != nil {
		rec.Actions = map[string]int{}
		for _, op := range out.Result.Ops {
			rec.Actions[string(op.Action)]++
		}
	}
	if s.History != nil {
		if herr := s.History.Record(rec); herr != nil {
			s.logger.WithError(herr).Warn("failed to record build")
		}
	}
	return out, err
}

func (s *Service) build(out *Outcome, source, dest string, opts *buildOptions) error {
	t, err := s.Load(source)
	if err != nil {
		return err
	}
	out.Tree = t
	out.Record.Root = t.Name()
	out.Record.Dirs, out.Record.Files = t.Stats()

	res, err := fsops.Apply(s.fs, dest, t.Entries(), fsops.Options{
		DryRun:     opts.dryRun,
		Override:   opts.override,
		Merge:      opts.merge,
		Force:      opts.force,
		DirPerm:    s.Config.DirPerm,
		FilePerm:   s.Config.FilePerm,
		ExecGlobs:  s.Config.ExecGlobs,
		DBMode0600: s.Config.DBMode0600,
		Logger:     s.logger,
	})
	out.Result = res
	if err != nil {
		return fmt.Errorf("create layout in %s: %w", dest, err)
	}
	return nil
}

// Watch builds once and then again every time source changes, until ctx
// is done. Rebuilds merge into the existing layout unless override or force
// was requested. report is called after every build.
func (s *Service) Watch(ctx context.Context, source, dest string, report func(*Outcome, error), options ...BuildOption) error {
	report(s.Build(source, dest, options...))

	opts := &buildOptions{}
	for _, opt := range options {
		opt(opts)
	}
	rebuild := options
	if !opts.override && !opts.force {
		rebuild = append(append([]BuildOption{}, options...), Merge())
	}

	return watch.File(ctx, source, func() error {
		report(s.Build(source, dest, rebuild...))
		return nil
	}, watch.Options{
		Debounce: s.Config.Debounce,
		Logger:   s.logger,
	})
}

// Builds returns the most recent builds.
func (s *Service) Builds(limit int) ([]*history.Build, error) {
	if s.History == nil {
		return nil, errors.New("build history is disabled")
	}
	return s.History.List(limit)
}

// GetBuild returns a recorded build by ID or unique ID prefix.
func (s *Service) GetBuild(id string) (*history.Build, error) {
	if s.History == nil {
		return nil, errors.New("build history is disabled")
	}
	return s.History.Get(id)
}

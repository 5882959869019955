package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"srcmap/internal/config"
	"srcmap/internal/indexstore"
	"srcmap/internal/source"
	"srcmap/internal/trace"
)

// session is everything a subcommand needs: the populated cache and the
// lookup facade bound to the working directory.
type session struct {
	sm       *source.SourceMap
	lookup   *source.Lookup
	manifest *config.Manifest
	index    *indexstore.Store
	tracer   trace.Tracer
}

type sessionOptions struct {
	fs         afero.Fs
	cwd        string
	configPath string
	mounts     []string // name=dir
	tracer     trace.Tracer
	manifest   *config.Manifest // preloaded; skips discovery
}

// openSession reads persistent flags, loads the manifest and builds the
// cache. The returned cleanup flushes the tracer.
func openSession(cmd *cobra.Command) (*session, func(), error) {
	root := cmd.Root()

	cwd, err := root.PersistentFlags().GetString("cwd")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get cwd flag: %w", err)
	}
	if cwd == "" {
		if cwd, err = os.Getwd(); err != nil {
			return nil, nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	configPath, err := root.PersistentFlags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	mounts, err := root.PersistentFlags().GetStringArray("mount")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get mount flag: %w", err)
	}

	manifest, err := loadManifest(configPath, cwd)
	if err != nil {
		return nil, nil, err
	}

	cleanup, err := setupTracing(cmd, manifest)
	if err != nil {
		return nil, nil, err
	}
	tracer := trace.FromContext(cmd.Context())

	sess, err := newSession(sessionOptions{
		fs:         afero.NewOsFs(),
		cwd:        cwd,
		configPath: configPath,
		mounts:     mounts,
		tracer:     tracer,
		manifest:   manifest,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return sess, cleanup, nil
}

// loadManifest loads an explicit --config or searches upwards from cwd.
// A missing manifest is not an error unless it was named explicitly.
func loadManifest(configPath, cwd string) (*config.Manifest, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	m, ok, err := config.Discover(cwd)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return m, nil
}

func newSession(opts sessionOptions) (*session, error) {
	if opts.fs == nil {
		opts.fs = afero.NewOsFs()
	}
	if opts.tracer == nil {
		opts.tracer = trace.Nop
	}
	manifest := opts.manifest
	if manifest == nil && opts.configPath != "" {
		m, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		manifest = m
	}

	var mounts []source.Mount
	cfg := source.Config{Fs: opts.fs, Tracer: opts.tracer}
	sess := &session{manifest: manifest, tracer: opts.tracer}

	if manifest != nil {
		cfg.Limits = manifest.Limits()
		for _, e := range manifest.MountEntries() {
			mounts = append(mounts, source.Mount{Name: e.Name, Path: e.Path})
		}
		if !manifest.Config.Index.Disable {
			// без [index].dir таблицы лежат в пользовательском кэше
			dir := manifest.IndexDir()
			if dir == "" {
				var err error
				if dir, err = indexstore.DefaultDir("srcmap"); err != nil {
					return nil, fmt.Errorf("index dir: %w", err)
				}
			}
			store, err := indexstore.Open(opts.fs, dir)
			if err != nil {
				return nil, err
			}
			sess.index = store
			cfg.Index = store
		}
	}

	// флаги важнее манифеста: AddMount перезаписывает одноимённые
	for _, raw := range opts.mounts {
		m, err := parseMountFlag(raw)
		if err != nil {
			return nil, err
		}
		mounts = append(mounts, m)
	}

	sm, err := source.New(cfg, mounts...)
	if err != nil {
		return nil, err
	}
	sess.sm = sm
	sess.lookup = source.NewLookup(sm, opts.cwd)

	trace.Point(opts.tracer, trace.ScopeSession, "session", opts.cwd, map[string]string{
		"mounts": fmt.Sprint(len(sm.Mounts())),
	})
	return sess, nil
}

// load reads a "mount:rel" argument into the cache.
func (s *session) load(arg string) (source.FileID, error) {
	mount, rel, err := parseFileArg(arg)
	if err != nil {
		return source.NoFile, err
	}
	id, _, err := s.sm.ReadFileRelative(mount, rel)
	return id, err
}

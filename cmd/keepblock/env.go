package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/keepblock/keepblock/internal/backup"
	"github.com/keepblock/keepblock/internal/config"
	"github.com/keepblock/keepblock/internal/errors"
	"github.com/keepblock/keepblock/internal/metrics"
	"github.com/keepblock/keepblock/pkg/boundary"
	"github.com/keepblock/keepblock/pkg/codewriter"
	"github.com/keepblock/keepblock/pkg/store"
)

// env is what a command needs after loading the configuration.
type env struct {
	cfg     *config.Config
	store   store.Store
	metrics *metrics.Recorder
	logger  *slog.Logger
	out     io.Writer
	errOut  io.Writer
}

func loadEnv(cmd *cobra.Command, opts *globalOptions) (*env, error) {
	cfg, err := config.Load(cmd, opts.configPath)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:     cfg,
		store:   openStore(cfg),
		metrics: metrics.New(),
		logger:  slog.Default(),
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}, nil
}

// openStore returns the artifact store selected by store.kind.
func openStore(cfg *config.Config) store.Store {
	if cfg.Store.Kind == "s3" {
		client := store.NewS3Client(store.S3Options{
			Region:    cfg.Store.Region,
			Endpoint:  cfg.Store.Endpoint,
			PathStyle: cfg.Store.PathStyle,
		})
		return store.NewS3(client, cfg.Store.Bucket, cfg.Store.Prefix)
	}
	return store.NewFS(cfg.StoreRoot())
}

// backups returns the snapshot directory, or nil when backups are off.
func (e *env) backups() *backup.Dir {
	dir := e.cfg.BackupPath()
	if dir == "" {
		return nil
	}
	return backup.New(dir)
}

func (e *env) writer(dryRun bool) *codewriter.Writer {
	return codewriter.New(e.store,
		codewriter.WithLogger(e.logger),
		codewriter.WithMetrics(e.metrics),
		codewriter.WithBackups(e.backups()),
		codewriter.WithCreateDirs(e.cfg.CreateDirs),
		codewriter.WithDryRun(dryRun),
	)
}

// localPath returns the file behind key when the store is a directory,
// so errors can quote the offending lines.
func (e *env) localPath(key string) string {
	if fs, ok := e.store.(*store.FS); ok {
		return fs.Path(key)
	}
	return ""
}

// classify converts err into a coded error located in key.
func (e *env) classify(err error, key string) *errors.Error {
	return errors.Classify(err, e.localPath(key))
}

// read returns the artifact stored under key.
func (e *env) read(ctx context.Context, key string) (string, error) {
	data, err := e.store.Read(ctx, key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// flushMetrics writes the textfile when metrics.textfile is set.
func (e *env) flushMetrics() {
	path := e.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.cfg.Dir(), path)
	}
	if err := e.metrics.WriteTextfile(path); err != nil {
		e.logger.Warn("write metrics textfile", "path", path, "error", err)
	}
}

// language picks the target language for key: an explicit --lang wins,
// then the file extension, then the configured default.
func (e *env) language(cmd *cobra.Command, key string) (boundary.Language, error) {
	if f := cmd.Flags().Lookup("lang"); f == nil || !f.Changed {
		if lang, ok := boundary.LanguageFromPath(key); ok {
			return lang, nil
		}
	}
	if lang := e.cfg.Lang(); lang != boundary.Unknown {
		return lang, nil
	}
	return boundary.Unknown, fmt.Errorf("%w: cannot tell the language of %s", boundary.ErrUnknownLanguage, key)
}

// readInput reads name, or stdin when name is "" or "-".
func readInput(cmd *cobra.Command, name string) (string, error) {
	if name == "" || name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", &store.PathError{Op: "read", Key: name, Err: err}
	}
	return string(data), nil
}

// isNotExist reports whether err means the artifact is absent.
func isNotExist(err error) bool {
	return stderrors.Is(err, store.ErrNotExist)
}

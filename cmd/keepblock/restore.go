package main

import (
	stderrors "errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/keepblock/keepblock/internal/backup"
	"github.com/keepblock/keepblock/internal/errors"
)

type restoreOptions struct {
	snapshot string
	list     bool
}

func restoreCmd(global *globalOptions) *cobra.Command {
	opts := &restoreOptions{}

	cmd := &cobra.Command{
		Use:   "restore <target>",
		Short: "Restore a file from its newest backup snapshot",
		Long: `Restore target from a snapshot taken before keepblock overwrote
user code in it. The current content is snapshotted first, so a restore
can itself be undone.

Examples:
  keepblock restore ui/dialog.py --list
  keepblock restore ui/dialog.py
  keepblock restore ui/dialog.py --snapshot .keepblock/backups/ui/dialog.py.20260102T150405.000000000Z.zst`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.snapshot, "snapshot", "s", "", "Restore this snapshot instead of the newest")
	cmd.Flags().BoolVar(&opts.list, "list", false, "List snapshots, newest first")

	return cmd
}

func runRestore(cmd *cobra.Command, global *globalOptions, opts *restoreOptions, key string) error {
	e, err := loadEnv(cmd, global)
	if err != nil {
		return err
	}

	dir := e.backups()
	if dir == nil {
		dir = backup.New(filepath.Join(e.cfg.Dir(), e.cfg.Backup.Dir))
	}

	if opts.list {
		snaps, err := dir.List(key)
		if err != nil {
			return errors.New("K204").Wrap(err)
		}
		if len(snaps) == 0 {
			info(e.out, "No snapshots for %s", key)
		}
		for _, s := range snaps {
			info(e.out, "%s  %s", s.Time.Local().Format("2006-01-02 15:04:05"), s.Path)
		}
		return nil
	}

	path := opts.snapshot
	if path == "" {
		snap, err := dir.Latest(key)
		if err != nil {
			if stderrors.Is(err, backup.ErrNoSnapshot) {
				return errors.Newf(errors.CategoryStorage, "no snapshots for %s in %s", key, dir.Root())
			}
			return errors.New("K204").Wrap(err)
		}
		path = snap.Path
	}
	data, err := backup.Load(path)
	if err != nil {
		return errors.New("K201").WithDetail(path).Wrap(err)
	}

	ctx := cmd.Context()
	current, err := e.store.Read(ctx, key)
	switch {
	case err == nil:
		saved, err := dir.Save(key, current)
		if err != nil {
			return errors.New("K204").Wrap(err)
		}
		info(e.out, "Current version saved to %s", saved)
	case !isNotExist(err):
		return e.classify(err, key)
	}

	if err := e.store.Write(ctx, key, data); err != nil {
		return e.classify(err, key)
	}
	success(e.out, "Restored %s from %s", key, path)
	return nil
}

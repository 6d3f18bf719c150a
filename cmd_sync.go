package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"drivesync/internal/config"
	"drivesync/internal/fs/local"
	"drivesync/internal/ledger"
	syncer "drivesync/internal/sync"
)

func newSyncCmd(a *app) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Keep a local directory in sync with a remote folder",
		Long: `Mirror a remote folder into a local directory.

Without --once the folder is checked every --interval seconds and a full sync
runs only when something changed. Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := cfg.ValidateSync(); err != nil {
				return err
			}
			ctx := cmd.Context()

			client, err := a.remote(ctx)
			if err != nil {
				return err
			}

			store, l, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			engine := syncer.NewEngine(&syncer.EngineOptions{
				Remote: client,
				Local:  local.NewAdapter(),
				Store:  store,
			})
			w := syncer.NewWatcher(engine, l, syncer.WatchOptions{
				FolderID:  cfg.Sync.FolderID,
				LocalPath: cfg.Sync.LocalPath,
				Interval:  cfg.Sync.IntervalDuration,
			})

			if once {
				return w.RunOnce(ctx)
			}
			return w.Run(ctx)
		},
	}

	f := cmd.Flags()
	f.StringP("folder-id", "f", "", "remote folder ID to mirror")
	f.StringP("local-path", "l", "", "local destination directory")
	f.IntP("interval", "i", int(config.DefaultInterval.Seconds()), "seconds between change checks")
	f.BoolVarP(&once, "once", "o", false, "sync once and exit")
	f.String("ledger", config.DefaultLedgerPath, "ledger file path")
	f.String("ledger-backend", config.DefaultLedgerBackend, "ledger storage: json or bolt")

	a.bind("sync.folder_id", f.Lookup("folder-id"))
	a.bind("sync.local_path", f.Lookup("local-path"))
	a.bind("sync.interval", f.Lookup("interval"))
	a.bind("ledger.path", f.Lookup("ledger"))
	a.bind("ledger.backend", f.Lookup("ledger-backend"))
	return cmd
}

// openLedger 账本损坏时记录警告并从空账本开始
func openLedger(cfg *config.Config) (ledger.Store, ledger.Ledger, error) {
	store, err := ledger.Open(cfg.Ledger.Backend, cfg.Ledger.Path)
	if err != nil {
		return nil, nil, err
	}

	l, err := store.Load()
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrCorrupt):
		slog.Warn("ledger is unreadable, starting with an empty one", "path", cfg.Ledger.Path, "err", err)
		l = ledger.New()
	default:
		store.Close()
		return nil, nil, err
	}

	slog.Info("ledger loaded", "path", cfg.Ledger.Path, "backend", cfg.Ledger.Backend, "entries", l.Len())
	return store, l, nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"drivesync/internal/fs"
	"drivesync/internal/fs/local"
	syncer "drivesync/internal/sync"
)

const defaultOutput = "./downloaded_folder"

func newDownloadCmd(a *app) *cobra.Command {
	var (
		folderID string
		output   string
		listOnly bool
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a remote folder tree once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.remote(ctx)
			if err != nil {
				return err
			}

			localFS := local.NewAdapter()
			// 一次性下载不使用账本
			engine := syncer.NewEngine(&syncer.EngineOptions{Remote: client, Local: localFS})

			meta, err := engine.ResolveFolder(ctx, folderID)
			if err != nil {
				return err
			}
			slog.Info("remote folder", "name", meta.Name, "id", meta.ID)

			if listOnly {
				items, err := engine.ListAll(ctx, folderID)
				if err != nil {
					return err
				}
				printListing(cmd.OutOrStdout(), meta.Name, items)
				return nil
			}

			if err := localFS.MkdirAll(output); err != nil {
				return err
			}
			ok, err := engine.DownloadFolder(ctx, folderID, meta.Name, output)
			if err != nil {
				slog.Warn("some items failed to download", "err", err)
			}
			if !ok {
				return errors.New("download failed: nothing was downloaded")
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Downloaded %q to %s\n", meta.Name, output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&folderID, "folder-id", "f", "", "remote folder ID")
	f.StringVarP(&output, "output", "o", defaultOutput, "destination directory")
	f.BoolVarP(&listOnly, "list-only", "l", false, "only list the folder contents")
	_ = cmd.MarkFlagRequired("folder-id")
	return cmd
}

func printListing(w io.Writer, name string, items []*fs.RemoteItem) {
	bold := color.New(color.Bold)
	dir := color.New(color.FgBlue)
	dim := color.New(color.Faint)

	bold.Fprintf(w, "%s (%d items)\n", name, len(items))
	for _, item := range items {
		if item.IsFolder() {
			dir.Fprintf(w, "  [dir]  %s/\n", item.Name)
			continue
		}
		size := ""
		if item.Size > 0 {
			size = humanize.Bytes(uint64(item.Size))
		}
		fmt.Fprintf(w, "  [file] %s", item.Name)
		if size != "" {
			dim.Fprintf(w, "  %s", size)
		}
		fmt.Fprintln(w)
	}
}

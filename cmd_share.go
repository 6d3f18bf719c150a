package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"drivesync/internal/fs/local"
	"drivesync/internal/share"
)

func newShareCmd(a *app) *cobra.Command {
	var opts share.Options

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Upload a local folder and share it by email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.remote(ctx)
			if err != nil {
				return err
			}

			res, err := share.NewSharer(client, local.NewAdapter()).Share(ctx, opts)
			if res != nil {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Uploaded %d files in %d folders", res.Uploaded, res.Folders)
				if res.Failed > 0 {
					color.New(color.FgRed).Fprintf(out, " (%d failed)", res.Failed)
				}
				fmt.Fprintln(out)
				for _, email := range res.Granted {
					fmt.Fprintf(out, "Shared with %s as %s\n", email, opts.Role)
				}
				color.New(color.FgGreen, color.Bold).Fprintf(out, "Link: %s\n", res.Link)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.LocalPath, "folder", "f", "", "local folder to upload")
	f.StringArrayVarP(&opts.Emails, "email", "e", nil, "recipient email (repeatable)")
	f.StringVarP(&opts.Role, "role", "r", share.DefaultRole, "reader, writer, commenter or owner")
	f.StringVarP(&opts.ParentID, "parent-folder", "p", share.DefaultParent, "remote parent folder ID")
	f.StringArrayVar(&opts.Exclude, "exclude", nil, "glob of relative paths to skip (repeatable, ** supported)")
	_ = cmd.MarkFlagRequired("folder")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"drivesync/internal/cron"
	"drivesync/internal/fs"
	"drivesync/internal/share"
)

func newCronCmd(a *app) *cobra.Command {
	var (
		job    cron.Job
		list   bool
		remove bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "cron",
		Short: "Schedule the share command with crontab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			m := cron.NewManager(cron.NewExecRunner())

			if list {
				table, err := m.List(ctx)
				if err != nil {
					return err
				}
				if table == "" {
					fmt.Fprintln(out, "No cron jobs configured.")
					return nil
				}
				color.New(color.Bold).Fprintln(out, "Current cron jobs:")
				fmt.Fprintln(out, table)
				return nil
			}

			if job.Folder == "" || job.Email == "" {
				return errors.New("--folder and --email are required")
			}
			folder, err := filepath.Abs(job.Folder)
			if err != nil {
				return err
			}
			job.Folder = folder

			if remove {
				removed, err := m.Remove(ctx, job.Folder, job.Email)
				if err != nil {
					return err
				}
				if len(removed) == 0 {
					fmt.Fprintln(out, "No matching cron job found.")
					return nil
				}
				for _, l := range removed {
					color.New(color.FgYellow).Fprintf(out, "Removed: %s\n", l)
				}
				return nil
			}

			if !fs.IsValidRole(job.Role) {
				return fmt.Errorf("invalid role %q (valid: %v)", job.Role, fs.ValidRoles)
			}
			if job.Binary, err = os.Executable(); err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}
			if job.WorkDir, err = os.Getwd(); err != nil {
				return err
			}
			line, err := job.Line()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "Cron entry to add:")
			color.New(color.FgCyan).Fprintln(out, line)
			fmt.Fprintln(out)

			if !yes && !confirm(cmd.InOrStdin(), out, "Add this cron job? (y/N): ") {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}

			added, err := m.Add(ctx, line)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintln(out, "This cron job already exists.")
				return nil
			}
			color.New(color.FgGreen).Fprintln(out, "Cron job added.")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&job.Folder, "folder", "f", "", "local folder to share")
	f.StringVarP(&job.Email, "email", "e", "", "recipient email")
	f.StringVarP(&job.Role, "role", "r", share.DefaultRole, "reader, writer, commenter or owner")
	f.IntVarP(&job.Interval, "interval", "i", cron.DefaultInterval, "minutes between runs")
	f.BoolVar(&remove, "remove", false, "remove the matching cron job")
	f.BoolVarP(&list, "list", "l", false, "list current cron jobs")
	f.BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

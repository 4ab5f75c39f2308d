package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fermata/internal/daemon"
	"fermata/internal/enrich"
	"fermata/internal/ipc"
	"fermata/internal/library"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and worker status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status daemon.Status
			err := ctx.withClient(func(client *ipc.Client) error {
				var callErr error
				status, callErr = client.Status()
				return callErr
			})
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout, renderStatusLine("Running", boolKind(status.Running), fmt.Sprintf("pid %d", status.PID), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Database", statusInfo, status.DatabasePath, colorize))
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Workers", colorize) {
				fmt.Fprintln(stdout, line)
			}
			rows := buildWorkerRows(status.Workers)
			if len(rows) == 0 {
				fmt.Fprintln(stdout, "No providers enabled")
				return nil
			}
			table := renderTable([]column{
				{title: "Provider"},
				{title: "State"},
				{title: "Pending", numeric: true},
				{title: "Matched", numeric: true},
				{title: "Not Found", numeric: true},
				{title: "Errors", numeric: true},
				{title: "Progress"},
				{title: "Current"},
			}, rows)
			fmt.Fprintln(stdout, table)
			return nil
		},
	}
}

func buildWorkerRows(workers []enrich.WorkerStatus) [][]string {
	rows := make([][]string, 0, len(workers))
	for _, w := range workers {
		rows = append(rows, []string{
			w.Provider,
			workerState(w),
			fmt.Sprintf("%d", w.Pending),
			fmt.Sprintf("%d", w.Stats.Matched),
			fmt.Sprintf("%d", w.Stats.NotFound),
			fmt.Sprintf("%d", w.Stats.Errors),
			formatProgress(w.Progress),
			formatCurrent(w.Current),
		})
	}
	return rows
}

func workerState(w enrich.WorkerStatus) string {
	switch {
	case !w.Running:
		return "stopped"
	case w.Paused:
		return "paused"
	case w.Idle:
		return "idle"
	default:
		return "running"
	}
}

func formatProgress(progress map[library.Kind]library.Progress) string {
	if len(progress) == 0 {
		return "-"
	}
	parts := make([]string, 0, 3)
	for _, kind := range []library.Kind{library.KindArtist, library.KindAlbum, library.KindTrack} {
		p, ok := progress[kind]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d/%d", kind, p.Matched, p.Total))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func formatCurrent(item *library.WorkItem) string {
	if item == nil {
		return "-"
	}
	if item.ArtistName != "" && item.ArtistName != item.Name {
		return fmt.Sprintf("%s: %s (%s)", item.Kind, item.Name, item.ArtistName)
	}
	return fmt.Sprintf("%s: %s", item.Kind, item.Name)
}

func newPauseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pause [provider]",
		Short: "Pause all workers, or one provider's worker",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := providerArg(args)
			err := ctx.withClient(func(client *ipc.Client) error {
				return client.Pause(provider)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pausedMessage("Paused", provider))
			return nil
		},
	}
}

func newResumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resume [provider]",
		Short: "Resume all workers, or one provider's worker",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := providerArg(args)
			err := ctx.withClient(func(client *ipc.Client) error {
				return client.Resume(provider)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pausedMessage("Resumed", provider))
			return nil
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the fermata daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := ctx.withClient(func(client *ipc.Client) error {
				return client.Stop()
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stop request sent")
			return nil
		},
	}
}

func providerArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.TrimSpace(args[0])
}

func pausedMessage(verb, provider string) string {
	if provider == "" {
		return verb + " all workers"
	}
	return fmt.Sprintf("%s %s worker", verb, provider)
}

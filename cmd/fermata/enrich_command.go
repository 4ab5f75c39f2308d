package main

import (
	"fmt"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"fermata/internal/config"
	"fermata/internal/enrich"
	"fermata/internal/library"
	"fermata/internal/logging"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	enrichCmd := &cobra.Command{
		Use:   "enrich",
		Short: "Run enrichment outside the daemon",
	}
	enrichCmd.AddCommand(newEnrichOnceCommand(ctx))
	return enrichCmd
}

// lockDaemon takes the daemon's single-instance lock so a one-shot cycle
// never races the daemon's workers for the same item. The returned
// release must be called when processing finishes.
func lockDaemon(cfg *config.Config) (func(), error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("check daemon lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("daemon is running (lock held at %s); stop it first or let its workers drain the backlog", cfg.LockPath())
	}
	return func() { _ = lock.Unlock() }, nil
}

func newEnrichOnceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "once <provider>",
		Short: "Process a single backlog item for one provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			release, err := lockDaemon(cfg)
			if err != nil {
				return err
			}
			defer release()
			return ctx.withStore(func(store *library.Store) error {
				logger, err := logging.New(logging.Options{
					Level:  cfg.Logging.Level,
					Format: cfg.Logging.Format,
				})
				if err != nil {
					return err
				}
				supervisor, err := enrich.NewSupervisor(cfg, store, logger)
				if err != nil {
					return err
				}
				item, err := supervisor.RunOnce(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if item == nil {
					fmt.Fprintln(stdout, "Backlog is empty for this provider")
					return nil
				}
				fmt.Fprintf(stdout, "Processed %s %d: %s\n", item.Kind, item.EntityID, item.Name)
				return nil
			})
		},
	}
}

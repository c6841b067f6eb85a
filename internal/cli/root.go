// Package cli implements recordctl, an administration tool that reads and
// replaces record collections on the configured backend.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/dtroode/examcert-server/internal/config"
	"github.com/dtroode/examcert-server/internal/logger"
	"github.com/dtroode/examcert-server/internal/model"
	"github.com/dtroode/examcert-server/internal/repository/recordstore"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	Backend  string
	DataDir  string
	LogLevel int

	newStore func(ctx context.Context, cfg *config.Config, logger *logger.Logger) (model.UpdatingRecordStore, error)
}

func defaultStore(ctx context.Context, cfg *config.Config, logger *logger.Logger) (model.UpdatingRecordStore, error) {
	return recordstore.New(ctx, cfg, logger)
}

// Execute runs recordctl with args.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(&RootOptions{newStore: defaultStore})
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "recordctl",
		Short:         "Inspect and replace exam record collections",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "Storage backend (local, graph, minio); overrides STORAGE_BACKEND")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "Data directory of the local backend; overrides STORAGE_DATA_DIR")
	cmd.PersistentFlags().IntVar(&opts.LogLevel, "log-level", 8, "slog level (-4 debug, 0 info, 4 warn, 8 error)")

	cmd.AddCommand(
		newCollectionsCmd(),
		newReadCmd(opts),
		newWriteCmd(opts),
		newAppendCmd(opts),
	)

	return cmd
}

// openStore loads configuration from the environment, applies flag overrides and builds the store.
func openStore(cmd *cobra.Command, opts *RootOptions) (model.UpdatingRecordStore, error) {
	cfg, err := config.NewConfigWith(func(c *config.Config) {
		if opts.Backend != "" {
			c.Storage.Backend = opts.Backend
		}
		if opts.DataDir != "" {
			c.Storage.DataDir = opts.DataDir
		}
	})
	if err != nil {
		return nil, err
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), opts.LogLevel)
	return opts.newStore(cmd.Context(), cfg, log)
}

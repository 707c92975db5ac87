package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adroit-club/assistant/internal/app"
	"github.com/adroit-club/assistant/internal/config"
	"github.com/adroit-club/assistant/internal/ingest"
)

var ingestUser string

var ingestCmd = &cobra.Command{
	Use:   "ingest [public|user]",
	Short: "Rebuild index partitions",
	Long: `Rebuild knowledge partitions from their sources:

  public  the markdown documentation corpus and the resource catalogue
          from the club database
  user    one member's uploaded documents (requires --user)

The previous indexes stay live until the rebuild completes; a partition
whose rebuild fails keeps its previous index.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"public", "user"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), args[0])
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestUser, "user", "",
		"user ID for the user partition")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(parent context.Context, target string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger()

	a, err := app.Setup(parent, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	switch target {
	case "public":
		a.Supervisor.ReindexAll(parent)
		a.Supervisor.Wait()
	case "user":
		if ingestUser == "" {
			return errors.New("--user is required for the user partition")
		}
		if err := a.Supervisor.ReindexUser(parent, ingestUser); err != nil {
			if errors.Is(err, ingest.ErrNoDocuments) {
				return fmt.Errorf("no documents found in %s", cfg.UserDocsDir(ingestUser))
			}
			return err
		}
	default:
		return fmt.Errorf("unknown target %q", target)
	}

	logger.Info("ingestion finished", "target", target)
	return nil
}

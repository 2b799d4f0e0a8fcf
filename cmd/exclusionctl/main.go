// Command exclusionctl applies and revokes exclusion keywords against the
// subvention database without going through the HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"subvention/internal/config"
	"subvention/internal/db"
	"subvention/internal/models"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Store is the part of the database the commands use.
type Store interface {
	ApplyExclusionKeyword(ctx context.Context, name, description string) (*models.ApplyResult, error)
	RevokeExclusionKeyword(ctx context.Context, id int64) (*models.RevokeResult, error)
	ListActiveKeywords(ctx context.Context) ([]models.ExclusionKeyword, error)
	GetKeyword(ctx context.Context, id int64) (*models.ExclusionKeyword, error)
	FindExcludedBy(ctx context.Context, keyword string) ([]models.AnnouncementSummary, error)
	ListKeywordEvents(ctx context.Context, keywordID int64) ([]models.KeywordEvent, error)
	ReconcileKeywordCounts(ctx context.Context) (int64, error)
	Close()
}

// Global flag values.
var (
	flagDatabaseURL string
	flagJSON        bool
	flagMigrate     bool
)

// store is opened by PersistentPreRunE and closed by closeStore.
var store Store

// openStore connects to the database. Replaced in tests.
var openStore = func(ctx context.Context, connString string) (Store, error) {
	cfg := config.Load()
	database, err := db.New(ctx, connString,
		db.WithTxTimeout(cfg.TxTimeout),
		db.WithTxMaxRetries(cfg.TxMaxRetries),
	)
	if err != nil {
		return nil, err
	}
	if flagMigrate {
		if err := database.RunMigrations(connString); err != nil {
			database.Close()
			return nil, err
		}
	}
	return database, nil
}

// sysError marks failures that are not the caller's fault.
type sysError struct {
	err error
}

func (e *sysError) Error() string { return e.err.Error() }
func (e *sysError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "exclusionctl",
		Short:         "Manage exclusion keywords",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd.Context(), flagDatabaseURL)
			if err != nil {
				return &sysError{fmt.Errorf("connect to database: %w", err)}
			}
			store = s
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flagDatabaseURL, "database-url", config.Load().DatabaseURL, "PostgreSQL connection string (default: $DATABASE_URL)")
	root.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	root.PersistentFlags().BoolVar(&flagMigrate, "migrate", false, "run pending migrations before the command")

	root.AddCommand(newApplyCmd())
	root.AddCommand(newRevokeCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newReconcileCmd())
	return root
}

func closeStore() {
	if store != nil {
		store.Close()
		store = nil
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	var se *sysError
	switch {
	case err == nil:
		return exitSuccess
	case db.IsStorageError(err), errors.As(err, &se):
		return exitSysError
	default:
		return exitUserError
	}
}

func main() {
	root := newRootCmd()
	err := root.ExecuteContext(context.Background())
	closeStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

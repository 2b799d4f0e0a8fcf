package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"

	"subvention/internal/db"
	"subvention/internal/models"
)

func newApplyCmd() *cobra.Command {
	var description string
	var retries uint64

	cmd := &cobra.Command{
		Use:   "apply <keyword>",
		Short: "Register a keyword and exclude matching announcements",
		Long: `Apply registers (or reactivates) an exclusion keyword. Every pending or
approved announcement whose title contains the keyword is excluded, and
active subventions linked to those announcements are deactivated.

Example:
  exclusionctl apply Youth --description "youth-only programs"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result *models.ApplyResult
			err := withRetry(cmd, retries, func() error {
				var err error
				result, err = store.ApplyExclusionKeyword(cmd.Context(), args[0], description)
				return err
			})
			if err != nil {
				return err
			}
			return printApplyResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "keyword description")
	cmd.Flags().Uint64Var(&retries, "retries", 3, "retries after a storage error")
	return cmd
}

func newRevokeCmd() *cobra.Command {
	var retries uint64

	cmd := &cobra.Command{
		Use:   "revoke <keyword-id>",
		Short: "Revoke a keyword and restore announcements it alone excluded",
		Long: `Revoke removes the keyword from every announcement tag set. Announcements
left with no keywords return to their prior status. Subventions stay
deactivated.

Example:
  exclusionctl revoke 12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseKeywordID(args[0])
			if err != nil {
				return err
			}

			var result *models.RevokeResult
			err = withRetry(cmd, retries, func() error {
				var err error
				result, err = store.RevokeExclusionKeyword(cmd.Context(), id)
				return err
			})
			if err != nil {
				return err
			}
			return printRevokeResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().Uint64Var(&retries, "retries", 3, "retries after a storage error")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active keywords with live exclusion counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keywords, err := store.ListActiveKeywords(cmd.Context())
			if err != nil {
				return err
			}
			return printKeywords(cmd.OutOrStdout(), keywords)
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <keyword-id>",
		Short: "Show a keyword, the announcements it excludes, and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseKeywordID(args[0])
			if err != nil {
				return err
			}

			keyword, err := store.GetKeyword(cmd.Context(), id)
			if err != nil {
				return err
			}
			announcements, err := store.FindExcludedBy(cmd.Context(), keyword.Name)
			if err != nil {
				return err
			}
			events, err := store.ListKeywordEvents(cmd.Context(), id)
			if err != nil {
				return err
			}

			return printKeywordDetail(cmd.OutOrStdout(), &models.KeywordDetail{
				Keyword:       keyword,
				Announcements: announcements,
				Events:        events,
			})
		},
	}
}

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Copy live exclusion counts into the stored keyword counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drifted, err := store.ReconcileKeywordCounts(cmd.Context())
			if err != nil {
				return err
			}
			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]int64{"corrected": drifted})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Corrected %d keyword counters\n", drifted)
			return nil
		},
	}
}

func parseKeywordID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid keyword id %q", raw)
	}
	return id, nil
}

// withRetry re-runs op after a storage error, which leaves the database
// unchanged. Domain errors are returned at once.
func withRetry(cmd *cobra.Command, retries uint64, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 0

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil || !db.IsStorageError(err) {
			return backoff.Permanent(err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "attempt %d failed: %v\n", attempt, err)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, retries), cmd.Context()))
}

package jobs

import (
	"context"
	"errors"
	"log"

	"subvention/internal/config"
	"subvention/internal/db"
	"subvention/internal/models"
)

// KeywordApplier applies exclusion keywords.
type KeywordApplier interface {
	ApplyExclusionKeyword(ctx context.Context, name, description string) (*models.ApplyResult, error)
}

// BootstrapKeywords applies the configured keywords. Keywords that are
// already active are left alone, so running it on every start is safe.
// It returns the number of keywords newly applied.
func BootstrapKeywords(ctx context.Context, applier KeywordApplier, keywords []config.BootstrapKeyword) (int, error) {
	applied := 0
	for _, k := range keywords {
		result, err := applier.ApplyExclusionKeyword(ctx, k.Keyword, k.Description)
		switch {
		case errors.Is(err, db.ErrKeywordActive):
			continue
		case db.IsValidationError(err):
			log.Printf("Bootstrap: skipping invalid keyword %q: %v", k.Keyword, err)
			continue
		case err != nil:
			return applied, err
		}

		applied++
		log.Printf("Bootstrap: applied %q (affected %d, deactivated %d)",
			result.Keyword, result.AffectedCount, result.DeactivatedCount)
	}
	return applied, nil
}

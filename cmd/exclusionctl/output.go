package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"subvention/internal/models"
)

const timeLayout = "2006-01-02 15:04"

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printApplyResult(w io.Writer, r *models.ApplyResult) error {
	if flagJSON {
		return writeJSON(w, r)
	}
	fmt.Fprintf(w, "Applied %q (id %d)\n", r.Keyword, r.KeywordID)
	fmt.Fprintf(w, "  matched:     %d\n", r.AffectedCount)
	fmt.Fprintf(w, "  updated:     %d\n", r.UpdatedCount)
	fmt.Fprintf(w, "  deactivated: %d\n", r.DeactivatedCount)
	return nil
}

func printRevokeResult(w io.Writer, r *models.RevokeResult) error {
	if flagJSON {
		return writeJSON(w, r)
	}
	fmt.Fprintf(w, "Revoked %q (id %d)\n", r.Keyword, r.KeywordID)
	fmt.Fprintf(w, "  restored:         %d\n", r.RestoredCount)
	fmt.Fprintf(w, "  still excluded:   %d\n", r.UntaggedCount)
	return nil
}

func printKeywords(w io.Writer, keywords []models.ExclusionKeyword) error {
	if flagJSON {
		if keywords == nil {
			keywords = []models.ExclusionKeyword{}
		}
		return writeJSON(w, keywords)
	}
	if len(keywords) == 0 {
		fmt.Fprintln(w, "No active exclusion keywords")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKEYWORD\tEXCLUDED\tCREATED\tDESCRIPTION")
	for _, k := range keywords {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", k.ID, k.Name, k.LiveExclusionCount, k.CreatedAt.Format(timeLayout), deref(k.Description))
	}
	return tw.Flush()
}

func printKeywordDetail(w io.Writer, d *models.KeywordDetail) error {
	if flagJSON {
		return writeJSON(w, d)
	}

	k := d.Keyword
	state := "active"
	if !k.Active {
		state = "inactive"
	}
	fmt.Fprintf(w, "%s (id %d, %s)\n", k.Name, k.ID, state)
	if k.Description != nil {
		fmt.Fprintf(w, "  %s\n", *k.Description)
	}
	fmt.Fprintf(w, "Excluded announcements: %d\n", len(d.Announcements))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, a := range d.Announcements {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n", a.ID, a.SiteType, a.Title, a.ExclusionKeywords.String(), a.OriginURL)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(d.Events) > 0 {
		fmt.Fprintln(w, "History:")
		for _, e := range d.Events {
			fmt.Fprintf(w, "  %s  %-8s affected=%d changed=%d deactivated=%d\n",
				e.CreatedAt.Format(timeLayout), e.Action, e.AffectedCount, e.ChangedCount, e.DeactivatedCount)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/reviewdesk/reviewdesk/internal/records"
	"github.com/reviewdesk/reviewdesk/internal/views"
)

func printSummary(w io.Writer, counts map[records.Status]int) {
	parts := make([]string, 0, len(counts))
	for _, s := range records.Statuses() {
		parts = append(parts, fmt.Sprintf("%s: %d", s.Label(), counts[s]))
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
}

func printRecords(w io.Writer, recs []records.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(w, views.EmptyFilterMessage)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tNOTE")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Status.Label(), r.Note)
	}
	_ = tw.Flush()
}

func printPagination(w io.Writer, p views.Pagination) {
	fmt.Fprintf(w, "Page %d of %d\n", p.Page, p.TotalPages)
}

func printHistory(w io.Writer, history []records.HistoryEntry) {
	if len(history) == 0 {
		fmt.Fprintln(w, views.EmptyHistoryMessage)
		return
	}
	for _, e := range history {
		line := fmt.Sprintf("%s  #%s  %s -> %s", e.Timestamp.Format(time.RFC3339), e.RecordID, e.PreviousStatus.Label(), e.NewStatus.Label())
		if e.Note != "" {
			line += "  " + e.Note
		}
		fmt.Fprintln(w, line)
	}
}

func printStatuses(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tLABEL\tNOTE REQUIRED")
	for _, s := range records.Statuses() {
		required := "no"
		if s.RequiresNote() {
			required = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s, s.Label(), required)
	}
	_ = tw.Flush()
}

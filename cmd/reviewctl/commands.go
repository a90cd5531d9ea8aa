package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reviewdesk/reviewdesk/internal/records"
	"github.com/reviewdesk/reviewdesk/internal/review"
	"github.com/reviewdesk/reviewdesk/internal/session"
	"github.com/reviewdesk/reviewdesk/internal/views"
)

func newRootCmd() *cobra.Command {
	cfg, cfgErr := loadClientConfig()

	root := &cobra.Command{
		Use:           "reviewctl",
		Short:         "Review specimen records held by a reviewdesk store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return cfgErr
			}
			if cfg.PageSize < 1 {
				return fmt.Errorf("page size must be positive, got %d", cfg.PageSize)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "record store base URL")
	root.PersistentFlags().IntVar(&cfg.PageSize, "limit", cfg.PageSize, "records per page")
	root.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	root.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "log session activity to stderr")

	root.AddCommand(newListCmd(&cfg), newReviewCmd(&cfg), newStatusesCmd())
	return root
}

func newListCmd(cfg *clientConfig) *cobra.Command {
	var (
		page   int
		filter string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of records with status counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := views.ParseFilter(filter)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			state := cfg.newSession(session.WithPage(page))
			state.Load(ctx)
			snap := state.Snapshot()
			if snap.Err != "" {
				return errors.New(snap.Err)
			}
			if clamped := views.NewPagination(snap.Page, snap.Limit, snap.TotalCount).Clamp(page); clamped != snap.Page {
				state.SetPage(ctx, clamped)
				snap = state.Snapshot()
				if snap.Err != "" {
					return errors.New(snap.Err)
				}
			}
			var cache views.Cache
			derived := cache.Derive(snap.Version, snap.Records, snap.History, f)
			out := cmd.OutOrStdout()
			printSummary(out, derived.Counts)
			printRecords(out, derived.Visible)
			printPagination(out, views.NewPagination(snap.Page, snap.Limit, snap.TotalCount))
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", session.DefaultPage, "page to show")
	cmd.Flags().StringVar(&filter, "filter", string(views.FilterAll), "status filter: all or a status")
	return cmd
}

func newReviewCmd(cfg *clientConfig) *cobra.Command {
	var (
		status string
		note   string
	)
	cmd := &cobra.Command{
		Use:   "review <id>",
		Short: "Set a record's review status and note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseReviewStatus(status)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			state := cfg.newSession()
			rec, err := locate(ctx, state, args[0])
			if err != nil {
				return err
			}

			form := review.NewForm(state, rec)
			form.SetStatus(target)
			if cmd.Flags().Changed("note") {
				form.SetNote(note)
			}
			if err := form.Save(ctx); err != nil {
				return errors.New(form.Error())
			}

			out := cmd.OutOrStdout()
			updated, _ := state.Record(rec.ID)
			fmt.Fprintf(out, "Saved %s (%s): %s\n", updated.ID, updated.Name, updated.Status.Label())
			printHistory(out, views.OrderedHistory(state.Snapshot().History))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "new status: approved, flagged or needs_revision")
	cmd.Flags().StringVar(&note, "note", "", "reviewer note")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func newStatusesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "statuses",
		Short: "List the review statuses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printStatuses(cmd.OutOrStdout())
			return nil
		},
	}
}

func parseReviewStatus(raw string) (records.Status, error) {
	s, err := records.ParseStatus(raw)
	if err != nil {
		return "", err
	}
	for _, choice := range records.ReviewStatuses() {
		if s == choice {
			return s, nil
		}
	}
	return "", fmt.Errorf("status %q cannot be chosen in a review", s)
}

// locate walks pages from the first until the record is loaded.
func locate(ctx context.Context, state *session.State, id string) (records.Record, error) {
	state.Load(ctx)
	for {
		snap := state.Snapshot()
		if snap.Err != "" {
			return records.Record{}, errors.New(snap.Err)
		}
		if rec, ok := state.Record(id); ok {
			return rec, nil
		}
		if !views.NewPagination(snap.Page, snap.Limit, snap.TotalCount).HasNext {
			return records.Record{}, fmt.Errorf("record %s not found", id)
		}
		state.SetPage(ctx, snap.Page+1)
	}
}

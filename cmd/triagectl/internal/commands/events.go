// Copyright 2025 The Zen Watcher Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kube-zen/zen-triage/cmd/triagectl/internal/output"
	"github.com/kube-zen/zen-triage/pkg/dashboard"
	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/models"
	"github.com/kube-zen/zen-triage/pkg/query"
	"github.com/kube-zen/zen-triage/pkg/store"
)

func NewEventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event", "ev"},
		Short:   "List, inspect and triage security events",
	}
	cmd.AddCommand(newEventsListCommand())
	cmd.AddCommand(newEventsGetCommand())
	cmd.AddCommand(newEventsStatusCommand())
	cmd.AddCommand(newEventsBatchCommand())
	cmd.AddCommand(newEventsDeleteCommand())
	return cmd
}

// eventPage is the structured form of one listed page
type eventPage struct {
	Events []models.EventRecord `json:"events" yaml:"events"`
	Total  int                  `json:"total" yaml:"total"`
	Page   int                  `json:"page" yaml:"page"`
	Size   int                  `json:"size" yaml:"size"`
	Pages  int                  `json:"pages" yaml:"pages"`
}

func newEventsListCommand() *cobra.Command {
	var (
		form       query.SearchForm
		start, end string
		page, size int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List security events, newest first",
		Long: `Lists one page of security events matching the given filters.
Empty filters are ignored. Page size is clamped to the console maximum.`,
		Example: `  triagectl events list --threat-type sql_injection --start 2024-01-01 --end 2024-01-31
  triagectl events list --status pending --page 2 --size 50`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}

			var reported error
			st := s.newStore(store.ReporterFunc(func(op string, err error) { reported = err }))
			if size > 0 {
				st.SetPageSize(size)
			}
			if start != "" || end != "" {
				form.DateRange = &query.DateRange{Start: start, End: end}
			}
			st.SetCriteria(form)
			st.FetchPage(cmd.Context(), page)
			if reported != nil {
				return reported
			}

			snap := st.Snapshot()
			if s.structured() {
				return s.printer.Print(eventPage{
					Events: snap.Events,
					Total:  snap.Total,
					Page:   snap.CurrentPage,
					Size:   snap.EffectivePageSize(),
					Pages:  snap.PageCount(),
				})
			}
			if !snap.HasEvents() {
				s.printer.Linef("No events found")
				return nil
			}
			if err := printEventTable(s, snap.Events); err != nil {
				return err
			}
			s.printer.Linef("\nPage %d of %d, %d event(s) total, %d pending on this page",
				snap.CurrentPage, snap.PageCount(), snap.Total, snap.PendingCount())
			return nil
		},
	}

	cmd.Flags().StringVar(&form.ThreatType, "threat-type", "", "Filter by threat type")
	cmd.Flags().StringVar(&form.SeverityLevel, "severity", "", "Filter by severity level")
	cmd.Flags().StringVar(&form.Status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&form.SourceIP, "source-ip", "", "Filter by source IP")
	cmd.Flags().StringVar(&form.Keyword, "keyword", "", "Free-text search")
	cmd.Flags().StringVar(&start, "start", "", "Earliest detection time (inclusive)")
	cmd.Flags().StringVar(&end, "end", "", "Latest detection time (inclusive)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&size, "size", 0, "Page size (default from config)")
	return cmd
}

func printEventTable(s *session, events []models.EventRecord) error {
	rows := make([][]string, 0, len(events))
	now := s.now()
	for _, e := range events {
		rows = append(rows, []string{
			e.ID,
			output.FormatTimestamp(e.DetectionTime),
			output.FormatAge(e.DetectionTime.Time, now),
			e.SourceIP,
			dashboard.ThreatLabel(e.ThreatType),
			dashboard.SeverityBadge(e.SeverityLevel).Label,
			dashboard.StatusBadge(e.Status).Label,
			e.HTTPMethod,
			output.Truncate(e.TargetURL, 40),
		})
	}
	return s.printer.Table(
		[]string{"ID", "DETECTED", "AGE", "SOURCE IP", "THREAT", "SEVERITY", "STATUS", "METHOD", "TARGET"},
		rows)
}

func newEventsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one security event in full",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			st := s.newStore(nil)
			e, err := st.FetchDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if s.structured() {
				return s.printer.Print(e)
			}

			next := "-"
			if statuses := e.Status.NextStatuses(); len(statuses) > 0 {
				next = ""
				for i, ns := range statuses {
					if i > 0 {
						next += ", "
					}
					next += string(ns)
				}
			}
			return s.printer.Table([]string{"FIELD", "VALUE"}, [][]string{
				{"ID", e.ID},
				{"Event ID", e.EventID},
				{"Detected", output.FormatTimestamp(e.DetectionTime)},
				{"Source IP", e.SourceIP},
				{"Request", e.HTTPMethod + " " + e.TargetURL},
				{"User agent", e.UserAgent},
				{"Threat", dashboard.ThreatLabel(e.ThreatType)},
				{"Severity", dashboard.SeverityBadge(e.SeverityLevel).Label},
				{"Status", dashboard.StatusBadge(e.Status).Label},
				{"Next statuses", next},
				{"Payload", e.AttackPayload},
				{"Analysis", e.AIAnalysis},
				{"Created", output.FormatTimestamp(e.CreatedAt)},
				{"Updated", output.FormatTimestamp(e.UpdatedAt)},
			})
		},
	}
}

func newEventsStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "status <id> <status>",
		Short:     "Change the triage status of an event",
		Example:   "  triagectl events status 42 confirmed",
		ValidArgs: []string{"pending", "confirmed", "false_positive", "resolved"},
		Args:      usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := models.ParseEventStatus(args[1])
			if err != nil {
				return zerrors.NewValidationError("events.status", zerrors.UserMessage(err), err)
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			st := s.newStore(nil)
			if err := st.RequestStatusChange(cmd.Context(), args[0], status); err != nil {
				return err
			}
			s.printer.Linef("Event %s marked %s", args[0], dashboard.StatusBadge(status).Label)
			return nil
		},
	}
}

func newEventsBatchCommand() *cobra.Command {
	var action string

	cmd := &cobra.Command{
		Use:     "batch <id>...",
		Short:   "Apply one triage action to several events",
		Example: "  triagectl events batch --action false_positive 3 4 5",
		Args:    usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := models.ParseBatchAction(action)
			if err != nil {
				return zerrors.NewValidationError("events.batch", zerrors.UserMessage(err), err)
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			result, err := s.events.Batch(cmd.Context(), args, a)
			if err != nil {
				return err
			}
			return printBatchResult(s, string(a), result)
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "Action: confirm, false_positive, resolve or delete")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}

func newEventsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete one or more events",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			result, err := s.newStore(nil).DeleteEvents(cmd.Context(), args...)
			if err != nil {
				return err
			}
			return printBatchResult(s, "delete", result)
		},
	}
}

func printBatchResult(s *session, action string, result *models.BatchResult) error {
	if s.structured() {
		return s.printer.Print(result)
	}
	s.printer.Linef("%s: %d event(s) processed", action, result.Processed)
	if len(result.Failed) > 0 {
		s.printer.Linef("failed: %v", result.Failed)
	}
	return nil
}

func itoa(n int) string { return strconv.Itoa(n) }

func requirePositive(op, name string, v int) error {
	if v <= 0 {
		return zerrors.NewValidationError(op, fmt.Sprintf("%s must be positive", name), nil)
	}
	return nil
}

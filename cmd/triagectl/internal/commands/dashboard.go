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
	"strings"

	"github.com/spf13/cobra"

	"github.com/kube-zen/zen-triage/cmd/triagectl/internal/output"
	"github.com/kube-zen/zen-triage/pkg/dashboard"
	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/models"
)

func NewDashboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Show server-computed attack statistics",
	}
	cmd.AddCommand(newDashboardSummaryCommand())
	cmd.AddCommand(newDashboardTrendsCommand())
	cmd.AddCommand(newDashboardThreatsCommand())
	cmd.AddCommand(newDashboardTopIPsCommand())
	return cmd
}

func newDashboardSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show today's counters, threat distribution and recent events",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			summary, err := s.newViewModel().LoadSummary(cmd.Context())
			if err != nil {
				return err
			}
			if s.structured() {
				return s.printer.Print(summary)
			}
			return printSummary(s, summary)
		},
	}
}

func printSummary(s *session, summary *models.DashboardSummary) error {
	if err := s.printer.Table([]string{"TODAY ATTACKS", "BLOCKED", "UNIQUE IPS", "SYSTEM"}, [][]string{{
		itoa(summary.TodayAttacks),
		itoa(summary.BlockedThreats),
		itoa(summary.UniqueIPs),
		dashboard.SystemStatusBadge(summary.SystemStatus).Label,
	}}); err != nil {
		return err
	}

	s.printer.Section("Threat distribution")
	if err := printThreatShares(s, summary.ThreatStats); err != nil {
		return err
	}

	s.printer.Section("Recent events")
	if len(summary.RecentEvents) == 0 {
		s.printer.Linef("No recent events")
	} else if err := printEventTable(s, summary.RecentEvents); err != nil {
		return err
	}

	s.printer.Section("Last 7 days")
	return printTrends(s, summary.TrendData)
}

func newDashboardTrendsCommand() *cobra.Command {
	var start, end, granularity string

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show attack counts over time",
		Long: `Shows attack counts per time bucket as reported by the console.
Buckets without attacks are omitted, not shown as zero.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := models.ParseGranularity(granularity)
			if err != nil {
				return zerrors.NewValidationError("dashboard.trends", zerrors.UserMessage(err), err)
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			trends, err := s.newViewModel().LoadTrends(cmd.Context(), start, end, g)
			if err != nil {
				return err
			}
			if s.structured() {
				return s.printer.Print(trends)
			}
			return printTrends(s, trends)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Range start date")
	cmd.Flags().StringVar(&end, "end", "", "Range end date")
	cmd.Flags().StringVar(&granularity, "granularity", string(models.GranularityDay), "Bucket size: hour, day or week")
	return cmd
}

func printTrends(s *session, trends []models.TrendData) error {
	if len(trends) == 0 {
		s.printer.Linef("No attacks in range")
		return nil
	}
	rows := make([][]string, 0, len(trends))
	for _, t := range trends {
		rows = append(rows, []string{t.Date, itoa(t.Count)})
	}
	return s.printer.Table([]string{"DATE", "ATTACKS"}, rows)
}

func newDashboardThreatsCommand() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "threats",
		Short: "Show the distribution of threat types",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			stats, err := s.newViewModel().LoadThreatDistribution(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			if s.structured() {
				return s.printer.Print(stats)
			}
			return printThreatShares(s, stats)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Range start date")
	cmd.Flags().StringVar(&end, "end", "", "Range end date")
	return cmd
}

func printThreatShares(s *session, stats []models.ThreatStatistic) error {
	rows := make([][]string, 0, len(stats))
	for _, share := range dashboard.ThreatShares(stats) {
		rows = append(rows, []string{share.Label, itoa(share.Count), output.FormatPercent(share.Percentage)})
	}
	return s.printer.Table([]string{"THREAT", "COUNT", "SHARE"}, rows)
}

func newDashboardTopIPsCommand() *cobra.Command {
	var (
		start, end string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "top-ips",
		Short: "Rank the most active attacking IPs",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePositive("dashboard.top_ips", "limit", limit); err != nil {
				return err
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			ips, err := s.newViewModel().LoadTopAttackIPs(cmd.Context(), start, end, limit)
			if err != nil {
				return err
			}
			if s.structured() {
				return s.printer.Print(ips)
			}
			if len(ips) == 0 {
				s.printer.Linef("No attacking IPs in range")
				return nil
			}
			rows := make([][]string, 0, len(ips))
			for _, r := range dashboard.IPRows(ips) {
				rows = append(rows, []string{
					itoa(r.Rank),
					r.IP,
					itoa(r.Count),
					output.FormatPercent(r.Share),
					strings.Join(r.ThreatTypes, ","),
					output.FormatTimestamp(r.LastSeen),
				})
			}
			return s.printer.Table([]string{"RANK", "IP", "ATTACKS", "SHARE", "THREATS", "LAST SEEN"}, rows)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Range start date")
	cmd.Flags().StringVar(&end, "end", "", "Range end date")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of IPs to show")
	return cmd
}

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
	"github.com/spf13/cobra"

	"github.com/kube-zen/zen-triage/cmd/triagectl/internal/output"
	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/models"
)

func NewReportCommand() *cobra.Command {
	var reportType, start, end string

	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Generate an analysis report for a date range",
		Example: "  triagectl report --type weekly --start 2024-01-01 --end 2024-01-07",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := models.ParseReportType(reportType)
			if err != nil {
				return zerrors.NewValidationError("report", zerrors.UserMessage(err), err)
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			report, err := s.newViewModel().GenerateReport(cmd.Context(), models.ReportRequest{
				StartDate:  start,
				EndDate:    end,
				ReportType: rt,
			})
			if err != nil {
				return err
			}
			if s.structured() {
				return s.printer.Print(report)
			}
			s.printer.Linef("Report %s generated %s", report.ReportID, output.FormatTimestamp(report.GeneratedAt))
			s.printer.Linef("\n%s", report.Content)
			return nil
		},
	}
	cmd.Flags().StringVar(&reportType, "type", string(models.ReportDaily), "Report type: daily, weekly or monthly")
	cmd.Flags().StringVar(&start, "start", "", "Range start date")
	cmd.Flags().StringVar(&end, "end", "", "Range end date")
	return cmd
}

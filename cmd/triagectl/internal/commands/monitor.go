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
	"github.com/kube-zen/zen-triage/pkg/dashboard"
)

func NewMonitorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Show live monitoring data from the console",
	}
	cmd.AddCommand(newMonitorRealtimeCommand())
	cmd.AddCommand(newMonitorHealthCommand())
	return cmd
}

func newMonitorRealtimeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "realtime",
		Short: "Show current attack and load figures",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			stats, err := s.newViewModel().LoadRealtime(cmd.Context())
			if err != nil {
				return err
			}
			if s.structured() {
				return s.printer.Print(stats)
			}
			return s.printer.Table([]string{"METRIC", "VALUE"}, [][]string{
				{"Current attacks", itoa(stats.CurrentAttacks)},
				{"Active connections", itoa(stats.ActiveConnections)},
				{"System load", output.FormatPercent(stats.SystemLoad)},
				{"Memory usage", output.FormatPercent(stats.MemoryUsage)},
			})
		},
	}
}

func newMonitorHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show the health of console components",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			health, err := s.newViewModel().LoadHealth(cmd.Context())
			if err != nil {
				return err
			}
			if s.structured() {
				return s.printer.Print(health)
			}
			s.printer.Linef("Overall: %s", dashboard.HealthBadge(health.Status))
			rows := make([][]string, 0, len(health.Components))
			for _, c := range health.Components {
				rows = append(rows, []string{c.Name, dashboard.HealthBadge(c.Status).Label, c.Message})
			}
			return s.printer.Table([]string{"COMPONENT", "STATUS", "MESSAGE"}, rows)
		},
	}
}

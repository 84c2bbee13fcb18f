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

	exiterrors "github.com/kube-zen/zen-triage/cmd/triagectl/internal/errors"
)

// NewRootCommand builds the triagectl command tree
func NewRootCommand() *cobra.Command {
	var opts Options

	rootCmd := &cobra.Command{
		Use:   "triagectl",
		Short: "Operator CLI for the security event console",
		Long: `triagectl lists, inspects and triages detected security events, shows
dashboard statistics and follows the console's live event feed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "Console API base URL (default: $TRIAGE_API_URL or http://localhost:8000/api)")
	rootCmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 0, "Request timeout (default: $TRIAGE_TIMEOUT or 30s)")
	rootCmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "table", "Output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level (default: $LOG_LEVEL or INFO)")

	// Store global options in command context
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cmd.SetContext(WithOptions(cmd.Context(), opts))
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return exiterrors.NewUsageError(err)
	})

	rootCmd.AddCommand(NewEventsCommand())
	rootCmd.AddCommand(NewDashboardCommand())
	rootCmd.AddCommand(NewMonitorCommand())
	rootCmd.AddCommand(NewReportCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewCompletionCommand(rootCmd))

	return rootCmd
}

// usageArgs turns positional argument errors into usage exit codes
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return exiterrors.NewUsageError(err)
		}
		return nil
	}
}

var noArgs = usageArgs(cobra.NoArgs)

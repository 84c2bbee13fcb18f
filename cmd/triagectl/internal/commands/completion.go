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
)

func NewCompletionCommand(rootCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for triagectl.

To load completions:

Bash:
  $ source <(triagectl completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ triagectl completion bash > /etc/bash_completion.d/triagectl
  # macOS:
  $ triagectl completion bash > $(brew --prefix)/etc/bash_completion.d/triagectl

Zsh:
  $ source <(triagectl completion zsh)
  # To load completions for each session, execute once:
  $ triagectl completion zsh > "${fpath[1]}/_triagectl"

Fish:
  $ triagectl completion fish | source
  # To load completions for each session, execute once:
  $ triagectl completion fish > ~/.config/fish/completions/triagectl.fish
`,
		ValidArgs: []string{"bash", "zsh", "fish"},
		Args:      cobra.MatchAll(usageArgs(cobra.ExactArgs(1)), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := args[0]
			switch shell {
			case "bash":
				return rootCmd.GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return rootCmd.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
			default:
				return cmd.Help()
			}
		},
	}
	return cmd
}

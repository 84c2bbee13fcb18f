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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kube-zen/zen-triage/cmd/triagectl/internal/commands"
	exiterrors "github.com/kube-zen/zen-triage/cmd/triagectl/internal/errors"
	"github.com/kube-zen/zen-triage/pkg/logger"
)

func main() {
	err := commands.NewRootCommand().ExecuteContext(context.Background())
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", exiterrors.Message(err))
		os.Exit(exiterrors.FromError(err).Code)
	}
}

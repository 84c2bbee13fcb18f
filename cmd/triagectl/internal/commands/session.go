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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kube-zen/zen-triage/cmd/triagectl/internal/output"
	"github.com/kube-zen/zen-triage/pkg/api"
	"github.com/kube-zen/zen-triage/pkg/config"
	"github.com/kube-zen/zen-triage/pkg/dashboard"
	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	zhttp "github.com/kube-zen/zen-triage/pkg/http"
	"github.com/kube-zen/zen-triage/pkg/logger"
	"github.com/kube-zen/zen-triage/pkg/metrics"
	"github.com/kube-zen/zen-triage/pkg/query"
	"github.com/kube-zen/zen-triage/pkg/store"
)

// session wires configuration, transport and clients for one command run
type session struct {
	cfg      *config.Config
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	events   *api.EventsClient
	stats    *api.StatisticsClient
	printer  *output.Printer
	now      func() time.Time
}

func newSession(cmd *cobra.Command) (*session, error) {
	opts := OptionsFromContext(cmd.Context())

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.APIURL != "" {
		cfg.API.BaseURL = opts.APIURL
	}
	if opts.Timeout > 0 {
		cfg.API.Timeout = opts.Timeout
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.LogLevel, false); err != nil {
		return nil, zerrors.NewConfigError("session.logger", "cannot initialize logger", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)
	httpClient := zhttp.NewHardenedHTTPClient(cfg.HTTPClientConfig())
	client, err := api.NewClient(cfg.API.BaseURL, httpClient, m)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:      cfg,
		registry: registry,
		metrics:  m,
		events:   api.NewEventsClient(client),
		stats:    api.NewStatisticsClient(client),
		printer:  output.NewPrinter(output.ParseFormat(opts.Output), cmd.OutOrStdout()),
		now:      time.Now,
	}, nil
}

func (s *session) newStore(reporter store.ErrorReporter) *store.EventStore {
	return store.New(s.events,
		store.WithNormalizer(query.NewNormalizer(s.cfg.Paging.PageSize, s.cfg.Paging.MaxPageSize)),
		store.WithPageSize(s.cfg.Paging.PageSize),
		store.WithMetrics(s.metrics),
		store.WithReporter(reporter),
	)
}

func (s *session) newViewModel() *dashboard.ViewModel {
	return dashboard.NewViewModel(s.stats,
		dashboard.WithRecentLimit(s.cfg.Dashboard.RecentEvents),
		dashboard.WithMetrics(s.metrics),
	)
}

// structured reports whether output goes through Print rather than tables
func (s *session) structured() bool {
	return s.printer.Format() != output.FormatTable
}

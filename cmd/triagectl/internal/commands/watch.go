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
	"context"
	"encoding/json"
	"sync"

	"github.com/spf13/cobra"

	"github.com/kube-zen/zen-triage/cmd/triagectl/internal/output"
	"github.com/kube-zen/zen-triage/internal/lifecycle"
	"github.com/kube-zen/zen-triage/pkg/dashboard"
	"github.com/kube-zen/zen-triage/pkg/dedup"
	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/feed"
	"github.com/kube-zen/zen-triage/pkg/filter"
	"github.com/kube-zen/zen-triage/pkg/logger"
	"github.com/kube-zen/zen-triage/pkg/models"
	"github.com/kube-zen/zen-triage/pkg/server"
)

func NewWatchCommand() *cobra.Command {
	var natsURL, subject, metricsAddr, filterExpr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the console's live event feed",
		Long: `Subscribes to the console's live feed on NATS and prints new events,
statistics refreshes and system alerts until interrupted. With --metrics-addr
the command also serves /health, /ready and Prometheus /metrics.

--filter limits printed events to those matching an expression over the
event's fields, for example:

  severity >= high AND threatType IN [sql_injection, xss]
  is_open AND sourceIp STARTS_WITH "10."

Macros: is_critical, is_high, is_pending, is_open.`,
		Example: `  triagectl watch --nats-url nats://localhost:4222 --metrics-addr :9090
  triagectl watch --filter 'is_high AND status = pending'`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			match, err := filter.Compile(filterExpr)
			if err != nil {
				return err
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			if natsURL == "" {
				natsURL = s.cfg.Feed.NATSURL
			}
			if subject == "" {
				subject = s.cfg.Feed.Subject
			}
			if natsURL == "" {
				return zerrors.NewConfigError("watch", "a NATS URL is required (--nats-url or $TRIAGE_NATS_URL)", nil)
			}

			ctx, cancel := lifecycle.SetupSignalHandler(cmd.Context())
			defer cancel()
			var wg sync.WaitGroup

			var srv *server.Server
			if metricsAddr != "" {
				srv = server.NewServer(metricsAddr, s.registry)
				if err := srv.Start(ctx, &wg); err != nil {
					return zerrors.NewConfigError("watch", "cannot serve metrics", err)
				}
			}

			vm := s.newViewModel()
			if _, err := vm.LoadSummary(ctx); err != nil {
				logger.Warn("Initial dashboard load failed, continuing with the feed only",
					logger.Fields{Component: "watch", Operation: "load_summary", Error: err})
			}

			processor, err := feed.NewProcessor(watchHandlers(ctx, s, vm, match),
				feed.WithDeduper(dedup.NewDeduper(dedup.DefaultWindow, s.cfg.Feed.DedupSize)),
				feed.WithMetrics(s.metrics))
			if err != nil {
				cancel()
				wg.Wait()
				return err
			}

			nc, err := feed.Connect(natsURL)
			if err != nil {
				cancel()
				wg.Wait()
				return err
			}
			if srv != nil {
				srv.SetReady(true)
			}

			runErr := feed.NewSubscriber(nc, subject, processor).Run(ctx)
			lifecycle.WaitForShutdown(ctx, &wg, nc.Close)
			return runErr
		},
	}
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS server URL (default: $TRIAGE_NATS_URL)")
	cmd.Flags().StringVar(&subject, "subject", "", "Feed subject (default: $TRIAGE_FEED_SUBJECT or console.events)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve health and metrics on this address")
	cmd.Flags().StringVar(&filterExpr, "filter", "", "Only print events matching this expression")
	return cmd
}

// watchHandlers prints feed deliveries and keeps the dashboard view model current.
// Events not matching match still reach the view model.
func watchHandlers(ctx context.Context, s *session, vm *dashboard.ViewModel, match *filter.Expression) feed.Handlers {
	var mu sync.Mutex
	emit := func(structured interface{}, format string, args ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		if s.structured() {
			if err := s.printer.Print(structured); err != nil {
				logger.Warn("Cannot print feed message",
					logger.Fields{Component: "watch", Operation: "print", Error: err})
			}
			return
		}
		s.printer.Linef(format, args...)
	}

	return feed.Handlers{
		NewEvent: func(e models.EventRecord) {
			if !vm.PushEvent(e) || !match.Match(e) {
				return
			}
			emit(e, "%s  NEW    %-8s  %-17s  %-15s  %s %s",
				output.FormatTimestamp(e.DetectionTime),
				dashboard.SeverityBadge(e.SeverityLevel).Label,
				dashboard.ThreatLabel(e.ThreatType),
				e.SourceIP,
				e.HTTPMethod,
				output.Truncate(e.TargetURL, 60))
		},
		StatsUpdate: func(json.RawMessage) {
			summary, err := vm.LoadSummary(ctx)
			if err != nil {
				return
			}
			emit(summary, "%s  STATS  today=%d blocked=%d unique_ips=%d system=%s",
				output.FormatTimestamp(models.NewTimestamp(s.now())),
				summary.TodayAttacks,
				summary.BlockedThreats,
				summary.UniqueIPs,
				dashboard.SystemStatusBadge(summary.SystemStatus))
		},
		SystemAlert: func(a feed.Alert) {
			logger.Warn("System alert received",
				logger.Fields{
					Component: "watch",
					Operation: "system_alert",
					Status:    string(a.Level),
					Reason:    a.Message,
					Additional: map[string]interface{}{
						"alert_component": a.Component,
					},
				})
			component := a.Component
			if component == "" {
				component = "console"
			}
			emit(a, "%s  ALERT  [%s] %s: %s",
				output.FormatTimestamp(models.NewTimestamp(s.now())),
				a.Level, component, a.Message)
		},
	}
}

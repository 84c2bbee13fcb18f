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

package feed

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/logger"
)

// Connect dials the NATS server at url
func Connect(url string, opts ...nats.Option) (*nats.Conn, error) {
	opts = append([]nats.Option{
		nats.Name("zen-triage"),
		nats.Timeout(5 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("Feed disconnected",
					logger.Fields{Component: "feed", Operation: "disconnect", Error: err})
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Feed reconnected",
				logger.Fields{Component: "feed", Operation: "reconnect", Endpoint: nc.ConnectedUrl()})
		}),
	}, opts...)

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, zerrors.NewTransportError("feed.connect", 0, err)
	}
	return nc, nil
}

// Subscriber feeds messages from one subject into a Processor
type Subscriber struct {
	nc        *nats.Conn
	subject   string
	processor *Processor
}

// NewSubscriber creates a subscriber on subject
func NewSubscriber(nc *nats.Conn, subject string, p *Processor) *Subscriber {
	return &Subscriber{nc: nc, subject: subject, processor: p}
}

// Run subscribes and blocks until ctx is cancelled, then drains the subscription
func (s *Subscriber) Run(ctx context.Context) error {
	sub, err := s.nc.Subscribe(s.subject, s.handle)
	if err != nil {
		return zerrors.NewTransportError("feed.subscribe", 0, err)
	}
	logger.Info("Subscribed to live feed",
		logger.Fields{Component: "feed", Operation: "subscribe", Subject: s.subject})

	<-ctx.Done()

	if err := sub.Drain(); err != nil {
		logger.Warn("Feed drain failed",
			logger.Fields{Component: "feed", Operation: "drain", Subject: s.subject, Error: err})
		return err
	}
	logger.Info("Live feed subscription drained",
		logger.Fields{Component: "feed", Operation: "drain", Subject: s.subject})
	return nil
}

func (s *Subscriber) handle(msg *nats.Msg) {
	// errors are logged and counted by the processor
	_, _ = s.processor.Process(msg.Data)
}

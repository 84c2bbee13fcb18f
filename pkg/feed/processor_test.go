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
	"encoding/json"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/metrics"
	"github.com/kube-zen/zen-triage/pkg/models"
)

type recorder struct {
	events []models.EventRecord
	stats  []json.RawMessage
	alerts []Alert
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		NewEvent:    func(e models.EventRecord) { r.events = append(r.events, e) },
		StatsUpdate: func(d json.RawMessage) { r.stats = append(r.stats, d) },
		SystemAlert: func(a Alert) { r.alerts = append(r.alerts, a) },
	}
}

const newEvent = `{"type":"new_event","timestamp":"2024-01-01T00:00:00Z","data":{"id":"7","sourceIp":"10.0.0.1","threatType":"xss","severityLevel":"high","status":"pending"}}`

func TestProcessNewEvent(t *testing.T) {
	rec := &recorder{}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	p, err := NewProcessor(rec.handlers(), WithMetrics(m))
	require.NoError(t, err)

	result, err := p.Process([]byte(newEvent))
	require.NoError(t, err)
	assert.Equal(t, ResultDelivered, result)
	require.Len(t, rec.events, 1)
	assert.Equal(t, "7", rec.events[0].ID)
	assert.Equal(t, models.ThreatXSS, rec.events[0].ThreatType)

	result, err = p.Process([]byte(newEvent))
	require.NoError(t, err)
	assert.Equal(t, ResultDuplicate, result)
	assert.Len(t, rec.events, 1, "redelivered events are dropped")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedMessages.WithLabelValues("new_event", ResultDelivered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedMessages.WithLabelValues("new_event", ResultDuplicate)))
}

func TestProcessStatsAndAlerts(t *testing.T) {
	rec := &recorder{}
	p, err := NewProcessor(rec.handlers())
	require.NoError(t, err)

	stats := `{"type":"stats_update","timestamp":"2024-01-01T00:00:00Z","data":{"todayAttacks":3}}`
	for i := 0; i < 2; i++ {
		result, err := p.Process([]byte(stats))
		require.NoError(t, err)
		assert.Equal(t, ResultDelivered, result)
	}
	assert.Len(t, rec.stats, 2, "stats updates are never deduplicated")
	assert.JSONEq(t, `{"todayAttacks":3}`, string(rec.stats[0]))

	alert := `{"type":"system_alert","timestamp":"2024-01-01T00:00:00Z","data":{"level":"error","message":"detector down","component":"detector"}}`
	result, err := p.Process([]byte(alert))
	require.NoError(t, err)
	assert.Equal(t, ResultDelivered, result)
	result, _ = p.Process([]byte(alert))
	assert.Equal(t, ResultDuplicate, result)
	require.Len(t, rec.alerts, 1)
	assert.Equal(t, Alert{Level: AlertError, Message: "detector down", Component: "detector"}, rec.alerts[0])
}

func TestProcessRejectsInvalidMessages(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{`},
		{"unknown type", `{"type":"ping","timestamp":"t","data":{}}`},
		{"missing timestamp", `{"type":"stats_update","data":{}}`},
		{"event without id", `{"type":"new_event","timestamp":"t","data":{"threatType":"xss","severityLevel":"low","status":"pending"}}`},
		{"alert with bad level", `{"type":"system_alert","timestamp":"t","data":{"level":"fatal","message":"x"}}`},
		{"data not an object", `{"type":"stats_update","timestamp":"t","data":[1]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			p, err := NewProcessor(rec.handlers())
			require.NoError(t, err)

			result, err := p.Process([]byte(tt.payload))
			assert.Equal(t, ResultInvalid, result)
			assert.True(t, zerrors.IsValidation(err))
			assert.Empty(t, rec.events)
			assert.Empty(t, rec.stats)
			assert.Empty(t, rec.alerts)
		})
	}
}

func TestProcessWithoutHandler(t *testing.T) {
	p, err := NewProcessor(Handlers{})
	require.NoError(t, err)
	result, err := p.Process([]byte(newEvent))
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, result)
}

func TestSubscriberHandle(t *testing.T) {
	rec := &recorder{}
	p, err := NewProcessor(rec.handlers())
	require.NoError(t, err)
	s := NewSubscriber(nil, "console.events", p)

	s.handle(&nats.Msg{Subject: "console.events", Data: []byte(newEvent)})
	s.handle(&nats.Msg{Subject: "console.events", Data: []byte(`garbage`)})
	assert.Len(t, rec.events, 1)
}

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

package metrics

import (
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// SystemMetrics samples host resource usage for realtime monitoring snapshots
type SystemMetrics struct {
	mu            sync.Mutex
	lastCPUStats  *cpu.TimesStat
	lastCheckTime time.Time
	attacks       []time.Time
	window        time.Duration
	now           func() time.Time
}

// NewSystemMetrics creates a sampler that counts attacks over window
func NewSystemMetrics(window time.Duration) *SystemMetrics {
	if window <= 0 {
		window = time.Minute
	}
	return &SystemMetrics{
		lastCheckTime: time.Now(),
		window:        window,
		now:           time.Now,
	}
}

// GetCPUUsagePercent returns CPU usage since the previous call, 0 on the first
func (sm *SystemMetrics) GetCPUUsagePercent() float64 {
	current, err := cpu.Times(false)
	if err != nil || len(current) == 0 {
		return 0.0
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	usage := 0.0
	if sm.lastCPUStats != nil {
		totalBefore := sm.lastCPUStats.Total()
		totalCurrent := current[0].Total()
		totalDiff := totalCurrent - totalBefore
		idleDiff := current[0].Idle - sm.lastCPUStats.Idle
		if totalDiff > 0 {
			usage = clampPercent((1 - idleDiff/totalDiff) * 100)
		}
	}

	sm.lastCPUStats = &current[0]
	sm.lastCheckTime = sm.now()
	return usage
}

// GetMemoryUsagePercent returns host memory usage as a percentage
func (sm *SystemMetrics) GetMemoryUsagePercent() float64 {
	vmStat, err := mem.VirtualMemory()
	if err != nil || vmStat.Total == 0 {
		return 0.0
	}
	return clampPercent(vmStat.UsedPercent)
}

// GetActiveConnections returns the number of established TCP connections
func (sm *SystemMetrics) GetActiveConnections() int {
	conns, err := net.Connections("tcp")
	if err != nil {
		return 0
	}
	n := 0
	for _, c := range conns {
		if c.Status == "ESTABLISHED" {
			n++
		}
	}
	return n
}

// RecordAttack notes one detected attack
func (sm *SystemMetrics) RecordAttack() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.attacks = append(sm.attacks, sm.now())
}

// CurrentAttacks returns attacks recorded within the window
func (sm *SystemMetrics) CurrentAttacks() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cutoff := sm.now().Add(-sm.window)
	kept := sm.attacks[:0]
	for _, at := range sm.attacks {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	sm.attacks = kept
	return len(kept)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

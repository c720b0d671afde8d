/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package eventloop

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics carries the per-loop Prometheus instrumentation named in
// SPEC_FULL.md's DOMAIN STACK: registration churn, dispatch volume, and
// timeout rate, labeled by loop name so a process running several loops
// (one per I/O thread) reports them separately.
type Metrics struct {
	eventsRegistered   prometheus.Counter
	eventsUnregistered prometheus.Counter
	dispatched         prometheus.Counter
	timeouts           prometheus.Counter
}

func newMetrics(loopName string) *Metrics {
	labels := prometheus.Labels{"loop": loopName}
	return &Metrics{
		eventsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "reactor",
			Subsystem:   "eventloop",
			Name:        "events_registered_total",
			Help:        "Events inserted into this loop's arena.",
			ConstLabels: labels,
		}),
		eventsUnregistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "reactor",
			Subsystem:   "eventloop",
			Name:        "events_unregistered_total",
			Help:        "Events removed from this loop's arena.",
			ConstLabels: labels,
		}),
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "reactor",
			Subsystem:   "eventloop",
			Name:        "dispatched_total",
			Help:        "Readiness and timeout callbacks dispatched to the EventHandler.",
			ConstLabels: labels,
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "reactor",
			Subsystem:   "eventloop",
			Name:        "timeouts_total",
			Help:        "Deadlines that fired before their I/O completed.",
			ConstLabels: labels,
		}),
	}
}

// Register adds this loop's metrics to reg, so they're exposed on the
// process's /metrics endpoint alongside cpupool and dispatch metrics.
func (m *Metrics) Register(reg *prometheus.Registry) error {
	for _, c := range []prometheus.Collector{m.eventsRegistered, m.eventsUnregistered, m.dispatched, m.timeouts} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

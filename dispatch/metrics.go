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

package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the dispatch-level Prometheus instrumentation named in
// SPEC_FULL.md's DOMAIN STACK: per-protocol request counts split by
// inbound frames, outbound frames, 404-equivalents, and handler errors.
type Metrics struct {
	framesIn      prometheus.Counter
	framesOut     prometheus.Counter
	notFound      prometheus.Counter
	handlerErrors prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		framesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reactor",
			Subsystem: "dispatch",
			Name:      "frames_in_total",
			Help:      "Complete inbound frames handed to the dispatcher.",
		}),
		framesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reactor",
			Subsystem: "dispatch",
			Name:      "frames_out_total",
			Help:      "Response frames written back to a connection.",
		}),
		notFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reactor",
			Subsystem: "dispatch",
			Name:      "not_found_total",
			Help:      "Frames with no registered handler for their key.",
		}),
		handlerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reactor",
			Subsystem: "dispatch",
			Name:      "handler_errors_total",
			Help:      "Handler invocations that returned an error or panicked.",
		}),
	}
}

// Register adds this Dispatcher's metrics to reg.
func (m *Metrics) Register(reg *prometheus.Registry) error {
	for _, c := range []prometheus.Collector{m.framesIn, m.framesOut, m.notFound, m.handlerErrors} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

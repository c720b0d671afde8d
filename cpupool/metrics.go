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

package cpupool

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector exposes p's Stats and worker capacity as a
// Prometheus GaugeFunc set named "reactor_cpupool_*", alongside the
// eventloop and dispatch metrics.
func (p *Pool) PrometheusCollector() []prometheus.Collector {
	gauge := func(name, help string, val func() float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "reactor",
			Subsystem: "cpupool",
			Name:      name,
			Help:      help,
		}, val)
	}
	return []prometheus.Collector{
		gauge("submitted_total", "Tasks submitted to the CPU pool.", func() float64 {
			return float64(p.Stats().Submitted)
		}),
		gauge("succeeded_total", "Tasks that completed without ants rejecting them.", func() float64 {
			return float64(p.Stats().Succeeded)
		}),
		gauge("failed_total", "Tasks ants rejected (pool at capacity, nonblocking).", func() float64 {
			return float64(p.Stats().Failed)
		}),
		gauge("running", "Tasks currently executing on a pool worker.", func() float64 {
			return float64(p.Stats().Running)
		}),
		gauge("workers", "Configured worker capacity.", func() float64 {
			return float64(p.Cap())
		}),
	}
}

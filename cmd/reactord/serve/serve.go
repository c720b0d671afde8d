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

// Package serve wires the reactor's core packages (event, eventloop,
// transport, fiber, dispatch, client) into the representative server
// binary spec.md §6 describes, fronted by a cobra command so the CLI
// surface matches the teacher's own cobra-wrapped binaries.
package serve

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nabbar/reactor/client"
	"github.com/nabbar/reactor/dispatch"
	"github.com/nabbar/reactor/eventloop"
	"github.com/nabbar/reactor/logger"
	loglvl "github.com/nabbar/reactor/logger/level"
	"github.com/nabbar/reactor/runner"
	"github.com/nabbar/reactor/transport"
	"github.com/nabbar/reactor/transport/httpframe"
	"github.com/nabbar/reactor/transport/lenprefix"
)

// Config binds the CLI surface spec.md §6 names: --addr, --threads and
// --forward, plus --binary-addr, the optional second protocol server
// (length-prefixed) spec.md §1's "hosts one or more protocol servers ...
// on the same process" calls for.
type Config struct {
	Addr       string
	BinaryAddr string
	Threads    int
	Forward    string
}

// Command returns the root cobra.Command for reactord, matching the
// teacher's cobra-wraps-pflag convention (cobra/model.go's StringVarP /
// IntVarP idiom) rather than hand-rolled flag parsing.
func Command() *cobra.Command {
	cfg := &Config{}

	cmd := &cobra.Command{
		Use:   "reactord",
		Short: "reactord hosts HTTP and length-prefixed protocol servers on a shared reactor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Addr, "addr", "127.0.0.1:8000", "HTTP listen address (HOST:PORT)")
	flags.StringVar(&cfg.BinaryAddr, "binary-addr", "", "length-prefixed protocol listen address (HOST:PORT); empty disables it")
	flags.IntVar(&cfg.Threads, "threads", runtime.NumCPU(), "number of I/O threads (EventLoops)")
	flags.StringVar(&cfg.Forward, "forward", "", "optional upstream HOST:PORT; when set, GET /proxy requests are relayed there")

	return cmd
}

// Run starts every configured protocol server, blocks until ctx is
// cancelled (SIGINT/SIGTERM via signal.NotifyContext, or a caller-supplied
// ctx in tests), then stops every listener and afterwards every pool, in
// the order they were started. Exit code handling is
// the caller's responsibility (spec.md §6: "Exit code 0 on clean
// shutdown, non-zero on fatal loop failure").
func Run(ctx context.Context, cfg *Config) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}

	log := logger.New(ctx)
	log.SetLevel(loglvl.InfoLevel)
	funcLog := func() logger.Logger { return log }

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var forwardClient *client.Client
	if cfg.Forward != "" {
		forwardClient = client.New(ctx, func() transport.Transport {
			return httpframe.New(httpframe.Client, true)
		}, client.WithDialTimeout(5*time.Second), client.WithCallTimeout(10*time.Second), client.WithLogger(funcLog))
	}

	httpRegistry := dispatch.NewRegistry()
	registerHTTPHandlers(httpRegistry, cfg.Forward, forwardClient)

	httpOpts := []dispatch.Option{
		dispatch.WithLogger(funcLog),
		dispatch.WithNotFound(httpNotFound),
		dispatch.WithErrorFunc(httpOnError),
	}
	if forwardClient != nil {
		httpOpts = append(httpOpts, dispatch.WithReplySink(forwardClient.ReplySink()))
	}

	httpDispatcher := dispatch.New(httpRegistry, func() transport.Transport {
		return httpframe.New(httpframe.Server, true)
	}, httpOpts...)

	httpPool := eventloop.NewPool(cfg.Threads, func(i int) *eventloop.EventLoop {
		return eventloop.New(fmt.Sprintf("http-%d", i), httpDispatcher.Handle, eventloop.WithLogger(funcLog))
	})

	servers := []runnerPair{{name: "http", pool: httpPool}}

	var binaryPool *eventloop.Pool
	var binaryDispatcher *dispatch.Dispatcher
	if cfg.BinaryAddr != "" {
		binaryRegistry := dispatch.NewRegistry()
		binaryRegistry.Register("", echoHandler)

		binaryDispatcher = dispatch.New(binaryRegistry, func() transport.Transport {
			return lenprefix.New(true)
		}, dispatch.WithLogger(funcLog))

		binaryPool = eventloop.NewPool(cfg.Threads, func(i int) *eventloop.EventLoop {
			return eventloop.New(fmt.Sprintf("binary-%d", i), binaryDispatcher.Handle, eventloop.WithLogger(funcLog))
		})
		servers = append(servers, runnerPair{name: "binary", pool: binaryPool})
	}

	for _, s := range servers {
		if err := s.pool.Start(ctx); err != nil {
			log.Error("starting "+s.name+" pool", err)
			return err
		}
	}

	var listeners []*eventloop.Listener
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, l := range listeners {
			_ = l.Stop(stopCtx)
		}
		for _, s := range servers {
			_ = s.pool.Stop(stopCtx)
		}
	}()

	httpListeners, err := listenOnEachLoop(ctx, cfg.Addr, httpPool, httpDispatcher.OnAccept)
	if err != nil {
		log.Error("listening on "+cfg.Addr, err)
		return err
	}
	listeners = append(listeners, httpListeners...)
	log.Info("http server listening", nil, cfg.Addr)

	if binaryPool != nil {
		binListeners, err := listenOnEachLoop(ctx, cfg.BinaryAddr, binaryPool, binaryDispatcher.OnAccept)
		if err != nil {
			log.Error("listening on "+cfg.BinaryAddr, err)
			return err
		}
		listeners = append(listeners, binListeners...)
		log.Info("length-prefixed server listening", nil, cfg.BinaryAddr)
	}

	<-ctx.Done()
	log.Info("shutting down", nil)
	return nil
}

// runnerPair names one supervised runner.Runner (an EventLoop pool here) so
// Run can Start/Stop every protocol server's loops uniformly through the
// runner.Runner lifecycle contract that eventloop.Pool implements.
type runnerPair struct {
	name string
	pool runner.Runner
}

// listenOnEachLoop binds a single net.Listener to addr and starts one
// eventloop.Listener per loop in pool on it, all Accept-ing concurrently
// on that same net.Listener (safe: the
// Go runtime hands each accepted connection to exactly one caller),
// approximating spec.md C8's "round-robin placement of new work" without
// a single accept thread being the bottleneck.
func listenOnEachLoop(ctx context.Context, addr string, pool *eventloop.Pool, onAccept eventloop.AcceptFunc) ([]*eventloop.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	var listeners []*eventloop.Listener
	pool.Each(func(l *eventloop.EventLoop) {
		lst := eventloop.Listen(l, ln, onAccept)
		_ = lst.Start(ctx)
		listeners = append(listeners, lst)
	})
	return listeners, nil
}

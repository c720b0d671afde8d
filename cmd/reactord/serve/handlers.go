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

package serve

import (
	"context"

	"github.com/nabbar/reactor/client"
	"github.com/nabbar/reactor/dispatch"
	"github.com/nabbar/reactor/transport"
	"github.com/nabbar/reactor/transport/httpframe"
)

// registerHTTPHandlers binds reactord's demonstration routes: a plain
// hello response carrying a computed ETag, a health check, and, when
// forward is configured, a proxy route exercising the outbound client
// (C12) with hop-by-hop header stripping (spec.md §4.2, §8 scenario 3).
func registerHTTPHandlers(reg *dispatch.Registry, forward string, forwardClient *client.Client) {
	reg.Register("GET /", helloHandler)
	reg.Register("GET /healthz", healthHandler)

	if forward != "" && forwardClient != nil {
		reg.Register("GET /proxy", forwardHandler(forward, forwardClient))
	}
}

func helloHandler(_ context.Context, req transport.Frame) (transport.Frame, error) {
	body := []byte("hello from reactord\n")

	resp := httpframe.NewResponse(200, "OK")
	resp.Headers.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Headers.Set("ETag", httpframe.ComputeETag(body))

	return transport.Frame{
		Key:       req.Key,
		Payload:   body,
		Keepalive: req.Keepalive,
		Meta:      resp,
	}, nil
}

func healthHandler(_ context.Context, req transport.Frame) (transport.Frame, error) {
	body := []byte("ok")
	resp := httpframe.NewResponse(200, "OK")
	resp.Headers.Set("Content-Type", "text/plain; charset=utf-8")

	return transport.Frame{
		Key:       req.Key,
		Payload:   body,
		Keepalive: req.Keepalive,
		Meta:      resp,
	}, nil
}

// forwardHandler returns a HandlerFunc that relays the inbound request to
// upstream through fc.Call, stripping hop-by-hop headers from the
// forwarded copy (spec.md §4.2's per-hop set, §8 scenario 3) before
// sending it, and forwards upstream's reply back to the original caller
// unmodified.
func forwardHandler(upstream string, fc *client.Client) dispatch.HandlerFunc {
	return func(ctx context.Context, req transport.Frame) (transport.Frame, error) {
		reqMsg, _ := req.Meta.(*httpframe.Message)

		method, url := "GET", "/"
		if reqMsg != nil {
			method, url = reqMsg.Method, reqMsg.URL
		}
		fwd := httpframe.NewRequest(method, url)
		if reqMsg != nil && reqMsg.Headers != nil {
			fwd.Headers = reqMsg.Headers.Clone()
			fwd.Headers.StripHopByHop()
		}

		reply, err := fc.Call(ctx, client.Peer{Addr: upstream}, transport.Frame{
			Key:       fwd.Key(),
			Payload:   req.Payload,
			Keepalive: true,
			Meta:      fwd,
		})
		if err != nil {
			return transport.Frame{}, err
		}

		reply.Key = req.Key
		reply.Keepalive = req.Keepalive
		return reply, nil
	}
}

func httpNotFound(req transport.Frame) transport.Frame {
	body := []byte("not found")
	resp := httpframe.NewResponse(404, "Not Found")
	resp.Headers.Set("Content-Type", "text/plain; charset=utf-8")

	return transport.Frame{Key: req.Key, Payload: body, Keepalive: req.Keepalive, Meta: resp}
}

func httpOnError(req transport.Frame, err error) transport.Frame {
	body := []byte(err.Error())
	resp := httpframe.NewResponse(500, "Internal Server Error")
	resp.Headers.Set("Content-Type", "text/plain; charset=utf-8")

	return transport.Frame{Key: req.Key, Payload: body, Keepalive: req.Keepalive, Meta: resp}
}

// echoHandler is the length-prefixed protocol server's sole handler
// (keyed at "", since lenprefix.Codec.ProcessReadData never sets Key):
// it echoes the request payload back unchanged.
func echoHandler(_ context.Context, req transport.Frame) (transport.Frame, error) {
	return transport.Frame{Payload: req.Payload, Keepalive: req.Keepalive}, nil
}

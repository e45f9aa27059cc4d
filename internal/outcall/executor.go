package outcall

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/thep2p/go-eth-outcall/internal/model"
	"github.com/thep2p/go-eth-outcall/internal/network"
)

// Executor posts JSON-RPC payloads to network endpoints through a Host.
//
// Each Post issues exactly one request; failed requests are not retried.
type Executor struct {
	logger           zerolog.Logger
	host             Host
	maxResponseBytes uint64
	cycles           uint64
}

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithMaxResponseBytes bounds the size of the response body the host accepts.
func WithMaxResponseBytes(n uint64) ExecutorOption {
	return func(e *Executor) {
		e.maxResponseBytes = n
	}
}

// WithCycles sets the cycles attached to every request.
func WithCycles(n uint64) ExecutorOption {
	return func(e *Executor) {
		e.cycles = n
	}
}

// NewExecutor creates an Executor issuing requests through host.
func NewExecutor(logger zerolog.Logger, host Host, opts ...ExecutorOption) *Executor {
	e := &Executor{
		logger:           logger.With().Str("component", "outcall-executor").Logger(),
		host:             host,
		maxResponseBytes: model.DefaultMaxResponseBytes,
		cycles:           model.DefaultCycles,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Post sends payload to the network endpoint and returns the agreed response.
//
// The request carries Content-Type and Host headers and registers StripHeaders
// as its transform. The attached cycles are consumed even when the host
// rejects the request. A host rejection is returned as a *RejectError.
func (e *Executor) Post(ctx context.Context, n network.Network, payload []byte) (Response, error) {
	host, err := n.HostHeader()
	if err != nil {
		return Response{}, err
	}

	req := Request{
		URL:    n.URL,
		Method: MethodPost,
		Headers: []Header{
			{Name: model.HeaderContentType, Value: model.ContentTypeJSON},
			{Name: model.HeaderHost, Value: host},
		},
		Body:             payload,
		MaxResponseBytes: e.maxResponseBytes,
		Transform:        StripHeaders,
	}

	e.logger.Debug().
		Str("network", n.Name).
		Str("url", n.URL).
		Int("payload_bytes", len(payload)).
		Uint64("max_response_bytes", e.maxResponseBytes).
		Uint64("cycles", e.cycles).
		Msg("issuing outbound request")

	resp, err := e.host.HTTPRequest(ctx, req, e.cycles)
	if err != nil {
		var rejected *RejectError
		if !errors.As(err, &rejected) {
			rejected = Reject(SysTransient, "%v", err)
		}
		e.logger.Error().
			Str("network", n.Name).
			Str("code", rejected.Code.String()).
			Str("reason", rejected.Message).
			Msg("outbound request rejected")
		return Response{}, fmt.Errorf("post to %s: %w", n.Name, rejected)
	}

	event := e.logger.Debug()
	if resp.Status < 200 || resp.Status > 299 {
		event = e.logger.Warn()
	}
	event.Str("network", n.Name).
		Int("status", resp.Status).
		Int("body_bytes", len(resp.Body)).
		Msg("outbound request completed")

	return resp, nil
}

package outcall

import (
	"context"
	"encoding/binary"
	"errors"
	"net/url"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/thep2p/go-eth-outcall/internal/metrics"
	"github.com/thep2p/go-eth-outcall/internal/model"
	"golang.org/x/sync/errgroup"
)

// ReplicatedHost executes every request on several replicas and returns the
// transformed response a quorum of them agrees on.
//
// Cycles are debited from the ledger before any replica runs and are never refunded.
type ReplicatedHost struct {
	logger   zerolog.Logger
	fetcher  Fetcher
	ledger   *CycleLedger
	metrics  *metrics.Metrics
	replicas int
	quorum   int
}

// HostOption customizes a ReplicatedHost.
type HostOption func(*ReplicatedHost)

// WithReplicas sets how many replicas execute each request.
func WithReplicas(n int) HostOption {
	return func(h *ReplicatedHost) {
		h.replicas = n
	}
}

// WithQuorum sets how many replicas must produce the same transformed response.
// Zero selects more than two thirds of the replicas.
func WithQuorum(n int) HostOption {
	return func(h *ReplicatedHost) {
		h.quorum = n
	}
}

// WithMetrics records request outcomes and consumed cycles.
func WithMetrics(m *metrics.Metrics) HostOption {
	return func(h *ReplicatedHost) {
		h.metrics = m
	}
}

// NewReplicatedHost creates a host whose replicas fetch through fetcher and
// whose requests are paid for from ledger.
func NewReplicatedHost(logger zerolog.Logger, fetcher Fetcher, ledger *CycleLedger, opts ...HostOption) *ReplicatedHost {
	h := &ReplicatedHost{
		logger:   logger.With().Str("component", "replicated-host").Logger(),
		fetcher:  fetcher,
		ledger:   ledger,
		replicas: model.DefaultReplicas,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.replicas < 1 {
		h.replicas = 1
	}
	if h.quorum <= 0 || h.quorum > h.replicas {
		h.quorum = DefaultQuorum(h.replicas)
	}
	return h
}

// DefaultQuorum returns the smallest number of replicas exceeding two thirds of n.
func DefaultQuorum(n int) int {
	return 2*n/3 + 1
}

// Replicas returns the number of replicas executing each request.
func (h *ReplicatedHost) Replicas() int {
	return h.replicas
}

// Quorum returns the number of agreeing replicas required.
func (h *ReplicatedHost) Quorum() int {
	return h.quorum
}

// replicaResult is one replica's transformed response or failure.
type replicaResult struct {
	resp   Response
	digest common.Hash
	err    error
}

// HTTPRequest implements Host.
func (h *ReplicatedHost) HTTPRequest(ctx context.Context, req Request, cycles uint64) (Response, error) {
	if err := h.ledger.Debit(cycles); err != nil {
		return h.reject(Reject(CanisterReject, "%v", err))
	}
	h.metrics.AddCycles(cycles)

	if rej := validate(req); rej != nil {
		return h.reject(rej)
	}

	transform := req.Transform
	if transform == nil {
		transform = func(r Response) Response { return r }
	}

	results := make([]replicaResult, h.replicas)
	g, gctx := errgroup.WithContext(ctx)
	for i := range results {
		i := i
		g.Go(func() error {
			raw, err := h.fetcher.Fetch(gctx, req)
			if err == nil && req.MaxResponseBytes > 0 && uint64(len(raw.Body)) > req.MaxResponseBytes {
				err = errResponseTooLarge
			}
			if err != nil {
				results[i] = replicaResult{err: err}
				return nil
			}
			canonical := transform(raw)
			results[i] = replicaResult{resp: canonical, digest: Fingerprint(canonical)}
			return nil
		})
	}
	// replicas report failures through results, never through the group
	_ = g.Wait()

	resp, rej := h.agree(req, results)
	if rej != nil {
		return h.reject(rej)
	}

	h.metrics.ObserveOutcall(metrics.OutcomeSuccess, "")
	h.logger.Debug().
		Str("url", req.URL).
		Int("status", resp.Status).
		Int("replicas", h.replicas).
		Int("quorum", h.quorum).
		Msg("replicas agreed on response")
	return resp, nil
}

// agree picks the transformed response produced by at least quorum replicas.
// Ties between equally common responses resolve to the one seen first in replica order.
func (h *ReplicatedHost) agree(req Request, results []replicaResult) (Response, *RejectError) {
	counts := make(map[common.Hash]int, len(results))
	var (
		best      common.Hash
		bestCount int
		tooLarge  int
		failed    int
		firstErr  error
	)
	for _, r := range results {
		if r.err != nil {
			h.metrics.ObserveReplica("failed")
			if errors.Is(r.err, errResponseTooLarge) {
				tooLarge++
			} else {
				failed++
			}
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		counts[r.digest]++
		if counts[r.digest] > bestCount {
			best, bestCount = r.digest, counts[r.digest]
		}
	}

	if bestCount >= h.quorum {
		for _, r := range results {
			if r.err == nil && r.digest == best {
				h.metrics.ObserveReplica("agreed")
				return r.resp, nil
			}
		}
	}

	switch {
	case tooLarge >= h.quorum:
		limit := req.MaxResponseBytes
		if limit == 0 {
			limit = HostMaxResponseBytes
		}
		return Response{}, Reject(SysFatal, "Http body exceeds size limit of %d bytes.", limit)
	case failed+tooLarge >= h.quorum && firstErr != nil:
		return Response{}, Reject(SysTransient, "%v", firstErr)
	default:
		h.logger.Warn().
			Str("url", req.URL).
			Int("distinct_responses", len(counts)).
			Int("largest_agreement", bestCount).
			Int("quorum", h.quorum).
			Msg("replicas disagreed on response")
		return Response{}, Reject(SysTransient, "No consensus could be reached. Replicas had different responses.")
	}
}

func (h *ReplicatedHost) reject(rej *RejectError) (Response, error) {
	h.metrics.ObserveOutcall(metrics.OutcomeRejected, rej.Code.String())
	h.logger.Warn().
		Str("code", rej.Code.String()).
		Str("reason", rej.Message).
		Msg("request rejected")
	return Response{}, rej
}

// validate rejects requests the host cannot issue.
func validate(req Request) *RejectError {
	u, err := url.Parse(req.URL)
	if err != nil {
		return Reject(DestinationInvalid, "invalid url %q: %v", req.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Reject(DestinationInvalid, "unsupported url scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return Reject(DestinationInvalid, "url %q has no host", req.URL)
	}
	switch req.Method {
	case MethodGet, MethodPost, MethodHead:
	default:
		return Reject(CanisterError, "unsupported http method %q", req.Method)
	}
	if req.MaxResponseBytes > HostMaxResponseBytes {
		return Reject(CanisterError, "max_response_bytes %d exceeds host limit of %d", req.MaxResponseBytes, HostMaxResponseBytes)
	}
	return nil
}

// Fingerprint returns the Keccak-256 digest of a response's status, ordered
// headers and body. Equal fingerprints mean byte-identical responses.
func Fingerprint(resp Response) common.Hash {
	var buf []byte
	buf = binary.BigEndian.AppendUint64(buf, uint64(resp.Status))
	buf = binary.BigEndian.AppendUint64(buf, uint64(len(resp.Headers)))
	for _, h := range resp.Headers {
		buf = appendField(buf, []byte(h.Name))
		buf = appendField(buf, []byte(h.Value))
	}
	buf = appendField(buf, resp.Body)
	return crypto.Keccak256Hash(buf)
}

func appendField(buf, field []byte) []byte {
	buf = binary.BigEndian.AppendUint64(buf, uint64(len(field)))
	return append(buf, field...)
}

// Package bridge exposes signature verification and ERC-721 ownership queries
// backed by replicated outbound eth_call requests.
package bridge

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/thep2p/go-eth-outcall/internal/abi"
	"github.com/thep2p/go-eth-outcall/internal/jsonrpc"
	"github.com/thep2p/go-eth-outcall/internal/metrics"
	"github.com/thep2p/go-eth-outcall/internal/model"
	"github.com/thep2p/go-eth-outcall/internal/network"
	"github.com/thep2p/go-eth-outcall/internal/outcall"
	"github.com/thep2p/go-eth-outcall/internal/signature"
	"github.com/thep2p/go-eth-outcall/internal/utils"
)

// Service is the external interface of the bridge.
type Service struct {
	logger   zerolog.Logger
	networks *network.Registry
	executor *outcall.Executor
	verifier *signature.Verifier
	metrics  *metrics.Metrics
}

// NewService composes a Service from its collaborators. m may be nil.
func NewService(logger zerolog.Logger, networks *network.Registry, executor *outcall.Executor,
	verifier *signature.Verifier, m *metrics.Metrics) *Service {
	return &Service{
		logger:   logger.With().Str("component", "bridge").Logger(),
		networks: networks,
		executor: executor,
		verifier: verifier,
		metrics:  m,
	}
}

// New builds a Service from cfg: a registry with the built-in networks plus the
// configured overrides, and a replicated fasthttp host paid from a fresh cycle ledger.
func New(logger zerolog.Logger, cfg model.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	networks := network.NewDefaultRegistry()
	for name, endpoint := range cfg.Networks {
		if err := networks.Override(name, endpoint); err != nil {
			return nil, fmt.Errorf("configure networks: %w", err)
		}
	}

	mode, err := signature.ParseHashMode(cfg.HashMode)
	if err != nil {
		return nil, err
	}
	policy, err := signature.ParseMalformedPolicy(cfg.MalformedSignature)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	host := outcall.NewReplicatedHost(logger,
		outcall.NewHTTPFetcher(cfg.RequestTimeout),
		outcall.NewCycleLedger(cfg.CycleBalance),
		outcall.WithReplicas(cfg.Replicas),
		outcall.WithQuorum(cfg.Quorum),
		outcall.WithMetrics(m))
	executor := outcall.NewExecutor(logger, host,
		outcall.WithMaxResponseBytes(cfg.MaxResponseBytes),
		outcall.WithCycles(cfg.Cycles))
	verifier := signature.NewVerifier(logger,
		signature.WithHashMode(mode),
		signature.WithMalformedPolicy(policy))

	logger.Info().
		Strs("networks", networks.Available()).
		Int("replicas", host.Replicas()).
		Int("quorum", host.Quorum()).
		Uint64("cycles_per_call", cfg.Cycles).
		Str("hash_mode", mode.String()).
		Msg("bridge configured")

	return NewService(logger, networks, executor, verifier, m), nil
}

// Networks returns the registry the service resolves network names with.
func (s *Service) Networks() *network.Registry {
	return s.networks
}

// Metrics returns the service metrics, or nil if none are recorded.
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

// VerifyECDSA reports whether signature over message was produced by the key of address.
// It performs no I/O. An error is only returned when the verifier reports malformed input as errors.
func (s *Service) VerifyECDSA(address, message, sig string) (bool, error) {
	valid, err := s.verifier.Verify(address, message, sig)
	switch {
	case err != nil:
		s.metrics.ObserveVerification("malformed")
	case valid:
		s.metrics.ObserveVerification("valid")
	default:
		s.metrics.ObserveVerification("invalid")
	}
	return valid, err
}

// Transform canonicalizes a replica response so that replicas can agree on it.
func (s *Service) Transform(resp outcall.Response) outcall.Response {
	return outcall.StripHeaders(resp)
}

// Call executes the view function fn with args on the contract at contract on the
// named network and returns its decoded first return value.
//
// The contract address and network are validated before any I/O. The outbound
// request is attempted once; every failure is returned to the caller.
func (s *Service) Call(ctx context.Context, fn *abi.Function, networkName, contract string, args ...any) (any, error) {
	to, err := utils.ParseAddress(contract)
	if err != nil {
		return nil, fmt.Errorf("contract address: %w", err)
	}
	n, err := s.networks.Get(networkName)
	if err != nil {
		return nil, err
	}

	lg := s.logger.With().
		Str("function", fn.Signature()).
		Str("network", n.Name).
		Str("contract", to.Hex()).
		Logger()

	result, err := s.call(ctx, fn, n, to, args)
	if err != nil {
		s.metrics.ObserveQuery(fn.Name(), n.Name, metrics.OutcomeRejected)
		lg.Error().Err(err).Msg("contract call failed")
		return nil, err
	}

	s.metrics.ObserveQuery(fn.Name(), n.Name, metrics.OutcomeSuccess)
	lg.Debug().Interface("result", result).Msg("contract call completed")
	return result, nil
}

func (s *Service) call(ctx context.Context, fn *abi.Function, n network.Network, to common.Address, args []any) (any, error) {
	data, err := fn.EncodeCall(args...)
	if err != nil {
		return nil, err
	}
	payload, err := jsonrpc.BuildEthCall(to, data)
	if err != nil {
		return nil, err
	}
	resp, err := s.executor.Post(ctx, n, payload)
	if err != nil {
		return nil, err
	}
	result, err := jsonrpc.DecodeResult(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s on %s (status %d): %w", fn.Name(), n.Name, resp.Status, err)
	}
	return fn.DecodeOutput(result)
}

// GetNFTOwner returns the owner of an ERC-721 token as 40 lowercase hex digits without a "0x" prefix.
func (s *Service) GetNFTOwner(ctx context.Context, networkName, contract string, tokenID *big.Int) (string, error) {
	if tokenID == nil {
		return "", fmt.Errorf("%w: token id is required", model.ErrInput)
	}

	v, err := s.Call(ctx, abi.ERC721OwnerOf, networkName, contract, tokenID)
	if err != nil {
		return "", err
	}
	owner, ok := v.(common.Address)
	if !ok {
		return "", fmt.Errorf("%w: ownerOf returned %T", model.ErrMalformedJSON, v)
	}
	return hex.EncodeToString(owner.Bytes()), nil
}

// NFTClaim asserts that Owner holds token TokenID of Contract on Network.
type NFTClaim struct {
	Network  string
	Contract string
	TokenID  *big.Int
	Owner    string
}

// VerifyNFTOwnership reports whether the on-chain owner of the claimed token is the claimed owner.
// Addresses are compared as decoded bytes.
func (s *Service) VerifyNFTOwnership(ctx context.Context, claim NFTClaim) (bool, error) {
	claimed, err := utils.ParseAddress(claim.Owner)
	if err != nil {
		return false, fmt.Errorf("claimed owner: %w", err)
	}
	owner, err := s.GetNFTOwner(ctx, claim.Network, claim.Contract, claim.TokenID)
	if err != nil {
		return false, err
	}
	actual, err := utils.ParseAddress(owner)
	if err != nil {
		return false, err
	}
	return actual == claimed, nil
}

// VerifyNFTOwnerships checks each claim in order and stops at the first failed query.
// It returns true only if every claim holds.
func (s *Service) VerifyNFTOwnerships(ctx context.Context, claims []NFTClaim) (bool, error) {
	if len(claims) == 0 {
		return false, fmt.Errorf("%w: no nft claims given", model.ErrInput)
	}
	for i, claim := range claims {
		ok, err := s.VerifyNFTOwnership(ctx, claim)
		if err != nil {
			return false, fmt.Errorf("claim %d: %w", i, err)
		}
		if !ok {
			s.logger.Info().
				Int("claim", i).
				Str("network", claim.Network).
				Str("contract", claim.Contract).
				Msg("nft ownership claim does not hold")
			return false, nil
		}
	}
	return true, nil
}

package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultMaxResponseBytes bounds the size of an eth_call reply body.
	DefaultMaxResponseBytes = 2048

	// DefaultCycles is the fixed budget attached to every outbound call.
	DefaultCycles = 5_000_000

	// DefaultCycleBalance is the budget a freshly created host ledger holds.
	DefaultCycleBalance = 1_000_000_000_000

	// DefaultReplicas is the number of replicas executing each outbound call.
	DefaultReplicas = 4

	// DefaultRequestTimeout is the host deadline for a single replica request.
	DefaultRequestTimeout = 10 * time.Second
)

// Config defines the configuration parameters for the bridge service.
type Config struct {
	// Networks adds or overrides network endpoints, keyed by network name.
	// The built-in mainnet and sepolia endpoints are always present unless overridden.
	Networks map[string]string `validate:"dive,keys,required,endkeys,url"`

	// MaxResponseBytes is the largest reply body the host accepts for one call.
	MaxResponseBytes uint64 `validate:"gt=0,lte=2000000"`

	// Cycles is the budget consumed by every outbound call, successful or not.
	Cycles uint64 `validate:"gt=0"`

	// CycleBalance is the initial balance of the host cycle ledger.
	CycleBalance uint64 `validate:"gtefield=Cycles"`

	// Replicas is the number of independent executions of each outbound call.
	Replicas int `validate:"gt=0,lte=64"`

	// Quorum is the number of replicas that must agree on the transformed response.
	// Zero selects the default of more than two thirds of Replicas.
	Quorum int `validate:"gte=0,ltefield=Replicas"`

	// RequestTimeout is the deadline applied to each replica request.
	RequestTimeout time.Duration `validate:"gt=0"`

	// HashMode selects how verified messages are digested: personal, keccak or digest.
	HashMode string `validate:"oneof=personal keccak digest"`

	// MalformedSignature selects whether malformed verifier input yields false or an error.
	MalformedSignature string `validate:"oneof=false error"`

	// ListenAddr is the address the HTTP API binds to.
	ListenAddr string

	// LogLevel is the minimum zerolog level that is emitted.
	LogLevel string `validate:"oneof=trace debug info warn error"`
}

// DefaultConfig returns a Config populated with the default values.
func DefaultConfig() Config {
	return Config{
		Networks:           map[string]string{},
		MaxResponseBytes:   DefaultMaxResponseBytes,
		Cycles:             DefaultCycles,
		CycleBalance:       DefaultCycleBalance,
		Replicas:           DefaultReplicas,
		RequestTimeout:     DefaultRequestTimeout,
		HashMode:           "personal",
		MalformedSignature: "false",
		ListenAddr:         "127.0.0.1:8080",
		LogLevel:           "info",
	}
}

// Validate checks the configuration against its constraints.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: config: %v", ErrInput, err)
	}
	return nil
}

// Option modifies the configuration before the service is built.
type Option func(*Config)

// WithNetwork registers an additional or overriding network endpoint.
func WithNetwork(name, url string) Option {
	return func(cfg *Config) {
		if cfg.Networks == nil {
			cfg.Networks = map[string]string{}
		}
		cfg.Networks[name] = url
	}
}

// WithReplicas configures the replica count and agreement quorum.
func WithReplicas(replicas, quorum int) Option {
	return func(cfg *Config) {
		cfg.Replicas = replicas
		cfg.Quorum = quorum
	}
}

// WithCycleBalance configures the initial cycle balance of the host ledger.
func WithCycleBalance(balance uint64) Option {
	return func(cfg *Config) {
		cfg.CycleBalance = balance
	}
}

// Apply returns a copy of the configuration with all options applied.
func (c Config) Apply(opts ...Option) Config {
	networks := make(map[string]string, len(c.Networks))
	for k, v := range c.Networks {
		networks[k] = v
	}
	c.Networks = networks
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

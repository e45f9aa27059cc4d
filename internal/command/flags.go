package command

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/thep2p/go-eth-outcall/internal/model"
	"github.com/urfave/cli/v2"
)

// envPrefix prefixes the environment variable of every flag.
const envPrefix = "ETH_OUTCALL_"

// Flag names.
const (
	flagNetwork            = "network"
	flagMaxResponseBytes   = "max-response-bytes"
	flagCycles             = "cycles"
	flagCycleBalance       = "cycle-balance"
	flagReplicas           = "replicas"
	flagQuorum             = "quorum"
	flagRequestTimeout     = "request-timeout"
	flagHashMode           = "hash-mode"
	flagMalformedSignature = "malformed-signature"
	flagListen             = "listen"
	flagLogLevel           = "log-level"
)

func env(name string) []string {
	return []string{envPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))}
}

// globalFlags configure the bridge for every command.
func globalFlags() []cli.Flag {
	defaults := model.DefaultConfig()
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    flagNetwork,
			Usage:   "add or override a network endpoint as `name=url` (repeatable)",
			EnvVars: []string{envPrefix + "NETWORKS"},
		},
		&cli.Uint64Flag{
			Name:    flagMaxResponseBytes,
			Usage:   "largest accepted reply body in bytes",
			Value:   defaults.MaxResponseBytes,
			EnvVars: env(flagMaxResponseBytes),
		},
		&cli.Uint64Flag{
			Name:    flagCycles,
			Usage:   "cycles attached to every outbound call",
			Value:   defaults.Cycles,
			EnvVars: env(flagCycles),
		},
		&cli.Uint64Flag{
			Name:    flagCycleBalance,
			Usage:   "initial cycle balance of the host ledger",
			Value:   defaults.CycleBalance,
			EnvVars: env(flagCycleBalance),
		},
		&cli.IntFlag{
			Name:    flagReplicas,
			Usage:   "replicas executing each outbound call",
			Value:   defaults.Replicas,
			EnvVars: env(flagReplicas),
		},
		&cli.IntFlag{
			Name:    flagQuorum,
			Usage:   "replicas that must agree on a response (0 for more than two thirds)",
			Value:   defaults.Quorum,
			EnvVars: env(flagQuorum),
		},
		&cli.DurationFlag{
			Name:    flagRequestTimeout,
			Usage:   "deadline of a single replica request",
			Value:   defaults.RequestTimeout,
			EnvVars: env(flagRequestTimeout),
		},
		&cli.StringFlag{
			Name:    flagHashMode,
			Usage:   "message digest of signature checks: personal, keccak or digest",
			Value:   defaults.HashMode,
			EnvVars: env(flagHashMode),
		},
		&cli.StringFlag{
			Name:    flagMalformedSignature,
			Usage:   "result of malformed signature input: false or error",
			Value:   defaults.MalformedSignature,
			EnvVars: env(flagMalformedSignature),
		},
		&cli.StringFlag{
			Name:    flagLogLevel,
			Usage:   "minimum log level: trace, debug, info, warn or error",
			Value:   defaults.LogLevel,
			EnvVars: env(flagLogLevel),
		},
	}
}

// configFromContext builds and validates the configuration from the parsed flags.
func configFromContext(c *cli.Context) (model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.MaxResponseBytes = c.Uint64(flagMaxResponseBytes)
	cfg.Cycles = c.Uint64(flagCycles)
	cfg.CycleBalance = c.Uint64(flagCycleBalance)
	cfg.Replicas = c.Int(flagReplicas)
	cfg.Quorum = c.Int(flagQuorum)
	cfg.RequestTimeout = c.Duration(flagRequestTimeout)
	cfg.HashMode = c.String(flagHashMode)
	cfg.MalformedSignature = c.String(flagMalformedSignature)
	cfg.LogLevel = c.String(flagLogLevel)
	if c.IsSet(flagListen) {
		cfg.ListenAddr = c.String(flagListen)
	}

	opts := make([]model.Option, 0, len(c.StringSlice(flagNetwork)))
	for _, entry := range c.StringSlice(flagNetwork) {
		name, endpoint, err := parseNetwork(entry)
		if err != nil {
			return model.Config{}, err
		}
		opts = append(opts, model.WithNetwork(name, endpoint))
	}
	cfg = cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// parseNetwork splits a name=url network flag value.
func parseNetwork(entry string) (string, string, error) {
	name, endpoint, ok := strings.Cut(entry, "=")
	name, endpoint = strings.TrimSpace(name), strings.TrimSpace(endpoint)
	if !ok || name == "" || endpoint == "" {
		return "", "", fmt.Errorf("%w: network %q must be name=url", model.ErrInput, entry)
	}
	return strings.ToLower(name), endpoint, nil
}

// parseLevel returns the zerolog level named by the configuration.
func parseLevel(name string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: log level %q: %v", model.ErrInput, name, err)
	}
	return level, nil
}

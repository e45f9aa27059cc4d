// Package command implements the eth-outcall command line interface.
package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/thep2p/go-eth-outcall/internal/api"
	"github.com/thep2p/go-eth-outcall/internal/bridge"
	"github.com/thep2p/go-eth-outcall/internal/model"
	"github.com/urfave/cli/v2"
)

// AppName is the name of the executable.
const AppName = "eth-outcall"

// NewApp returns the CLI application. Command results are written to out and logs to logs.
func NewApp(out, logs io.Writer) *cli.App {
	return &cli.App{
		Name:      AppName,
		Usage:     "verify Ethereum signatures and query ERC-721 owners through replicated outbound calls",
		Flags:     globalFlags(),
		Writer:    out,
		ErrWriter: logs,
		Commands: []*cli.Command{
			{
				Name:  "verify",
				Usage: "check that a signature over a message recovers to an address",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "address", Usage: "claimed signer address", Required: true},
					&cli.StringFlag{Name: "message", Usage: "signed message"},
					&cli.StringFlag{Name: "signature", Usage: "65-byte hex signature", Required: true},
				},
				Action: func(c *cli.Context) error {
					svc, _, err := setup(c, logs)
					if err != nil {
						return err
					}
					valid, err := svc.VerifyECDSA(c.String("address"), c.String("message"), c.String("signature"))
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(out, valid)
					return err
				},
			},
			{
				Name:  "owner",
				Usage: "print the owner of an ERC-721 token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "chain", Aliases: []string{"c"}, Usage: "network name", Value: model.NetworkMainnet},
					&cli.StringFlag{Name: "contract", Usage: "token contract address", Required: true},
					&cli.StringFlag{Name: "token", Usage: "token id, decimal or 0x-hex", Required: true},
				},
				Action: func(c *cli.Context) error {
					tokenID, err := model.ParseTokenID(c.String("token"))
					if err != nil {
						return err
					}
					svc, _, err := setup(c, logs)
					if err != nil {
						return err
					}
					owner, err := svc.GetNFTOwner(c.Context, c.String("chain"), c.String("contract"), tokenID)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(out, owner)
					return err
				},
			},
			{
				Name:  "networks",
				Usage: "list the known networks",
				Action: func(c *cli.Context) error {
					svc, _, err := setup(c, logs)
					if err != nil {
						return err
					}
					for _, name := range svc.Networks().Available() {
						n, err := svc.Networks().Get(name)
						if err != nil {
							return err
						}
						if _, err := fmt.Fprintf(out, "%s\t%s\n", n.Name, n.URL); err != nil {
							return err
						}
					}
					return nil
				},
			},
			{
				Name:  "serve",
				Usage: "serve the bridge over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagListen,
						Usage:   "address of the HTTP API",
						Value:   model.DefaultConfig().ListenAddr,
						EnvVars: env(flagListen),
					},
				},
				Action: func(c *cli.Context) error {
					svc, logger, err := setup(c, logs)
					if err != nil {
						return err
					}
					return api.NewServer(logger, svc).Run(c.Context, c.String(flagListen))
				},
			},
		},
	}
}

// setup builds the logger and the bridge from the parsed flags.
func setup(c *cli.Context, logs io.Writer) (*bridge.Service, zerolog.Logger, error) {
	cfg, err := configFromContext(c)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	logger := zerolog.New(logs).Level(level).With().Timestamp().Str("app", AppName).Logger()

	svc, err := bridge.New(logger, cfg)
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("create bridge: %w", err)
	}
	return svc, logger, nil
}

// LoadDotEnv loads environment variables from the given files, skipping files that do not exist.
// Variables already present in the environment are not overridden.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

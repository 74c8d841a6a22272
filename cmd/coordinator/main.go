package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"

	"github.com/bartke/frost-ceremony/coordinator"
	"github.com/bartke/frost-ceremony/internal/exitcode"
)

func main() {
	var cfg coordinator.Config
	pflag.StringVarP(&cfg.Ciphersuite, "ciphersuite", "C", "ed25519", "ciphersuite to use (ed25519 or ed448)")
	pflag.BoolVar(&cfg.CLI, "cli", false, "use the console transport: read inputs from stdin and print values to stdout")
	pflag.Uint16VarP(&cfg.NumSigners, "num-signers", "n", 0, "number of participants; 0 prompts for a value")
	pflag.StringVarP(&cfg.PublicKeyPackage, "public-key-package", "P", "public-key-package.json", "public key package file, or - for stdin")
	pflag.StringArrayVarP(&cfg.Messages, "message", "m", nil, "message file to sign; - or empty reads hex from stdin; repeatable")
	pflag.StringVarP(&cfg.Signature, "signature", "s", "", "file for the raw signature bytes; - or empty prints hex to stdout")
	pflag.StringVarP(&cfg.IP, "ip", "i", "0.0.0.0", "IP to bind to in socket mode")
	pflag.Uint16VarP(&cfg.Port, "port", "p", 2744, "port to bind to in socket mode")
	pflag.DurationVar(&cfg.RoundTimeout, "round-timeout", 5*time.Minute, "bound on each collection round in socket mode; 0 disables")
	pflag.Parse()

	if err := run(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitcode.For(err))
	}
}

func run(cfg *coordinator.Config) error {
	input := bufio.NewReader(os.Stdin)
	logger := os.Stdout

	session, err := cfg.Process(input, logger)
	if err != nil {
		return err
	}

	var comms coordinator.Comms
	if session.CLI {
		comms = coordinator.NewCLIComms(input, logger, session.PublicKeyPackage)
	} else {
		comms, err = coordinator.NewSocketComms(session.IP, session.Port, session.NumSigners, session.PublicKeyPackage, logger)
		if err != nil {
			return err
		}
	}
	defer comms.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, err = coordinator.New(session, comms, logger).Run(ctx)
	return err
}

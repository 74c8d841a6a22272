package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/bartke/frost-ceremony/internal/exitcode"
	"github.com/bartke/frost-ceremony/participant"
)

func main() {
	var cfg participant.Config
	pflag.StringVarP(&cfg.Ciphersuite, "ciphersuite", "C", "ed25519", "ciphersuite to use (ed25519 or ed448)")
	pflag.BoolVar(&cfg.CLI, "cli", false, "use the console transport: read inputs from stdin and print values to stdout")
	pflag.StringVarP(&cfg.KeyPackage, "key-package", "k", "key-package-1.json", "key package or dealer secret share file, or - for stdin")
	pflag.StringVarP(&cfg.IP, "ip", "i", "127.0.0.1", "coordinator IP to connect to in socket mode")
	pflag.Uint16VarP(&cfg.Port, "port", "p", 2744, "coordinator port to connect to in socket mode")
	pflag.Parse()

	if err := run(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitcode.For(err))
	}
}

func run(cfg *participant.Config) error {
	input := bufio.NewReader(os.Stdin)
	logger := os.Stdout

	session, err := cfg.Process(input, logger)
	if err != nil {
		return err
	}

	var comms participant.Comms
	if session.CLI {
		comms = participant.NewCLIComms(session.Suite, input, logger)
	} else {
		comms, err = participant.NewSocketComms(session.Suite, session.IP, session.Port)
		if err != nil {
			return err
		}
	}
	defer comms.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return participant.New(session.KeyPackage, comms, logger).Run(ctx)
}

package coordinator

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/ciphersuite"
	"github.com/bartke/frost-ceremony/internal/prompt"
)

// Config is the coordinator's raw CLI surface.
type Config struct {
	// Ciphersuite selects the group, "ed25519" or "ed448".
	Ciphersuite string

	// CLI selects the console transport instead of the socket one.
	CLI bool

	// NumSigners is the number of participants. 0 prompts for a value.
	NumSigners uint16

	// PublicKeyPackage is the path of the JSON-encoded public key
	// package, or "-" to read it from standard input.
	PublicKeyPackage string

	// Messages are the paths of the messages to sign. "-" or "" reads a
	// hex-encoded message from standard input.
	Messages []string

	// Signature is where the raw signature bytes are written. "-" or ""
	// prints the hex encoding instead.
	Signature string

	// IP and Port are the socket bind address.
	IP   string
	Port uint16

	// RoundTimeout bounds each collection round in socket mode.
	// 0 disables the bound.
	RoundTimeout time.Duration
}

// Session is a processed Config with every input loaded and validated.
type Session struct {
	Suite            ciphersuite.Suite
	CLI              bool
	NumSigners       uint16
	PublicKeyPackage *frost.PublicKeyPackage
	Messages         [][]byte
	Signature        string
	IP               string
	Port             uint16
	RoundTimeout     time.Duration
}

// Process validates the config and loads the key material and messages,
// prompting on input for anything configured to come from the user.
func (cfg *Config) Process(input *bufio.Reader, output io.Writer) (*Session, error) {
	suite, err := ciphersuite.FromName(cfg.Ciphersuite)
	if err != nil {
		return nil, err
	}

	numSigners := cfg.NumSigners
	if numSigners == 0 {
		fmt.Fprintln(output, "The number of participants:")
		line, err := prompt.ReadLine(input)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseUint(strings.TrimSpace(string(line)), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid number of participants: %w", err)
		}
		numSigners = uint16(n)
	}
	if numSigners < 2 {
		return nil, fmt.Errorf("at least 2 participants are required, got %d", numSigners)
	}

	pkpData, err := prompt.ReadFileOrStdin(input, output, "public key package", cfg.PublicKeyPackage)
	if err != nil {
		return nil, err
	}
	pkp, err := frost.DecodePublicKeyPackage(pkpData)
	if err != nil {
		return nil, fmt.Errorf("public key package: %w", err)
	}
	if pkp.Suite.Name() != suite.Name() {
		return nil, fmt.Errorf("public key package is for ciphersuite %s, not %s",
			pkp.Suite.Name(), suite.Name())
	}
	if int(numSigners) > len(pkp.VerifyingShares) {
		return nil, fmt.Errorf("requested %d signers but the public key package only lists %d",
			numSigners, len(pkp.VerifyingShares))
	}

	msgs, err := prompt.ReadMessages(cfg.Messages, input, output)
	if err != nil {
		return nil, err
	}
	if !cfg.CLI && len(msgs) > 1 {
		return nil, fmt.Errorf("socket mode signs one message per ceremony, got %d", len(msgs))
	}

	return &Session{
		Suite:            suite,
		CLI:              cfg.CLI,
		NumSigners:       numSigners,
		PublicKeyPackage: pkp,
		Messages:         msgs,
		Signature:        cfg.Signature,
		IP:               cfg.IP,
		Port:             cfg.Port,
		RoundTimeout:     cfg.RoundTimeout,
	}, nil
}

// WriteSignature delivers one ceremony result to the configured sink:
// hex on the logger when no file is configured, raw bytes to a file
// otherwise. With several messages the file name gets a 1-based suffix.
func (s *Session) WriteSignature(index int, signature *frost.Signature, logger io.Writer) error {
	if s.Signature == "" || s.Signature == "-" {
		fmt.Fprintf(logger, "Group signature: %s\n", hex.EncodeToString(signature.Encode()))
		return nil
	}
	path := s.Signature
	if len(s.Messages) > 1 {
		path = fmt.Sprintf("%s.%d", path, index+1)
	}
	if err := os.WriteFile(path, signature.Encode(), 0644); err != nil {
		return err
	}
	fmt.Fprintf(logger, "Raw signature written to %s\n", path)
	return nil
}

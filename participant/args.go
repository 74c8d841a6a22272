package participant

import (
	"bufio"
	"fmt"
	"io"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/ciphersuite"
	"github.com/bartke/frost-ceremony/internal/prompt"
)

// Config is the participant's raw CLI surface.
type Config struct {
	// Ciphersuite selects the group, "ed25519" or "ed448".
	Ciphersuite string

	// CLI selects the console transport instead of the socket one.
	CLI bool

	// KeyPackage is the path of the JSON-encoded key package or dealer
	// secret share, or "-" to read it from standard input.
	KeyPackage string

	// IP and Port are the coordinator's socket address.
	IP   string
	Port uint16
}

// Session is a processed Config with the key material loaded.
type Session struct {
	Suite      ciphersuite.Suite
	CLI        bool
	KeyPackage *frost.KeyPackage
	IP         string
	Port       uint16
}

// Process validates the config and loads the key package. A raw dealer
// secret share is accepted and promoted to a key package; otherwise the
// input must be a pre-formed key package.
func (cfg *Config) Process(input *bufio.Reader, output io.Writer) (*Session, error) {
	suite, err := ciphersuite.FromName(cfg.Ciphersuite)
	if err != nil {
		return nil, err
	}

	data, err := prompt.ReadFileOrStdin(input, output, "key package", cfg.KeyPackage)
	if err != nil {
		return nil, err
	}

	kp, err := loadKeyPackage(data)
	if err != nil {
		return nil, err
	}
	if kp.Suite.Name() != suite.Name() {
		return nil, fmt.Errorf("key package is for ciphersuite %s, not %s",
			kp.Suite.Name(), suite.Name())
	}

	return &Session{
		Suite:      suite,
		CLI:        cfg.CLI,
		KeyPackage: kp,
		IP:         cfg.IP,
		Port:       cfg.Port,
	}, nil
}

func loadKeyPackage(data []byte) (*frost.KeyPackage, error) {
	if ss, err := frost.DecodeSecretShare(data); err == nil {
		kp, err := ss.Promote()
		if err != nil {
			return nil, fmt.Errorf("secret share: %w", err)
		}
		return kp, nil
	}
	kp, err := frost.DecodeKeyPackage(data)
	if err != nil {
		return nil, fmt.Errorf("key package: %w", err)
	}
	return kp, nil
}

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/pflag"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/ciphersuite"
)

func main() {
	var (
		suiteName  = pflag.StringP("ciphersuite", "C", "ed25519", "ciphersuite to use (ed25519 or ed448)")
		threshold  = pflag.Uint16P("threshold", "t", 2, "minimum number of signers")
		numSigners = pflag.Uint16P("num-signers", "n", 3, "total number of signers")
		secretHex  = pflag.String("secret", "", "hex-encoded group secret to split; empty generates a fresh one")
		pkpPath    = pflag.StringP("public-key-package", "P", "public-key-package.json", "output file for the public key package")
		kpPrefix   = pflag.StringP("key-package", "k", "key-package", "output file prefix for the per-signer packages")
	)
	pflag.Parse()

	if err := run(*suiteName, *threshold, *numSigners, *secretHex, *pkpPath, *kpPrefix); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(suiteName string, threshold, numSigners uint16, secretHex, pkpPath, kpPrefix string) error {
	suite, err := ciphersuite.FromName(suiteName)
	if err != nil {
		return err
	}

	var secret *big.Int
	if secretHex != "" {
		secretBytes, err := hex.DecodeString(secretHex)
		if err != nil {
			return fmt.Errorf("secret: %w", err)
		}
		secret, err = suite.DecodeScalar(secretBytes)
		if err != nil {
			return fmt.Errorf("secret: %w", err)
		}
	}

	shares, pkp, err := frost.DealKeys(suite, secret, threshold, numSigners)
	if err != nil {
		return err
	}

	pkpData, err := json.Marshal(pkp)
	if err != nil {
		return err
	}
	if err := os.WriteFile(pkpPath, pkpData, 0644); err != nil {
		return err
	}
	fmt.Printf("Public key package written to %s\n", pkpPath)

	for i, share := range shares {
		data, err := json.Marshal(share)
		if err != nil {
			return err
		}
		path := fmt.Sprintf("%s-%d.json", kpPrefix, i+1)
		if err := os.WriteFile(path, data, 0600); err != nil {
			return err
		}
		fmt.Printf("Secret share of participant %s written to %s\n", share.Identifier, path)
	}

	fmt.Printf("Group public key: %s\n", hex.EncodeToString(pkp.GroupKey.Encode()))
	return nil
}

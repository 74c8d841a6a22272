package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/ciphersuite"
)

func main() {
	suiteName := pflag.StringP("ciphersuite", "C", "ed25519", "ciphersuite to use (ed25519 or ed448)")
	pflag.Parse()

	if pflag.NArg() != 3 {
		log.Fatalf("Usage: %s [-C ciphersuite] <hex-group-key> <signature-file> <message-file>\n", os.Args[0])
	}

	suite, err := ciphersuite.FromName(*suiteName)
	if err != nil {
		log.Fatalf("Failed to resolve ciphersuite: %v\n", err)
	}

	groupKeyBytes, err := hex.DecodeString(pflag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to decode group key: %v\n", err)
	}
	groupKey, err := suite.DecodeElement(groupKeyBytes)
	if err != nil {
		log.Fatalf("Failed to parse group key: %v\n", err)
	}

	sigBytes, err := os.ReadFile(pflag.Arg(1))
	if err != nil {
		log.Fatalf("Failed to read signature: %v\n", err)
	}
	signature, err := frost.DecodeSignature(suite, sigBytes)
	if err != nil {
		log.Fatalf("Failed to parse signature: %v\n", err)
	}

	message, err := os.ReadFile(pflag.Arg(2))
	if err != nil {
		log.Fatalf("Failed to read file: %v\n", err)
	}

	if err := frost.VerifySignature(suite, groupKey, message, signature); err != nil {
		fmt.Println("Signature is invalid.")
		os.Exit(1)
	}
	fmt.Println("Signature is valid.")
}

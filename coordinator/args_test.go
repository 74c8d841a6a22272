package coordinator

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/ciphersuite"
	"github.com/bartke/frost-ceremony/party"
)

func dealPKPFile(t *testing.T, suite ciphersuite.Suite) string {
	t.Helper()
	_, pkp, err := frost.DealKeys(suite, nil, 2, 3)
	require.NoError(t, err)
	data, err := json.Marshal(pkp)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "public-key-package.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestProcessLoadsEverything(t *testing.T) {
	pkpPath := dealPKPFile(t, ciphersuite.Ed25519())

	messagePath := filepath.Join(t.TempDir(), "message.bin")
	require.NoError(t, os.WriteFile(messagePath, []byte("Hello"), 0644))

	cfg := &Config{
		Ciphersuite:      "ed25519",
		NumSigners:       2,
		PublicKeyPackage: pkpPath,
		Messages:         []string{messagePath},
	}
	session, err := cfg.Process(bufio.NewReader(&bytes.Buffer{}), io.Discard)
	require.NoError(t, err)
	assert.EqualValues(t, 2, session.NumSigners)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, []byte("Hello"), session.Messages[0])
	assert.Len(t, session.PublicKeyPackage.VerifyingShares, 3)
}

func TestProcessPromptsForSignerCountAndHexMessage(t *testing.T) {
	pkpPath := dealPKPFile(t, ciphersuite.Ed25519())

	// -n 0 prompts for a count; an empty message list prompts for hex.
	var input bytes.Buffer
	input.WriteString("2\n")
	input.WriteString(hex.EncodeToString([]byte("Hello")) + "\n")

	cfg := &Config{
		Ciphersuite:      "ed25519",
		CLI:              true,
		PublicKeyPackage: pkpPath,
	}
	var output bytes.Buffer
	session, err := cfg.Process(bufio.NewReader(&input), &output)
	require.NoError(t, err)
	assert.EqualValues(t, 2, session.NumSigners)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, []byte("Hello"), session.Messages[0])
	assert.Contains(t, output.String(), "number of participants")
}

func TestProcessRejectsMultipleMessagesInSocketMode(t *testing.T) {
	pkpPath := dealPKPFile(t, ciphersuite.Ed25519())

	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.bin", "b.bin"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0644))
		paths = append(paths, path)
	}

	cfg := &Config{
		Ciphersuite:      "ed25519",
		NumSigners:       2,
		PublicKeyPackage: pkpPath,
		Messages:         paths,
	}
	_, err := cfg.Process(bufio.NewReader(&bytes.Buffer{}), io.Discard)
	assert.Error(t, err)

	// The same set of messages is fine on the console transport.
	cfg.CLI = true
	session, err := cfg.Process(bufio.NewReader(&bytes.Buffer{}), io.Discard)
	require.NoError(t, err)
	assert.Len(t, session.Messages, 2)
}

func TestProcessValidatesSignerCount(t *testing.T) {
	pkpPath := dealPKPFile(t, ciphersuite.Ed25519())
	messagePath := filepath.Join(t.TempDir(), "message.bin")
	require.NoError(t, os.WriteFile(messagePath, []byte("Hello"), 0644))

	cfg := &Config{
		Ciphersuite:      "ed25519",
		NumSigners:       1,
		PublicKeyPackage: pkpPath,
		Messages:         []string{messagePath},
	}
	_, err := cfg.Process(bufio.NewReader(&bytes.Buffer{}), io.Discard)
	assert.Error(t, err, "fewer than two signers")

	cfg.NumSigners = 4
	_, err = cfg.Process(bufio.NewReader(&bytes.Buffer{}), io.Discard)
	assert.Error(t, err, "more signers than the package lists")
}

func TestProcessRejectsSuiteMismatch(t *testing.T) {
	pkpPath := dealPKPFile(t, ciphersuite.Ed448())

	cfg := &Config{
		Ciphersuite:      "ed25519",
		NumSigners:       2,
		PublicKeyPackage: pkpPath,
	}
	_, err := cfg.Process(bufio.NewReader(&bytes.Buffer{}), io.Discard)
	assert.Error(t, err)
}

// signTestMessage runs a minimal local ceremony so WriteSignature has a
// real signature to deliver.
func signTestMessage(t *testing.T, f *fixture, message []byte) *frost.Signature {
	t.Helper()

	commitments, nonces := f.commitments(t, f.ids[0], f.ids[1])
	sp := frost.NewSigningPackage(f.suite, commitments, message)
	shares := make(map[party.ID]*frost.SignatureShare)
	for _, id := range sp.SortedIDs() {
		share, err := frost.Sign(sp, nonces[id], f.keyPackages[id])
		require.NoError(t, err)
		shares[id] = share
	}
	signature, err := frost.Aggregate(sp, shares, f.pkp)
	require.NoError(t, err)
	return signature
}

func TestWriteSignatureHexToLogger(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 2)
	message := []byte("Hello")
	signature := signTestMessage(t, f, message)

	for _, sink := range []string{"", "-"} {
		session := &Session{Suite: f.suite, Messages: [][]byte{message}, Signature: sink}
		var logger bytes.Buffer
		require.NoError(t, session.WriteSignature(0, signature, &logger))
		assert.Contains(t, logger.String(), hex.EncodeToString(signature.Encode()))
	}
}

func TestWriteSignatureRawToFile(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 2)
	message := []byte("Hello")
	signature := signTestMessage(t, f, message)

	path := filepath.Join(t.TempDir(), "signature_out.bin")
	session := &Session{Suite: f.suite, Messages: [][]byte{message}, Signature: path}
	var logger bytes.Buffer
	require.NoError(t, session.WriteSignature(0, signature, &logger))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, signature.Encode(), written)
}

func TestWriteSignatureSuffixesMultipleMessages(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 2)
	first := []byte("first")
	second := []byte("second")
	signature := signTestMessage(t, f, first)

	path := filepath.Join(t.TempDir(), "signature_out.bin")
	session := &Session{Suite: f.suite, Messages: [][]byte{first, second}, Signature: path}
	require.NoError(t, session.WriteSignature(1, signature, io.Discard))

	written, err := os.ReadFile(path + ".2")
	require.NoError(t, err)
	assert.Equal(t, signature.Encode(), written)
}

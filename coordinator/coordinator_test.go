package coordinator

import (
	"bufio"
	"bytes"
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/ciphersuite"
	"github.com/bartke/frost-ceremony/messages"
	"github.com/bartke/frost-ceremony/party"
)

// fixture holds a dealt signer group with everything a test ceremony needs.
type fixture struct {
	suite       ciphersuite.Suite
	pkp         *frost.PublicKeyPackage
	keyPackages map[party.ID]*frost.KeyPackage
	ids         party.IDSlice
}

func newFixture(t *testing.T, suite ciphersuite.Suite, threshold, numSigners uint16) *fixture {
	t.Helper()

	shares, pkp, err := frost.DealKeys(suite, nil, threshold, numSigners)
	require.NoError(t, err)

	f := &fixture{
		suite:       suite,
		pkp:         pkp,
		keyPackages: make(map[party.ID]*frost.KeyPackage),
	}
	for _, share := range shares {
		kp, err := share.Promote()
		require.NoError(t, err)
		f.keyPackages[kp.Identifier] = kp
		f.ids = append(f.ids, kp.Identifier)
	}
	f.ids.Sort()
	return f
}

func (f *fixture) commitments(t *testing.T, ids ...party.ID) (map[party.ID]*frost.SigningCommitments, map[party.ID]*frost.SigningNonces) {
	t.Helper()
	commitments := make(map[party.ID]*frost.SigningCommitments, len(ids))
	nonces := make(map[party.ID]*frost.SigningNonces, len(ids))
	for _, id := range ids {
		n, c, err := frost.Commit(f.suite, f.keyPackages[id].SecretShare)
		require.NoError(t, err)
		commitments[id] = c
		nonces[id] = n
	}
	return commitments, nonces
}

func TestCommitmentRegistry(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 3)
	registry := newCommitmentRegistry(f.pkp)

	commitments, _ := f.commitments(t, f.ids[0], f.ids[1])

	require.NoError(t, registry.add(&messages.IdentifiedCommitments{
		Identifier:  f.ids[0],
		Commitments: commitments[f.ids[0]],
	}))
	assert.EqualValues(t, 1, registry.count())

	// An unknown identifier is rejected before any state mutation.
	outsider, err := party.FromIndex(f.suite, 9)
	require.NoError(t, err)
	err = registry.add(&messages.IdentifiedCommitments{
		Identifier:  outsider,
		Commitments: commitments[f.ids[1]],
	})
	var unknown UnknownSignerError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, outsider, unknown.ID)
	assert.EqualValues(t, 1, registry.count())

	// A duplicate claim leaves the original entry untouched.
	err = registry.add(&messages.IdentifiedCommitments{
		Identifier:  f.ids[0],
		Commitments: commitments[f.ids[1]],
	})
	var duplicate DuplicateSignerError
	require.ErrorAs(t, err, &duplicate)
	assert.Equal(t, f.ids[0], duplicate.ID)
	assert.EqualValues(t, 1, registry.count())
	assert.True(t, registry.commitments[f.ids[0]].Equal(commitments[f.ids[0]]))
}

// scriptCeremony appends one full ceremony's worth of console input for the
// given signers: their commitment lines followed by their signature shares
// in identifier order.
func scriptCeremony(t *testing.T, f *fixture, input *bytes.Buffer, message []byte, ids ...party.ID) {
	t.Helper()

	commitments, nonces := f.commitments(t, ids...)
	for _, id := range ids {
		require.NoError(t, messages.Write(input, messages.NewCommitments(id, commitments[id])))
	}

	// The signing package the coordinator will build is deterministic, so
	// the shares can be computed up front.
	sp := frost.NewSigningPackage(f.suite, commitments, message)
	for _, id := range sp.SortedIDs() {
		share, err := frost.Sign(sp, nonces[id], f.keyPackages[id])
		require.NoError(t, err)
		require.NoError(t, messages.Write(input, messages.NewSignatureShare(share)))
	}
}

func consoleSession(f *fixture, numSigners uint16, msgs ...[]byte) *Session {
	return &Session{
		Suite:            f.suite,
		CLI:              true,
		NumSigners:       numSigners,
		PublicKeyPackage: f.pkp,
		Messages:         msgs,
	}
}

func TestConsoleCeremony(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 3)
	message := []byte("Hello")

	var input bytes.Buffer
	scriptCeremony(t, f, &input, message, f.ids[0], f.ids[1])

	var output bytes.Buffer
	session := consoleSession(f, 2, message)
	comms := NewCLIComms(bufio.NewReader(&input), &output, f.pkp)
	c := New(session, comms, &output)

	signatures, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, signatures, 1)
	assert.Equal(t, StateDone, c.State())

	encoded := signatures[0].Encode()
	require.Len(t, encoded, 64)
	assert.True(t, ed25519.Verify(f.pkp.GroupKey.Encode(), message, encoded))
	assert.Contains(t, output.String(), "Group signature:")
}

func TestConsoleCeremonyPerMessage(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 3)
	first := []byte("first message")
	second := []byte("second message")

	// Each message runs a full ceremony with fresh commitments.
	var input bytes.Buffer
	scriptCeremony(t, f, &input, first, f.ids[0], f.ids[1])
	scriptCeremony(t, f, &input, second, f.ids[1], f.ids[2])

	var output bytes.Buffer
	session := consoleSession(f, 2, first, second)
	c := New(session, NewCLIComms(bufio.NewReader(&input), &output, f.pkp), &output)

	signatures, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, signatures, 2)
	assert.True(t, ed25519.Verify(f.pkp.GroupKey.Encode(), first, signatures[0].Encode()))
	assert.True(t, ed25519.Verify(f.pkp.GroupKey.Encode(), second, signatures[1].Encode()))
}

func TestConsoleRejectsUnknownSigner(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 3)
	message := []byte("Hello")

	outsider, err := party.FromIndex(f.suite, 9)
	require.NoError(t, err)
	commitments, _ := f.commitments(t, f.ids[0])

	var input bytes.Buffer
	require.NoError(t, messages.Write(&input, messages.NewCommitments(outsider, commitments[f.ids[0]])))

	var output bytes.Buffer
	c := New(consoleSession(f, 2, message), NewCLIComms(bufio.NewReader(&input), &output, f.pkp), &output)

	_, err = c.Run(context.Background())
	var unknown UnknownSignerError
	assert.ErrorAs(t, err, &unknown)
	assert.Equal(t, StateAborted, c.State())
}

func TestConsoleRejectsDuplicateSigner(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 3)
	message := []byte("Hello")

	commitments, _ := f.commitments(t, f.ids[0])

	var input bytes.Buffer
	m := messages.NewCommitments(f.ids[0], commitments[f.ids[0]])
	require.NoError(t, messages.Write(&input, m))
	require.NoError(t, messages.Write(&input, m))

	var output bytes.Buffer
	c := New(consoleSession(f, 2, message), NewCLIComms(bufio.NewReader(&input), &output, f.pkp), &output)

	_, err := c.Run(context.Background())
	var duplicate DuplicateSignerError
	assert.ErrorAs(t, err, &duplicate)
}

func TestConsoleRejectsUnexpectedMessage(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 3)
	message := []byte("Hello")

	// A signature share has no business in round one.
	share := &frost.SignatureShare{Suite: f.suite, Share: f.suite.H3([]byte("share"))}
	var input bytes.Buffer
	require.NoError(t, messages.Write(&input, messages.NewSignatureShare(share)))

	var output bytes.Buffer
	c := New(consoleSession(f, 2, message), NewCLIComms(bufio.NewReader(&input), &output, f.pkp), &output)

	_, err := c.Run(context.Background())
	assert.ErrorIs(t, err, messages.ErrUnexpectedMessage)
}

func TestConsoleAbortsOnTamperedShare(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 3)
	message := []byte("Hello")

	commitments, nonces := f.commitments(t, f.ids[0], f.ids[1])
	var input bytes.Buffer
	for _, id := range []party.ID{f.ids[0], f.ids[1]} {
		require.NoError(t, messages.Write(&input, messages.NewCommitments(id, commitments[id])))
	}
	sp := frost.NewSigningPackage(f.suite, commitments, message)
	for i, id := range sp.SortedIDs() {
		share, err := frost.Sign(sp, nonces[id], f.keyPackages[id])
		require.NoError(t, err)
		if i == 0 {
			// Corrupt the first share in transit.
			share = &frost.SignatureShare{Suite: f.suite, Share: f.suite.H3([]byte("garbage"))}
		}
		require.NoError(t, messages.Write(&input, messages.NewSignatureShare(share)))
	}

	var output bytes.Buffer
	c := New(consoleSession(f, 2, message), NewCLIComms(bufio.NewReader(&input), &output, f.pkp), &output)

	_, err := c.Run(context.Background())
	assert.ErrorIs(t, err, frost.ErrInvalidSignature)
	assert.Equal(t, StateAborted, c.State())
}

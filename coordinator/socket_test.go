package coordinator

import (
	"bufio"
	"context"
	"crypto/ed25519"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/ciphersuite"
	"github.com/bartke/frost-ceremony/messages"
	"github.com/bartke/frost-ceremony/participant"
	"github.com/bartke/frost-ceremony/party"
)

type runResult struct {
	signatures []*frost.Signature
	err        error
}

// startSocketCoordinator binds a coordinator to an ephemeral loopback port
// and runs the ceremony in the background.
func startSocketCoordinator(t *testing.T, f *fixture, numSigners uint16, message []byte, signaturePath string) (*SocketComms, uint16, chan runResult) {
	t.Helper()

	session := &Session{
		Suite:            f.suite,
		NumSigners:       numSigners,
		PublicKeyPackage: f.pkp,
		Messages:         [][]byte{message},
		Signature:        signaturePath,
		RoundTimeout:     10 * time.Second,
	}
	comms, err := NewSocketComms("127.0.0.1", 0, numSigners, f.pkp, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { comms.Close() })

	port := uint16(comms.Addr().(*net.TCPAddr).Port)

	results := make(chan runResult, 1)
	go func() {
		signatures, err := New(session, comms, io.Discard).Run(context.Background())
		results <- runResult{signatures, err}
	}()
	return comms, port, results
}

func runSocketParticipant(t *testing.T, f *fixture, id party.ID, port uint16) chan error {
	t.Helper()

	errs := make(chan error, 1)
	go func() {
		comms, err := participant.NewSocketComms(f.suite, "127.0.0.1", port)
		if err != nil {
			errs <- err
			return
		}
		defer comms.Close()
		errs <- participant.New(f.keyPackages[id], comms, io.Discard).Run(context.Background())
	}()
	return errs
}

func TestSocketCeremony(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 3)
	message := []byte("Hello")
	signaturePath := filepath.Join(t.TempDir(), "signature_out.bin")

	_, port, results := startSocketCoordinator(t, f, 2, message, signaturePath)

	first := runSocketParticipant(t, f, f.ids[0], port)
	second := runSocketParticipant(t, f, f.ids[1], port)

	result := <-results
	require.NoError(t, result.err)
	require.Len(t, result.signatures, 1)
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	written, err := os.ReadFile(signaturePath)
	require.NoError(t, err)
	require.Len(t, written, 64)
	assert.True(t, ed25519.Verify(f.pkp.GroupKey.Encode(), message, written))
}

// dialRaw opens a raw participant connection driven directly by the test.
func dialRaw(t *testing.T, port uint16) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port))))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, bufio.NewReader(conn)
}

func TestSocketDropsRejectedClaimsAndContinues(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 3)
	message := []byte("Hello")

	_, port, results := startSocketCoordinator(t, f, 2, message, "")

	commitments, nonces := f.commitments(t, f.ids[0], f.ids[1])

	// First signer joins.
	conn1, reader1 := dialRaw(t, port)
	require.NoError(t, messages.Write(conn1, messages.NewCommitments(f.ids[0], commitments[f.ids[0]])))

	// Give the coordinator time to bind the first claim.
	time.Sleep(200 * time.Millisecond)

	// A second connection claiming the same identifier is dropped.
	dupConn, dupReader := dialRaw(t, port)
	dupCommitments, _ := f.commitments(t, f.ids[0])
	require.NoError(t, messages.Write(dupConn, messages.NewCommitments(f.ids[0], dupCommitments[f.ids[0]])))
	dupConn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err := dupReader.ReadByte()
	assert.ErrorIs(t, err, io.EOF, "duplicate claim should have its connection closed")

	// So is a connection with an identifier outside the group.
	outsider, err := party.FromIndex(f.suite, 9)
	require.NoError(t, err)
	rogueConn, rogueReader := dialRaw(t, port)
	require.NoError(t, messages.Write(rogueConn, messages.NewCommitments(outsider, dupCommitments[f.ids[0]])))
	rogueConn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = rogueReader.ReadByte()
	assert.ErrorIs(t, err, io.EOF, "unknown signer should have its connection closed")

	// The ceremony still completes with a distinct second signer.
	conn2, reader2 := dialRaw(t, port)
	require.NoError(t, messages.Write(conn2, messages.NewCommitments(f.ids[1], commitments[f.ids[1]])))

	var sp *frost.SigningPackage
	for _, reader := range []*bufio.Reader{reader1, reader2} {
		m, err := messages.Read(reader, f.suite)
		require.NoError(t, err)
		require.Equal(t, messages.MessageTypeSigningPackage, m.Type)
		sp = m.SigningPackage
	}

	for i, id := range []party.ID{f.ids[0], f.ids[1]} {
		share, err := frost.Sign(sp, nonces[id], f.keyPackages[id])
		require.NoError(t, err)
		conn := []net.Conn{conn1, conn2}[i]
		require.NoError(t, messages.Write(conn, messages.NewSignatureShare(share)))
	}

	result := <-results
	require.NoError(t, result.err)
	require.Len(t, result.signatures, 1)
	assert.True(t, ed25519.Verify(f.pkp.GroupKey.Encode(), message, result.signatures[0].Encode()))
}

func TestSocketRoundTimeout(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 3)

	session := &Session{
		Suite:            f.suite,
		NumSigners:       2,
		PublicKeyPackage: f.pkp,
		Messages:         [][]byte{[]byte("Hello")},
		RoundTimeout:     100 * time.Millisecond,
	}
	comms, err := NewSocketComms("127.0.0.1", 0, 2, f.pkp, io.Discard)
	require.NoError(t, err)
	defer comms.Close()

	c := New(session, comms, io.Discard)
	_, err = c.Run(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, StateAborted, c.State())
}

func TestSocketCloseJoinsAllTasks(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 3)

	comms, err := NewSocketComms("127.0.0.1", 0, 2, f.pkp, io.Discard)
	require.NoError(t, err)
	port := uint16(comms.Addr().(*net.TCPAddr).Port)

	// An idle connected participant must not keep Close from returning.
	conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port))))
	require.NoError(t, err)
	defer conn.Close()
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		comms.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not join the transport tasks")
	}
}

func TestSocketAbortsOnMidCeremonyDisconnect(t *testing.T) {
	f := newFixture(t, ciphersuite.Ed25519(), 2, 3)
	message := []byte("Hello")

	_, port, results := startSocketCoordinator(t, f, 2, message, "")

	commitments, _ := f.commitments(t, f.ids[0], f.ids[1])

	conn1, _ := dialRaw(t, port)
	require.NoError(t, messages.Write(conn1, messages.NewCommitments(f.ids[0], commitments[f.ids[0]])))
	conn2, _ := dialRaw(t, port)
	require.NoError(t, messages.Write(conn2, messages.NewCommitments(f.ids[1], commitments[f.ids[1]])))

	// A bound participant going away mid-ceremony is fatal.
	time.Sleep(200 * time.Millisecond)
	conn1.Close()

	result := <-results
	assert.ErrorIs(t, result.err, messages.ErrTransport)
}

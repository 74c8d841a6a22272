package participant

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/ciphersuite"
	"github.com/bartke/frost-ceremony/messages"
	"github.com/bartke/frost-ceremony/party"
)

// SocketComms is the TCP transport: one connection to the coordinator,
// driven synchronously by the state machine, so there is nothing left to
// join on teardown.
type SocketComms struct {
	suite  ciphersuite.Suite
	conn   net.Conn
	reader *bufio.Reader
}

// NewSocketComms connects to the coordinator at ip:port.
func NewSocketComms(suite ciphersuite.Suite, ip string, port uint16) (*SocketComms, error) {
	conn, err := net.Dial("tcp", net.JoinHostPort(ip, strconv.Itoa(int(port))))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", messages.ErrTransport, err)
	}
	return &SocketComms{suite: suite, conn: conn, reader: bufio.NewReader(conn)}, nil
}

func (s *SocketComms) SendCommitments(ctx context.Context, id party.ID, commitments *frost.SigningCommitments) error {
	s.applyDeadline(ctx)
	return messages.Write(s.conn, messages.NewCommitments(id, commitments))
}

func (s *SocketComms) GetSigningPackage(ctx context.Context) (*frost.SigningPackage, error) {
	s.applyDeadline(ctx)
	m, err := messages.Read(s.reader, s.suite)
	if err != nil {
		return nil, err
	}
	if m.Type != messages.MessageTypeSigningPackage {
		return nil, messages.ErrUnexpectedMessage
	}
	return m.SigningPackage, nil
}

func (s *SocketComms) SendSignatureShare(ctx context.Context, share *frost.SignatureShare) error {
	s.applyDeadline(ctx)
	return messages.Write(s.conn, messages.NewSignatureShare(share))
}

func (s *SocketComms) Close() error {
	return s.conn.Close()
}

// applyDeadline mirrors the context deadline, if any, onto the connection.
func (s *SocketComms) applyDeadline(ctx context.Context) {
	if deadline, ok := ctx.Deadline(); ok {
		s.conn.SetDeadline(deadline)
	} else {
		s.conn.SetDeadline(time.Time{})
	}
}

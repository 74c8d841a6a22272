package coordinator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/messages"
	"github.com/bartke/frost-ceremony/party"
)

// inbound is one decoded message (or terminal read error) from a connection,
// handed from its reader goroutine to the collector.
type inbound struct {
	conn *signerConn
	msg  *messages.Message
	err  error
}

// signerConn is an accepted participant connection. The id is bound by the
// collector when the connection's commitments are accepted; only the
// collector goroutine reads or writes it.
type signerConn struct {
	net.Conn
	id party.ID
}

// SocketComms is the TCP transport: the coordinator listens, participants
// connect, and each connection is one line-framed conversation. A reader
// goroutine per connection pushes decoded messages into a single channel
// consumed by the ceremony state machine, so all accumulator state stays on
// one goroutine.
type SocketComms struct {
	pkp    *frost.PublicKeyPackage
	logger io.Writer

	listener net.Listener
	incoming chan inbound
	done     chan struct{}

	mu       sync.Mutex
	conns    map[*signerConn]struct{}
	closed   bool
	maxConns int

	wg sync.WaitGroup

	// bound maps accepted identifiers to their connections for the
	// round-two fan-out. Collector-owned.
	bound map[party.ID]*signerConn
}

// NewSocketComms listens on ip:port and starts accepting participant
// connections. At most numSigners connections are live at a time; later
// ones are dropped until a slot frees up.
func NewSocketComms(ip string, port uint16, numSigners uint16, pkp *frost.PublicKeyPackage, logger io.Writer) (*SocketComms, error) {
	listener, err := net.Listen("tcp", net.JoinHostPort(ip, strconv.Itoa(int(port))))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", messages.ErrTransport, err)
	}
	s := &SocketComms{
		pkp:      pkp,
		logger:   logger,
		listener: listener,
		incoming: make(chan inbound, 64),
		done:     make(chan struct{}),
		conns:    make(map[*signerConn]struct{}),
		maxConns: int(numSigners),
		bound:    make(map[party.ID]*signerConn),
	}
	fmt.Fprintf(logger, "Listening on %s\n", listener.Addr())
	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Addr returns the bound listener address.
func (s *SocketComms) Addr() net.Addr { return s.listener.Addr() }

func (s *SocketComms) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.closed || len(s.conns) >= s.maxConns {
			s.mu.Unlock()
			conn.Close()
			continue
		}
		sc := &signerConn{Conn: conn}
		s.conns[sc] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.readLoop(sc)
	}
}

func (s *SocketComms) readLoop(sc *signerConn) {
	defer s.wg.Done()
	reader := bufio.NewReader(sc)
	for {
		m, err := messages.Read(reader, s.pkp.Suite)
		select {
		case s.incoming <- inbound{conn: sc, msg: m, err: err}:
		case <-s.done:
			return
		}
		if err != nil {
			return
		}
	}
}

// dropConn closes a connection and frees its accept slot.
func (s *SocketComms) dropConn(sc *signerConn) {
	sc.Close()
	s.mu.Lock()
	delete(s.conns, sc)
	s.mu.Unlock()
}

func (s *SocketComms) GetSigningCommitments(ctx context.Context, numSigners uint16) (map[party.ID]*frost.SigningCommitments, error) {
	registry := newCommitmentRegistry(s.pkp)
	for registry.count() < numSigners {
		select {
		case <-ctx.Done():
			return nil, roundErr(ctx.Err())
		case inb := <-s.incoming:
			if inb.err != nil {
				if inb.conn.id != "" {
					return nil, fmt.Errorf("participant %s: %w", inb.conn.id, inb.err)
				}
				// An unidentified connection going away is not fatal.
				s.dropConn(inb.conn)
				continue
			}
			if inb.msg.Type != messages.MessageTypeCommitments {
				return nil, messages.ErrUnexpectedMessage
			}
			ic := inb.msg.Commitments
			if err := registry.add(ic); err != nil {
				// A rejected claim costs only its connection; the
				// ceremony keeps waiting for the remaining signers.
				fmt.Fprintf(s.logger, "Rejected connection: %v\n", err)
				s.dropConn(inb.conn)
				continue
			}
			inb.conn.id = ic.Identifier
			s.bound[ic.Identifier] = inb.conn
			fmt.Fprintf(s.logger, "Participant %s joined (%d/%d)\n",
				ic.Identifier, registry.count(), numSigners)
		}
	}
	return registry.commitments, nil
}

func (s *SocketComms) SendSigningPackageAndGetShares(ctx context.Context, sp *frost.SigningPackage) (map[party.ID]*frost.SignatureShare, error) {
	m := messages.NewSigningPackage(sp)
	for id, sc := range s.bound {
		if err := messages.Write(sc, m); err != nil {
			return nil, fmt.Errorf("broadcast to %s: %w", id, err)
		}
	}

	shares := make(map[party.ID]*frost.SignatureShare, len(s.bound))
	for len(shares) < len(s.bound) {
		select {
		case <-ctx.Done():
			return nil, roundErr(ctx.Err())
		case inb := <-s.incoming:
			if inb.conn.id == "" {
				// Traffic from a connection that never joined the
				// ceremony.
				s.dropConn(inb.conn)
				continue
			}
			if inb.err != nil {
				return nil, fmt.Errorf("participant %s: %w", inb.conn.id, inb.err)
			}
			if inb.msg.Type != messages.MessageTypeSignatureShare {
				return nil, messages.ErrUnexpectedMessage
			}
			if _, ok := shares[inb.conn.id]; ok {
				return nil, DuplicateSignerError{ID: inb.conn.id}
			}
			shares[inb.conn.id] = inb.msg.SignatureShare
			fmt.Fprintf(s.logger, "Received signature share from %s (%d/%d)\n",
				inb.conn.id, len(shares), len(s.bound))
		}
	}
	return shares, nil
}

// Close tears the transport down: the listener and every connection are
// closed and all reader goroutines are joined before Close returns.
func (s *SocketComms) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.listener.Close()
	for sc := range s.conns {
		sc.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// roundErr maps a context cancellation to the ceremony error taxonomy.
func roundErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", messages.ErrTransport, err)
}

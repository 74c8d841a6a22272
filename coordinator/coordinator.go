// Package coordinator drives the coordinator side of a signing ceremony:
// collect one commitment per signer, broadcast the signing package, collect
// the signature shares and aggregate them into the group signature. The
// transport is abstracted behind the Comms interface with a console and a
// TCP socket implementation.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/messages"
	"github.com/bartke/frost-ceremony/party"
)

// ErrTimeout reports a round that did not complete within the configured
// bound.
var ErrTimeout = errors.New("round timed out")

// UnknownSignerError reports a commitment from an identifier that is not
// listed in the public key package.
type UnknownSignerError struct {
	ID party.ID
}

func (e UnknownSignerError) Error() string {
	return fmt.Sprintf("unknown signer %s", e.ID)
}

// DuplicateSignerError reports a second contribution from an identifier that
// already contributed in the current round.
type DuplicateSignerError struct {
	ID party.ID
}

func (e DuplicateSignerError) Error() string {
	return fmt.Sprintf("duplicate signer %s", e.ID)
}

// State is the coordinator's position in the ceremony.
type State int

const (
	StateInit State = iota
	StateAwaitParticipants
	StateBuildSigningPackage
	StateAwaitShares
	StateAggregate
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateAwaitParticipants:
		return "AWAIT_PARTICIPANTS"
	case StateBuildSigningPackage:
		return "BUILD_SIGNING_PACKAGE"
	case StateAwaitShares:
		return "AWAIT_SHARES"
	case StateAggregate:
		return "AGGREGATE"
	case StateDone:
		return "DONE"
	case StateAborted:
		return "ABORT"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// commitmentRegistry accumulates round-one commitments keyed by identifier,
// enforcing that every contributor is a known signer and contributes once.
type commitmentRegistry struct {
	pkp         *frost.PublicKeyPackage
	commitments map[party.ID]*frost.SigningCommitments
}

func newCommitmentRegistry(pkp *frost.PublicKeyPackage) *commitmentRegistry {
	return &commitmentRegistry{
		pkp:         pkp,
		commitments: make(map[party.ID]*frost.SigningCommitments),
	}
}

// add validates and records one contribution. On error the registry is
// unchanged.
func (r *commitmentRegistry) add(ic *messages.IdentifiedCommitments) error {
	if _, ok := r.pkp.VerifyingShares[ic.Identifier]; !ok {
		return UnknownSignerError{ID: ic.Identifier}
	}
	if _, ok := r.commitments[ic.Identifier]; ok {
		return DuplicateSignerError{ID: ic.Identifier}
	}
	r.commitments[ic.Identifier] = ic.Commitments
	return nil
}

func (r *commitmentRegistry) count() uint16 {
	return uint16(len(r.commitments))
}

// Coordinator runs the ceremony over a transport.
type Coordinator struct {
	session *Session
	comms   Comms
	logger  io.Writer
	state   State
}

// New wires a session to a transport.
func New(session *Session, comms Comms, logger io.Writer) *Coordinator {
	return &Coordinator{session: session, comms: comms, logger: logger, state: StateInit}
}

// State returns the current ceremony state.
func (c *Coordinator) State() State { return c.state }

// Run drives one ceremony per configured message and writes each resulting
// signature to the configured sink. Commitments are never reused across
// messages: every ceremony runs all rounds afresh.
func (c *Coordinator) Run(ctx context.Context) ([]*frost.Signature, error) {
	signatures := make([]*frost.Signature, 0, len(c.session.Messages))
	for i, message := range c.session.Messages {
		signature, err := c.runCeremony(ctx, message)
		if err != nil {
			c.state = StateAborted
			return nil, err
		}
		if err := c.session.WriteSignature(i, signature, c.logger); err != nil {
			c.state = StateAborted
			return nil, err
		}
		signatures = append(signatures, signature)
	}
	return signatures, nil
}

func (c *Coordinator) runCeremony(ctx context.Context, message []byte) (*frost.Signature, error) {
	c.state = StateAwaitParticipants
	roundCtx, cancel := c.roundContext(ctx)
	commitments, err := c.comms.GetSigningCommitments(roundCtx, c.session.NumSigners)
	cancel()
	if err != nil {
		return nil, err
	}

	c.state = StateBuildSigningPackage
	sp := frost.NewSigningPackage(c.session.Suite, commitments, message)

	c.state = StateAwaitShares
	roundCtx, cancel = c.roundContext(ctx)
	shares, err := c.comms.SendSigningPackageAndGetShares(roundCtx, sp)
	cancel()
	if err != nil {
		return nil, err
	}

	c.state = StateAggregate
	signature, err := frost.Aggregate(sp, shares, c.session.PublicKeyPackage)
	if err != nil {
		return nil, fmt.Errorf("aggregation failed: %w", err)
	}

	c.state = StateDone
	return signature, nil
}

// roundContext bounds a single collection round when a timeout is set.
func (c *Coordinator) roundContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.session.RoundTimeout > 0 {
		return context.WithTimeout(ctx, c.session.RoundTimeout)
	}
	return context.WithCancel(ctx)
}

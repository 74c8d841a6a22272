// Package participant drives the signer side of a signing ceremony: commit
// to fresh nonces, wait for the coordinator's signing package, and answer
// with a signature share. The transport is abstracted behind the Comms
// interface with a console and a TCP socket implementation.
package participant

import (
	"context"
	"errors"
	"fmt"
	"io"

	frost "github.com/bartke/frost-ceremony"
)

// ErrPackageMismatch reports a signing package that omits the participant
// or lists different commitments than the ones it sent in round one.
var ErrPackageMismatch = errors.New("signing package does not match the sent commitments")

// State is the participant's position in the ceremony.
type State int

const (
	StateInit State = iota
	StateCommit
	StateAwaitPackage
	StateSign
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateCommit:
		return "COMMIT"
	case StateAwaitPackage:
		return "AWAIT_PACKAGE"
	case StateSign:
		return "SIGN"
	case StateDone:
		return "DONE"
	case StateAborted:
		return "ABORT"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Participant runs the ceremony over a transport.
type Participant struct {
	keyPackage *frost.KeyPackage
	comms      Comms
	logger     io.Writer
	state      State
}

// New wires a key package to a transport.
func New(keyPackage *frost.KeyPackage, comms Comms, logger io.Writer) *Participant {
	return &Participant{keyPackage: keyPackage, comms: comms, logger: logger, state: StateInit}
}

// State returns the current ceremony state.
func (p *Participant) State() State { return p.state }

// Run executes one ceremony: commit, await the signing package, sign. The
// nonces live only for the duration of the call and are destroyed by the
// signing step.
func (p *Participant) Run(ctx context.Context) error {
	if err := p.run(ctx); err != nil {
		p.state = StateAborted
		return err
	}
	return nil
}

func (p *Participant) run(ctx context.Context) error {
	kp := p.keyPackage

	p.state = StateCommit
	nonces, commitments, err := frost.Commit(kp.Suite, kp.SecretShare)
	if err != nil {
		return err
	}
	if err := p.comms.SendCommitments(ctx, kp.Identifier, commitments); err != nil {
		return err
	}

	p.state = StateAwaitPackage
	sp, err := p.comms.GetSigningPackage(ctx)
	if err != nil {
		return err
	}
	listed, ok := sp.Commitments[kp.Identifier]
	if !ok || !listed.Equal(commitments) {
		return ErrPackageMismatch
	}

	p.state = StateSign
	share, err := frost.Sign(sp, nonces, kp)
	if err != nil {
		return err
	}
	if err := p.comms.SendSignatureShare(ctx, share); err != nil {
		return err
	}

	p.state = StateDone
	fmt.Fprintln(p.logger, "Signature share sent, ceremony complete.")
	return nil
}

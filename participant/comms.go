package participant

import (
	"context"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/party"
)

// Comms abstracts the transport a participant talks to the coordinator
// over.
type Comms interface {
	// SendCommitments delivers the participant's identified round-one
	// commitments to the coordinator.
	SendCommitments(ctx context.Context, id party.ID, commitments *frost.SigningCommitments) error

	// GetSigningPackage blocks until the coordinator's round-two signing
	// package arrives.
	GetSigningPackage(ctx context.Context) (*frost.SigningPackage, error)

	// SendSignatureShare delivers the participant's signature share to
	// the coordinator.
	SendSignatureShare(ctx context.Context, share *frost.SignatureShare) error

	// Close releases the transport.
	Close() error
}

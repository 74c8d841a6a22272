package coordinator

import (
	"context"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/party"
)

// Comms abstracts the transport the coordinator collects rounds over. The
// same state machine runs over a TCP socket dispatcher or a human-mediated
// console.
type Comms interface {
	// GetSigningCommitments blocks until numSigners distinct valid
	// commitments have arrived and returns them keyed by identifier.
	GetSigningCommitments(ctx context.Context, numSigners uint16) (map[party.ID]*frost.SigningCommitments, error)

	// SendSigningPackageAndGetShares broadcasts the signing package to
	// every participant and blocks until one signature share per signer
	// has arrived.
	SendSigningPackageAndGetShares(ctx context.Context, sp *frost.SigningPackage) (map[party.ID]*frost.SignatureShare, error)

	// Close releases the transport. It must be safe to call after a
	// failed ceremony and must leave no running tasks behind.
	Close() error
}

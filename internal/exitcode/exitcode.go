// Package exitcode maps ceremony errors to the stable process exit codes
// of the binaries.
package exitcode

import (
	"context"
	"errors"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/coordinator"
	"github.com/bartke/frost-ceremony/messages"
	"github.com/bartke/frost-ceremony/participant"
)

const (
	Success   = 0
	Config    = 1
	Decode    = 2
	Protocol  = 3
	Crypto    = 4
	Transport = 5
	Timeout   = 7
)

// For classifies err by its ceremony error kind. Anything unrecognized is
// treated as a configuration problem.
func For(err error) int {
	var unknownSigner coordinator.UnknownSignerError
	var duplicateSigner coordinator.DuplicateSignerError
	switch {
	case err == nil:
		return Success
	case errors.Is(err, coordinator.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case errors.As(err, &unknownSigner),
		errors.As(err, &duplicateSigner),
		errors.Is(err, messages.ErrUnexpectedMessage),
		errors.Is(err, participant.ErrPackageMismatch):
		return Protocol
	case errors.Is(err, frost.ErrInvalidSignature):
		return Crypto
	case errors.Is(err, messages.ErrInvalidMessage):
		return Decode
	case errors.Is(err, messages.ErrTransport):
		return Transport
	default:
		return Config
	}
}

package coordinator

import (
	"bufio"
	"context"
	"fmt"
	"io"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/messages"
	"github.com/bartke/frost-ceremony/party"
)

// CLIComms is the console transport: the human relays every protocol
// message by pasting one encoded line per record. Identifier accounting is
// the same as on the socket transport, but any rejected line aborts the
// ceremony since there is no connection to drop.
type CLIComms struct {
	input  *bufio.Reader
	output io.Writer
	pkp    *frost.PublicKeyPackage
}

// NewCLIComms builds a console transport over the given streams.
func NewCLIComms(input *bufio.Reader, output io.Writer, pkp *frost.PublicKeyPackage) *CLIComms {
	return &CLIComms{input: input, output: output, pkp: pkp}
}

func (c *CLIComms) GetSigningCommitments(_ context.Context, numSigners uint16) (map[party.ID]*frost.SigningCommitments, error) {
	registry := newCommitmentRegistry(c.pkp)
	fmt.Fprintf(c.output, "Paste the JSON-encoded commitments of all %d participants, one per line:\n", numSigners)
	for registry.count() < numSigners {
		m, err := messages.Read(c.input, c.pkp.Suite)
		if err != nil {
			return nil, err
		}
		if m.Type != messages.MessageTypeCommitments {
			return nil, messages.ErrUnexpectedMessage
		}
		if err := registry.add(m.Commitments); err != nil {
			return nil, err
		}
		fmt.Fprintf(c.output, "Recorded commitments of participant %s (%d/%d)\n",
			m.Commitments.Identifier, registry.count(), numSigners)
	}
	return registry.commitments, nil
}

func (c *CLIComms) SendSigningPackageAndGetShares(_ context.Context, sp *frost.SigningPackage) (map[party.ID]*frost.SignatureShare, error) {
	fmt.Fprintln(c.output, "Send the following signing package to every participant:")
	if err := messages.Write(c.output, messages.NewSigningPackage(sp)); err != nil {
		return nil, err
	}

	ids := sp.SortedIDs()
	shares := make(map[party.ID]*frost.SignatureShare, len(ids))
	for _, id := range ids {
		fmt.Fprintf(c.output, "Paste the JSON-encoded signature share of participant %s:\n", id)
		m, err := messages.Read(c.input, sp.Suite)
		if err != nil {
			return nil, err
		}
		if m.Type != messages.MessageTypeSignatureShare {
			return nil, messages.ErrUnexpectedMessage
		}
		shares[id] = m.SignatureShare
	}
	return shares, nil
}

func (c *CLIComms) Close() error { return nil }

package participant

import (
	"bufio"
	"context"
	"fmt"
	"io"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/ciphersuite"
	"github.com/bartke/frost-ceremony/messages"
	"github.com/bartke/frost-ceremony/party"
)

// CLIComms is the console transport: outgoing messages are printed for the
// user to relay, and the signing package is pasted back in.
type CLIComms struct {
	suite  ciphersuite.Suite
	input  *bufio.Reader
	output io.Writer
}

// NewCLIComms builds a console transport over the given streams.
func NewCLIComms(suite ciphersuite.Suite, input *bufio.Reader, output io.Writer) *CLIComms {
	return &CLIComms{suite: suite, input: input, output: output}
}

func (c *CLIComms) SendCommitments(_ context.Context, id party.ID, commitments *frost.SigningCommitments) error {
	fmt.Fprintln(c.output, "Send the following commitments to the coordinator:")
	return messages.Write(c.output, messages.NewCommitments(id, commitments))
}

func (c *CLIComms) GetSigningPackage(_ context.Context) (*frost.SigningPackage, error) {
	fmt.Fprintln(c.output, "Paste the JSON-encoded signing package:")
	m, err := messages.Read(c.input, c.suite)
	if err != nil {
		return nil, err
	}
	if m.Type != messages.MessageTypeSigningPackage {
		return nil, messages.ErrUnexpectedMessage
	}
	return m.SigningPackage, nil
}

func (c *CLIComms) SendSignatureShare(_ context.Context, share *frost.SignatureShare) error {
	fmt.Fprintln(c.output, "Send the following signature share to the coordinator:")
	return messages.Write(c.output, messages.NewSignatureShare(share))
}

func (c *CLIComms) Close() error { return nil }

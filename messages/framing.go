package messages

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/bartke/frost-ceremony/ciphersuite"
)

// ErrTransport reports an I/O failure or unexpected end of stream on the
// channel carrying protocol messages.
var ErrTransport = errors.New("transport failure")

// Write frames m as one newline-terminated record on w.
func Write(w io.Writer, m *Message) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

// Read consumes one newline-terminated record from r and decodes it. Blank
// lines are skipped. A final record without a trailing newline is still
// decoded; an end of stream with no record left is a transport error.
func Read(r *bufio.Reader, suite ciphersuite.Suite) (*Message, error) {
	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(bytes.TrimSpace(line)) > 0 {
				// final record without a trailing newline
			} else {
				return nil, fmt.Errorf("%w: %v", ErrTransport, err)
			}
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		return Decode(suite, line)
	}
}

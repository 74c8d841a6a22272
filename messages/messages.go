// Package messages defines the protocol envelope exchanged between the
// ceremony roles: a tagged-union Message carrying either a participant's
// identified commitments, the coordinator's signing package, or a signature
// share, together with its line-oriented framing over byte streams.
package messages

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	frost "github.com/bartke/frost-ceremony"
	"github.com/bartke/frost-ceremony/ciphersuite"
	"github.com/bartke/frost-ceremony/party"
)

// MessageType s must be increasing.
type MessageType uint8

const (
	MessageTypeNone MessageType = iota
	MessageTypeCommitments
	MessageTypeSigningPackage
	MessageTypeSignatureShare
)

var (
	// ErrInvalidMessage reports an envelope that fails to decode: bad
	// framing, an unknown type tag, or a body that does not match its tag.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrUnexpectedMessage reports a well-formed message whose variant is
	// not permitted in the receiver's current round.
	ErrUnexpectedMessage = errors.New("unexpected message for the current round")
)

type Header struct {
	// Type is the message type
	Type MessageType
}

// IdentifiedCommitments is a participant's round-one contribution.
type IdentifiedCommitments struct {
	Identifier  party.ID
	Commitments *frost.SigningCommitments
}

// Message is the tagged union carried on the wire. Exactly one variant
// field is populated, matching the header type.
type Message struct {
	Header
	Commitments    *IdentifiedCommitments
	SigningPackage *frost.SigningPackage
	SignatureShare *frost.SignatureShare
}

// NewCommitments builds a round-one message.
func NewCommitments(id party.ID, commitments *frost.SigningCommitments) *Message {
	return &Message{
		Header: Header{Type: MessageTypeCommitments},
		Commitments: &IdentifiedCommitments{
			Identifier:  id,
			Commitments: commitments,
		},
	}
}

// NewSigningPackage builds a round-two broadcast message.
func NewSigningPackage(sp *frost.SigningPackage) *Message {
	return &Message{
		Header:         Header{Type: MessageTypeSigningPackage},
		SigningPackage: sp,
	}
}

// NewSignatureShare builds a round-two response message.
func NewSignatureShare(share *frost.SignatureShare) *Message {
	return &Message{
		Header:         Header{Type: MessageTypeSignatureShare},
		SignatureShare: share,
	}
}

type wireHeader struct {
	Type string `json:"type"`
}

type wireCommitments struct {
	Hiding  string `json:"hiding"`
	Binding string `json:"binding"`
}

type wireIdentifiedCommitments struct {
	Identifier  string          `json:"identifier"`
	Commitments wireCommitments `json:"commitments"`
}

type wireSigningPackage struct {
	Commitments map[string]wireCommitments `json:"commitments"`
	Message     string                     `json:"message"`
}

type wireSignatureShare struct {
	Share string `json:"share"`
}

type wireMessage struct {
	Header         wireHeader                 `json:"header"`
	Commitments    *wireIdentifiedCommitments `json:"commitments,omitempty"`
	SigningPackage *wireSigningPackage        `json:"signing_package,omitempty"`
	SignatureShare *wireSignatureShare        `json:"signature_share,omitempty"`
}

func encodeCommitments(sc *frost.SigningCommitments) wireCommitments {
	return wireCommitments{
		Hiding:  base64.StdEncoding.EncodeToString(sc.Hiding.Encode()),
		Binding: base64.StdEncoding.EncodeToString(sc.Binding.Encode()),
	}
}

func decodeCommitments(suite ciphersuite.Suite, w wireCommitments) (*frost.SigningCommitments, error) {
	hiding, err := decodeElement(suite, w.Hiding)
	if err != nil {
		return nil, fmt.Errorf("hiding commitment: %w", err)
	}
	binding, err := decodeElement(suite, w.Binding)
	if err != nil {
		return nil, fmt.Errorf("binding commitment: %w", err)
	}
	return &frost.SigningCommitments{Hiding: hiding, Binding: binding}, nil
}

func (m *Message) MarshalJSON() ([]byte, error) {
	w := wireMessage{
		Header: wireHeader{
			Type: base64.StdEncoding.EncodeToString([]byte{byte(m.Type)}),
		},
	}
	switch m.Type {
	case MessageTypeCommitments:
		w.Commitments = &wireIdentifiedCommitments{
			Identifier:  base64.StdEncoding.EncodeToString(m.Commitments.Identifier.Bytes()),
			Commitments: encodeCommitments(m.Commitments.Commitments),
		}
	case MessageTypeSigningPackage:
		sp := m.SigningPackage
		commitments := make(map[string]wireCommitments, len(sp.Commitments))
		for id, sc := range sp.Commitments {
			commitments[base64.StdEncoding.EncodeToString(id.Bytes())] = encodeCommitments(sc)
		}
		w.SigningPackage = &wireSigningPackage{
			Commitments: commitments,
			Message:     base64.StdEncoding.EncodeToString(sp.Message),
		}
	case MessageTypeSignatureShare:
		share := m.SignatureShare
		w.SignatureShare = &wireSignatureShare{
			Share: base64.StdEncoding.EncodeToString(share.Suite.EncodeScalar(share.Share)),
		}
	default:
		return nil, fmt.Errorf("%w: cannot encode type %d", ErrInvalidMessage, m.Type)
	}
	return json.Marshal(&w)
}

// Encode serializes the message as a single JSON object.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a single encoded Message. The suite determines the scalar
// and element widths of the embedded values.
func Decode(suite ciphersuite.Suite, data []byte) (*Message, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	typeBytes, err := base64.StdEncoding.DecodeString(w.Header.Type)
	if err != nil || len(typeBytes) != 1 {
		return nil, fmt.Errorf("%w: malformed type tag", ErrInvalidMessage)
	}

	m := &Message{Header: Header{Type: MessageType(typeBytes[0])}}
	switch m.Type {
	case MessageTypeCommitments:
		if w.Commitments == nil {
			return nil, fmt.Errorf("%w: missing commitments body", ErrInvalidMessage)
		}
		idBytes, err := base64.StdEncoding.DecodeString(w.Commitments.Identifier)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		id, err := party.FromBytes(suite, idBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		sc, err := decodeCommitments(suite, w.Commitments.Commitments)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		m.Commitments = &IdentifiedCommitments{Identifier: id, Commitments: sc}
	case MessageTypeSigningPackage:
		if w.SigningPackage == nil {
			return nil, fmt.Errorf("%w: missing signing package body", ErrInvalidMessage)
		}
		commitments := make(map[party.ID]*frost.SigningCommitments, len(w.SigningPackage.Commitments))
		for idStr, wc := range w.SigningPackage.Commitments {
			idBytes, err := base64.StdEncoding.DecodeString(idStr)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
			}
			id, err := party.FromBytes(suite, idBytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
			}
			sc, err := decodeCommitments(suite, wc)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
			}
			commitments[id] = sc
		}
		message, err := base64.StdEncoding.DecodeString(w.SigningPackage.Message)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		m.SigningPackage = frost.NewSigningPackage(suite, commitments, message)
	case MessageTypeSignatureShare:
		if w.SignatureShare == nil {
			return nil, fmt.Errorf("%w: missing signature share body", ErrInvalidMessage)
		}
		shareBytes, err := base64.StdEncoding.DecodeString(w.SignatureShare.Share)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		share, err := suite.DecodeScalar(shareBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		m.SignatureShare = &frost.SignatureShare{Suite: suite, Share: share}
	default:
		return nil, fmt.Errorf("%w: unknown type tag %d", ErrInvalidMessage, typeBytes[0])
	}
	return m, nil
}

func decodeElement(suite ciphersuite.Suite, s string) (ciphersuite.Element, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return suite.DecodeElement(b)
}

// Package ciphersuite defines the prime-order group and hash functions that
// parameterize the signing protocol, together with the two concrete suites
// this module supports: Ed25519 and Ed448.
//
// The protocol layer is written against the Suite interface so that the same
// ceremony code runs over either group. All scalar arithmetic is done on
// *big.Int values reduced modulo the group order; group elements are opaque
// Element values owned by the suite that produced them.
package ciphersuite

import (
	"fmt"
	"math/big"
)

// Suite fixes the group, the canonical encodings and the domain-separated
// hash functions H1..H5 used by the protocol.
type Suite interface {
	// Name is the lowercase suite name as it appears on the CLI and in
	// key material files, e.g. "ed25519".
	Name() string

	// ScalarSize is the length of a canonical scalar encoding in bytes.
	ScalarSize() int
	// ElementSize is the length of a canonical element encoding in bytes.
	ElementSize() int
	// SignatureSize is the length of a serialized signature: one element
	// followed by one scalar.
	SignatureSize() int

	// Order returns the prime order of the group. Callers must not
	// modify the returned value.
	Order() *big.Int

	// BaseMult returns [k]B for the group generator B.
	BaseMult(k *big.Int) Element
	// Identity returns the identity element.
	Identity() Element

	// DecodeElement parses a canonical element encoding.
	DecodeElement(b []byte) (Element, error)
	// DecodeScalar parses a canonical little-endian scalar encoding,
	// rejecting values not fully reduced modulo the group order.
	DecodeScalar(b []byte) (*big.Int, error)
	// EncodeScalar serializes k mod Order as a fixed-width little-endian
	// byte string of ScalarSize bytes.
	EncodeScalar(k *big.Int) []byte

	// H1 is the binding-factor hash, mapping to a scalar.
	H1(m ...[]byte) *big.Int
	// H2 is the challenge hash, mapping to a scalar. Its construction is
	// chosen so that aggregated signatures verify under a plain
	// RFC 8032 verifier for the suite.
	H2(m ...[]byte) *big.Int
	// H3 is the nonce-generation hash, mapping to a scalar.
	H3(m ...[]byte) *big.Int
	// H4 is the message digest used inside the binding-factor preimage.
	H4(m []byte) []byte
	// H5 is the commitment-list digest used inside the binding-factor
	// preimage.
	H5(m []byte) []byte
}

// Element is a point on the suite's curve. Implementations are immutable;
// every operation returns a fresh Element. Mixing Elements from different
// suites is a programming error.
type Element interface {
	Add(other Element) Element
	ScalarMult(k *big.Int) Element
	Negate() Element
	Equal(other Element) bool
	IsIdentity() bool
	Encode() []byte
}

// FromName resolves a suite by its CLI name.
func FromName(name string) (Suite, error) {
	switch name {
	case "ed25519":
		return Ed25519(), nil
	case "ed448":
		return Ed448(), nil
	default:
		return nil, fmt.Errorf("unknown ciphersuite %q", name)
	}
}

// decodeLittleEndian interprets b as an unsigned little-endian integer.
func decodeLittleEndian(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	return new(big.Int).SetBytes(be)
}

// encodeLittleEndian serializes v as exactly size little-endian bytes.
// v must be non-negative and fit in size bytes.
func encodeLittleEndian(v *big.Int, size int) []byte {
	be := v.Bytes()
	out := make([]byte, size)
	for i, b := range be {
		out[len(be)-1-i] = b
	}
	return out
}

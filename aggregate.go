package frost

import (
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/exp/maps"

	"github.com/bartke/frost-ceremony/ciphersuite"
	"github.com/bartke/frost-ceremony/party"
)

// ErrInvalidSignature is returned when an aggregated or received signature
// fails verification under the group key.
var ErrInvalidSignature = errors.New("invalid signature")

// SigningPackage is the coordinator's round-two broadcast: the message bytes
// plus the commitments of every selected signer. It is immutable once built;
// the commitments map must not be modified after construction.
type SigningPackage struct {
	Suite       ciphersuite.Suite
	Commitments map[party.ID]*SigningCommitments
	Message     []byte
}

// NewSigningPackage builds a signing package over the given commitments and
// message.
func NewSigningPackage(suite ciphersuite.Suite, commitments map[party.ID]*SigningCommitments, message []byte) *SigningPackage {
	return &SigningPackage{Suite: suite, Commitments: commitments, Message: message}
}

// SortedIDs returns the signer identifiers in canonical byte order.
func (sp *SigningPackage) SortedIDs() party.IDSlice {
	return party.IDSlice(maps.Keys(sp.Commitments)).Sort()
}

// encodeCommitmentList serializes the commitment list in identifier order:
// identifier || hiding || binding for every signer.
func (sp *SigningPackage) encodeCommitmentList() []byte {
	size := sp.Suite.ScalarSize() + 2*sp.Suite.ElementSize()
	b := make([]byte, 0, size*len(sp.Commitments))
	for _, id := range sp.SortedIDs() {
		sc := sp.Commitments[id]
		b = append(b, id.Bytes()...)
		b = append(b, sc.Hiding.Encode()...)
		b = append(b, sc.Binding.Encode()...)
	}
	return b
}

// bindingFactors derives the per-signer binding factors:
// rho_i = H1(groupKey || H4(msg) || H5(commitment_list) || identifier_i).
func (sp *SigningPackage) bindingFactors(groupKey ciphersuite.Element) map[party.ID]*big.Int {
	prefix := groupKey.Encode()
	prefix = append(prefix, sp.Suite.H4(sp.Message)...)
	prefix = append(prefix, sp.Suite.H5(sp.encodeCommitmentList())...)

	factors := make(map[party.ID]*big.Int, len(sp.Commitments))
	for id := range sp.Commitments {
		factors[id] = sp.Suite.H1(prefix, id.Bytes())
	}
	return factors
}

// groupCommitment computes R = sum(hiding_i + [rho_i] binding_i).
func (sp *SigningPackage) groupCommitment(factors map[party.ID]*big.Int) ciphersuite.Element {
	r := sp.Suite.Identity()
	for id, sc := range sp.Commitments {
		r = r.Add(sc.Hiding).Add(sc.Binding.ScalarMult(factors[id]))
	}
	return r
}

// challenge computes c = H2(R || groupKey || message).
func challenge(suite ciphersuite.Suite, r, groupKey ciphersuite.Element, message []byte) *big.Int {
	return suite.H2(r.Encode(), groupKey.Encode(), message)
}

// Signature is an aggregated Schnorr signature (R, z).
type Signature struct {
	Suite ciphersuite.Suite
	R     ciphersuite.Element
	Z     *big.Int
}

// Encode serializes the signature as R || z using the suite's canonical
// encodings.
func (s *Signature) Encode() []byte {
	out := make([]byte, 0, s.Suite.SignatureSize())
	out = append(out, s.R.Encode()...)
	out = append(out, s.Suite.EncodeScalar(s.Z)...)
	return out
}

// DecodeSignature parses an R || z signature encoding.
func DecodeSignature(suite ciphersuite.Suite, b []byte) (*Signature, error) {
	if len(b) != suite.SignatureSize() {
		return nil, fmt.Errorf("signature must be %d bytes, got %d", suite.SignatureSize(), len(b))
	}
	r, err := suite.DecodeElement(b[:suite.ElementSize()])
	if err != nil {
		return nil, err
	}
	z, err := suite.DecodeScalar(b[suite.ElementSize():])
	if err != nil {
		return nil, err
	}
	return &Signature{Suite: suite, R: r, Z: z}, nil
}

// Aggregate combines the signature shares into the group signature and
// verifies it under the group key. Any invalid share makes the aggregate
// fail verification; following the protocol design the error does not
// identify which share was at fault.
func Aggregate(sp *SigningPackage, shares map[party.ID]*SignatureShare, pkp *PublicKeyPackage) (*Signature, error) {
	if len(shares) != len(sp.Commitments) {
		return nil, fmt.Errorf("have %d signature shares for %d commitments", len(shares), len(sp.Commitments))
	}
	for id := range shares {
		if _, ok := sp.Commitments[id]; !ok {
			return nil, fmt.Errorf("signature share from %s has no matching commitment", id)
		}
	}

	suite := sp.Suite
	factors := sp.bindingFactors(pkp.GroupKey)
	r := sp.groupCommitment(factors)

	z := new(big.Int)
	for _, share := range shares {
		z.Add(z, share.Share)
		z.Mod(z, suite.Order())
	}

	sig := &Signature{Suite: suite, R: r, Z: z}
	if err := VerifySignature(suite, pkp.GroupKey, sp.Message, sig); err != nil {
		return nil, err
	}
	return sig, nil
}

// VerifySignature checks [z]B == R + [c]A for c = H2(R || A || message).
func VerifySignature(suite ciphersuite.Suite, groupKey ciphersuite.Element, message []byte, sig *Signature) error {
	c := challenge(suite, sig.R, groupKey, message)
	lhs := suite.BaseMult(sig.Z)
	rhs := sig.R.Add(groupKey.ScalarMult(c))
	if !lhs.Equal(rhs) {
		return ErrInvalidSignature
	}
	return nil
}

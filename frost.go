// Package frost implements the two-round FROST threshold Schnorr signing
// primitives over the ciphersuites in ciphersuite: per-participant nonce and
// commitment generation, signature share computation, share aggregation and
// signature verification, plus the trusted-dealer key generation that
// produces the key material both ceremony roles consume.
package frost

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/bartke/frost-ceremony/ciphersuite"
	"github.com/bartke/frost-ceremony/party"
)

// SigningCommitments is the pair of group elements a participant publishes
// in round one: the commitments to its hiding and binding nonces.
type SigningCommitments struct {
	Hiding  ciphersuite.Element
	Binding ciphersuite.Element
}

// Equal reports whether both commitments match.
func (sc *SigningCommitments) Equal(other *SigningCommitments) bool {
	return sc.Hiding.Equal(other.Hiding) && sc.Binding.Equal(other.Binding)
}

// SigningNonces holds the secret scalars matching a SigningCommitments pair.
// Nonces never leave the participant that produced them and are consumed by
// exactly one Sign call, which wipes them.
type SigningNonces struct {
	suite   ciphersuite.Suite
	hiding  *big.Int
	binding *big.Int
}

// consumed reports whether the nonces were already spent.
func (sn *SigningNonces) consumed() bool {
	return sn.hiding == nil || sn.binding == nil
}

// destroy overwrites and unlinks the nonce scalars.
func (sn *SigningNonces) destroy() {
	if sn.hiding != nil {
		sn.hiding.SetInt64(0)
		sn.hiding = nil
	}
	if sn.binding != nil {
		sn.binding.SetInt64(0)
		sn.binding = nil
	}
}

// Commit runs round one for a participant: it draws a fresh nonce pair bound
// to the secret share and returns the nonces together with their public
// commitments.
func Commit(suite ciphersuite.Suite, secret *big.Int) (*SigningNonces, *SigningCommitments, error) {
	hiding, err := generateNonce(suite, secret)
	if err != nil {
		return nil, nil, fmt.Errorf("hiding nonce: %w", err)
	}
	binding, err := generateNonce(suite, secret)
	if err != nil {
		return nil, nil, fmt.Errorf("binding nonce: %w", err)
	}
	nonces := &SigningNonces{suite: suite, hiding: hiding, binding: binding}
	commitments := &SigningCommitments{
		Hiding:  suite.BaseMult(hiding),
		Binding: suite.BaseMult(binding),
	}
	return nonces, commitments, nil
}

// generateNonce derives a nonce scalar as H3(random_bytes || secret_enc).
func generateNonce(suite ciphersuite.Suite, secret *big.Int) (*big.Int, error) {
	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return nil, err
	}
	return suite.H3(random, suite.EncodeScalar(secret)), nil
}

// SignatureShare is a participant's round-two output.
type SignatureShare struct {
	Suite ciphersuite.Suite
	Share *big.Int
}

// Sign runs round two for a participant: it computes the signature share for
// the signing package using the participant's nonces and key package. The
// nonces are destroyed before Sign returns, whether or not it succeeds; a
// second call with the same nonces fails.
func Sign(sp *SigningPackage, nonces *SigningNonces, kp *KeyPackage) (*SignatureShare, error) {
	if nonces.consumed() {
		return nil, errors.New("signing nonces were already consumed")
	}
	defer nonces.destroy()

	suite := kp.Suite
	own, ok := sp.Commitments[kp.Identifier]
	if !ok {
		return nil, fmt.Errorf("signing package does not include participant %s", kp.Identifier)
	}
	if !own.Hiding.Equal(suite.BaseMult(nonces.hiding)) ||
		!own.Binding.Equal(suite.BaseMult(nonces.binding)) {
		return nil, errors.New("signing package commitments do not match the local nonces")
	}

	factors := sp.bindingFactors(kp.GroupKey)
	rho := factors[kp.Identifier]

	groupCommitment := sp.groupCommitment(factors)
	c := challenge(suite, groupCommitment, kp.GroupKey, sp.Message)

	lambda, err := interpolatingValue(suite, kp.Identifier, sp.SortedIDs())
	if err != nil {
		return nil, err
	}

	order := suite.Order()

	// z_i = hiding + binding*rho + lambda*sk_i*c mod q
	z := new(big.Int).Mul(nonces.binding, rho)
	z.Add(z, nonces.hiding)
	t := new(big.Int).Mul(lambda, kp.SecretShare)
	t.Mod(t, order)
	t.Mul(t, c)
	z.Add(z, t)
	z.Mod(z, order)

	return &SignatureShare{Suite: suite, Share: z}, nil
}

// interpolatingValue computes the Lagrange coefficient for id over the set
// of signer identifiers, evaluated at zero.
func interpolatingValue(suite ciphersuite.Suite, id party.ID, ids party.IDSlice) (*big.Int, error) {
	xi, err := id.Scalar(suite)
	if err != nil {
		return nil, err
	}
	order := suite.Order()
	num := big.NewInt(1)
	den := big.NewInt(1)
	found := false
	for _, other := range ids {
		if other == id {
			found = true
			continue
		}
		xj, err := other.Scalar(suite)
		if err != nil {
			return nil, err
		}
		num.Mul(num, xj)
		num.Mod(num, order)
		d := new(big.Int).Sub(xj, xi)
		den.Mul(den, d)
		den.Mod(den, order)
	}
	if !found {
		return nil, fmt.Errorf("identifier %s is not in the signer set", id)
	}
	if den.Sign() == 0 {
		return nil, errors.New("duplicate identifier in signer set")
	}
	den.ModInverse(den, order)
	num.Mul(num, den)
	num.Mod(num, order)
	return num, nil
}

package frost

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/bartke/frost-ceremony/ciphersuite"
	"github.com/bartke/frost-ceremony/party"
	"github.com/bartke/frost-ceremony/polynomial"
)

// DealKeys runs the trusted-dealer key generation: it splits secret (or a
// freshly drawn one when secret is nil) into numSigners Shamir shares with
// the given threshold and returns the per-participant secret shares together
// with the public key package. The sharing polynomial is wiped before
// returning.
func DealKeys(suite ciphersuite.Suite, secret *big.Int, threshold, numSigners uint16) ([]*SecretShare, *PublicKeyPackage, error) {
	if threshold < 2 {
		return nil, nil, errors.New("threshold must be at least 2")
	}
	if numSigners < threshold {
		return nil, nil, fmt.Errorf("cannot split among %d signers with threshold %d", numSigners, threshold)
	}

	if secret == nil {
		var err error
		secret, err = randomScalar(suite)
		if err != nil {
			return nil, nil, err
		}
	} else {
		secret = new(big.Int).Mod(secret, suite.Order())
		if secret.Sign() == 0 {
			return nil, nil, errors.New("secret must be a non-zero scalar")
		}
	}

	poly := polynomial.NewPolynomial(suite.Order(), int(threshold)-1, secret)
	defer poly.Reset()

	commitment := make([]ciphersuite.Element, poly.Size())
	for i, c := range poly.Coefficients() {
		commitment[i] = suite.BaseMult(c)
	}

	shares := make([]*SecretShare, 0, numSigners)
	verifyingShares := make(map[party.ID]ciphersuite.Element, numSigners)
	for i := uint16(1); i <= numSigners; i++ {
		id, err := party.FromIndex(suite, i)
		if err != nil {
			return nil, nil, err
		}
		x, err := id.Scalar(suite)
		if err != nil {
			return nil, nil, err
		}
		value := poly.Evaluate(x)
		shares = append(shares, &SecretShare{
			Suite:      suite,
			Identifier: id,
			Value:      value,
			Commitment: commitment,
		})
		verifyingShares[id] = suite.BaseMult(value)
	}

	pkp := &PublicKeyPackage{
		Suite:           suite,
		VerifyingShares: verifyingShares,
		GroupKey:        commitment[0],
	}
	return shares, pkp, nil
}

// randomScalar draws a uniform non-zero scalar.
func randomScalar(suite ciphersuite.Suite) (*big.Int, error) {
	for {
		v, err := rand.Int(rand.Reader, suite.Order())
		if err != nil {
			return nil, err
		}
		if v.Sign() != 0 {
			return v, nil
		}
	}
}

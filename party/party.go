// Package party defines participant identifiers. An identifier is a
// non-zero scalar in the ciphersuite's field, carried around in its
// canonical little-endian encoding. Identifiers are ordered by that
// encoding, which makes iteration over signer sets deterministic.
package party

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/bartke/frost-ceremony/ciphersuite"
)

// ID is the canonical scalar encoding of a participant identifier, stored
// as an immutable byte string so it can key maps and compare bytewise.
type ID string

// FromBytes validates b as a canonical non-zero scalar of the suite and
// returns it as an ID.
func FromBytes(suite ciphersuite.Suite, b []byte) (ID, error) {
	v, err := suite.DecodeScalar(b)
	if err != nil {
		return "", fmt.Errorf("invalid identifier: %w", err)
	}
	if v.Sign() == 0 {
		return "", errors.New("invalid identifier: zero scalar")
	}
	return ID(b), nil
}

// FromIndex derives the identifier for the i-th participant, i >= 1.
func FromIndex(suite ciphersuite.Suite, i uint16) (ID, error) {
	if i == 0 {
		return "", errors.New("invalid identifier: index must be non-zero")
	}
	return ID(suite.EncodeScalar(big.NewInt(int64(i)))), nil
}

// Bytes returns the canonical encoding.
func (id ID) Bytes() []byte { return []byte(id) }

// String renders the identifier as lowercase hex.
func (id ID) String() string { return hex.EncodeToString([]byte(id)) }

// Scalar returns the identifier as a field scalar of the suite.
func (id ID) Scalar(suite ciphersuite.Suite) (*big.Int, error) {
	return suite.DecodeScalar([]byte(id))
}

// IDSlice is a set of identifiers.
type IDSlice []ID

// Sort orders the slice by canonical byte encoding, in place, and returns it.
func (ids IDSlice) Sort() IDSlice {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Contains reports whether id is present.
func (ids IDSlice) Contains(id ID) bool {
	for _, other := range ids {
		if other == id {
			return true
		}
	}
	return false
}

package frost

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/exp/maps"

	"github.com/bartke/frost-ceremony/ciphersuite"
	"github.com/bartke/frost-ceremony/party"
)

// PublicKeyPackage is the public key material shared by the coordinator and
// every participant: the group verifying key and the verifying share of each
// known signer. It is identical across parties.
type PublicKeyPackage struct {
	Suite           ciphersuite.Suite
	VerifyingShares map[party.ID]ciphersuite.Element
	GroupKey        ciphersuite.Element
}

// SortedIDs returns the known signer identifiers in canonical byte order.
func (p *PublicKeyPackage) SortedIDs() party.IDSlice {
	return party.IDSlice(maps.Keys(p.VerifyingShares)).Sort()
}

func (p *PublicKeyPackage) MarshalJSON() ([]byte, error) {
	shares := make(map[string]string, len(p.VerifyingShares))
	for id, share := range p.VerifyingShares {
		shares[base64.StdEncoding.EncodeToString(id.Bytes())] =
			base64.StdEncoding.EncodeToString(share.Encode())
	}
	return json.Marshal(&struct {
		Ciphersuite     string            `json:"ciphersuite"`
		VerifyingShares map[string]string `json:"verifying_shares"`
		GroupKey        string            `json:"group_public_key"`
	}{
		Ciphersuite:     p.Suite.Name(),
		VerifyingShares: shares,
		GroupKey:        base64.StdEncoding.EncodeToString(p.GroupKey.Encode()),
	})
}

// DecodePublicKeyPackage parses a JSON-encoded public key package. The
// encoding is self-describing: the embedded ciphersuite name selects the
// suite used to decode every share.
func DecodePublicKeyPackage(data []byte) (*PublicKeyPackage, error) {
	aux := &struct {
		Ciphersuite     string            `json:"ciphersuite"`
		VerifyingShares map[string]string `json:"verifying_shares"`
		GroupKey        string            `json:"group_public_key"`
	}{}
	if err := json.Unmarshal(data, aux); err != nil {
		return nil, err
	}
	suite, err := ciphersuite.FromName(aux.Ciphersuite)
	if err != nil {
		return nil, err
	}
	groupKey, err := decodeElementB64(suite, aux.GroupKey)
	if err != nil {
		return nil, fmt.Errorf("group public key: %w", err)
	}
	shares := make(map[party.ID]ciphersuite.Element, len(aux.VerifyingShares))
	for idStr, shareStr := range aux.VerifyingShares {
		idBytes, err := base64.StdEncoding.DecodeString(idStr)
		if err != nil {
			return nil, err
		}
		id, err := party.FromBytes(suite, idBytes)
		if err != nil {
			return nil, err
		}
		share, err := decodeElementB64(suite, shareStr)
		if err != nil {
			return nil, fmt.Errorf("verifying share of %s: %w", id, err)
		}
		shares[id] = share
	}
	return &PublicKeyPackage{Suite: suite, VerifyingShares: shares, GroupKey: groupKey}, nil
}

// KeyPackage is the private signer material of one participant. It is never
// transmitted.
type KeyPackage struct {
	Suite          ciphersuite.Suite
	Identifier     party.ID
	SecretShare    *big.Int
	VerifyingShare ciphersuite.Element
	GroupKey       ciphersuite.Element
}

func (kp *KeyPackage) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Ciphersuite    string `json:"ciphersuite"`
		Identifier     string `json:"identifier"`
		SecretShare    string `json:"secret_share"`
		VerifyingShare string `json:"verifying_share"`
		GroupKey       string `json:"group_public_key"`
	}{
		Ciphersuite:    kp.Suite.Name(),
		Identifier:     base64.StdEncoding.EncodeToString(kp.Identifier.Bytes()),
		SecretShare:    base64.StdEncoding.EncodeToString(kp.Suite.EncodeScalar(kp.SecretShare)),
		VerifyingShare: base64.StdEncoding.EncodeToString(kp.VerifyingShare.Encode()),
		GroupKey:       base64.StdEncoding.EncodeToString(kp.GroupKey.Encode()),
	})
}

// DecodeKeyPackage parses a JSON-encoded key package.
func DecodeKeyPackage(data []byte) (*KeyPackage, error) {
	aux := &struct {
		Ciphersuite    string `json:"ciphersuite"`
		Identifier     string `json:"identifier"`
		SecretShare    string `json:"secret_share"`
		VerifyingShare string `json:"verifying_share"`
		GroupKey       string `json:"group_public_key"`
	}{}
	if err := json.Unmarshal(data, aux); err != nil {
		return nil, err
	}
	suite, err := ciphersuite.FromName(aux.Ciphersuite)
	if err != nil {
		return nil, err
	}
	idBytes, err := base64.StdEncoding.DecodeString(aux.Identifier)
	if err != nil {
		return nil, err
	}
	id, err := party.FromBytes(suite, idBytes)
	if err != nil {
		return nil, err
	}
	secret, err := decodeScalarB64(suite, aux.SecretShare)
	if err != nil {
		return nil, fmt.Errorf("secret share: %w", err)
	}
	verifying, err := decodeElementB64(suite, aux.VerifyingShare)
	if err != nil {
		return nil, fmt.Errorf("verifying share: %w", err)
	}
	groupKey, err := decodeElementB64(suite, aux.GroupKey)
	if err != nil {
		return nil, fmt.Errorf("group public key: %w", err)
	}
	kp := &KeyPackage{
		Suite:          suite,
		Identifier:     id,
		SecretShare:    secret,
		VerifyingShare: verifying,
		GroupKey:       groupKey,
	}
	if !kp.VerifyingShare.Equal(suite.BaseMult(secret)) {
		return nil, errors.New("verifying share does not match the secret share")
	}
	return kp, nil
}

// ConsistentWith checks that the key package's verifying share equals the
// one the public key package lists under its identifier.
func (kp *KeyPackage) ConsistentWith(pkp *PublicKeyPackage) error {
	listed, ok := pkp.VerifyingShares[kp.Identifier]
	if !ok {
		return fmt.Errorf("identifier %s is not listed in the public key package", kp.Identifier)
	}
	if !listed.Equal(kp.VerifyingShare) {
		return fmt.Errorf("verifying share of %s does not match the public key package", kp.Identifier)
	}
	return nil
}

// SecretShare is the raw dealer output for one participant: its share of
// the group secret plus the dealer's polynomial commitment, which lets the
// holder derive and verify a full key package.
type SecretShare struct {
	Suite      ciphersuite.Suite
	Identifier party.ID
	Value      *big.Int
	Commitment []ciphersuite.Element
}

func (ss *SecretShare) MarshalJSON() ([]byte, error) {
	commitment := make([]string, len(ss.Commitment))
	for i, c := range ss.Commitment {
		commitment[i] = base64.StdEncoding.EncodeToString(c.Encode())
	}
	return json.Marshal(&struct {
		Ciphersuite string   `json:"ciphersuite"`
		Identifier  string   `json:"identifier"`
		Value       string   `json:"value"`
		Commitment  []string `json:"commitment"`
	}{
		Ciphersuite: ss.Suite.Name(),
		Identifier:  base64.StdEncoding.EncodeToString(ss.Identifier.Bytes()),
		Value:       base64.StdEncoding.EncodeToString(ss.Suite.EncodeScalar(ss.Value)),
		Commitment:  commitment,
	})
}

// DecodeSecretShare parses a JSON-encoded dealer secret share.
func DecodeSecretShare(data []byte) (*SecretShare, error) {
	aux := &struct {
		Ciphersuite string   `json:"ciphersuite"`
		Identifier  string   `json:"identifier"`
		Value       string   `json:"value"`
		Commitment  []string `json:"commitment"`
	}{}
	if err := json.Unmarshal(data, aux); err != nil {
		return nil, err
	}
	if len(aux.Commitment) == 0 {
		return nil, errors.New("secret share has no polynomial commitment")
	}
	suite, err := ciphersuite.FromName(aux.Ciphersuite)
	if err != nil {
		return nil, err
	}
	idBytes, err := base64.StdEncoding.DecodeString(aux.Identifier)
	if err != nil {
		return nil, err
	}
	id, err := party.FromBytes(suite, idBytes)
	if err != nil {
		return nil, err
	}
	value, err := decodeScalarB64(suite, aux.Value)
	if err != nil {
		return nil, fmt.Errorf("share value: %w", err)
	}
	commitment := make([]ciphersuite.Element, len(aux.Commitment))
	for i, c := range aux.Commitment {
		commitment[i], err = decodeElementB64(suite, c)
		if err != nil {
			return nil, fmt.Errorf("commitment coefficient %d: %w", i, err)
		}
	}
	return &SecretShare{Suite: suite, Identifier: id, Value: value, Commitment: commitment}, nil
}

// Promote derives a key package from a dealer secret share, verifying the
// share against the polynomial commitment.
func (ss *SecretShare) Promote() (*KeyPackage, error) {
	x, err := ss.Identifier.Scalar(ss.Suite)
	if err != nil {
		return nil, err
	}

	// Evaluate the commitment polynomial in the exponent at x.
	expected := ss.Suite.Identity()
	for i := len(ss.Commitment) - 1; i >= 0; i-- {
		expected = expected.ScalarMult(x).Add(ss.Commitment[i])
	}

	verifying := ss.Suite.BaseMult(ss.Value)
	if !verifying.Equal(expected) {
		return nil, errors.New("secret share is inconsistent with the dealer commitment")
	}

	return &KeyPackage{
		Suite:          ss.Suite,
		Identifier:     ss.Identifier,
		SecretShare:    ss.Value,
		VerifyingShare: verifying,
		GroupKey:       ss.Commitment[0],
	}, nil
}

func decodeElementB64(suite ciphersuite.Suite, s string) (ciphersuite.Element, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return suite.DecodeElement(b)
}

func decodeScalarB64(suite ciphersuite.Suite, s string) (*big.Int, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return suite.DecodeScalar(b)
}

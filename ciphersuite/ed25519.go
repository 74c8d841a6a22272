package ciphersuite

import (
	"bytes"
	"crypto/sha512"
	"errors"
	"math/big"

	"filippo.io/edwards25519"
)

const ed25519Context = "FROST-ED25519-SHA512-v1"

// ed25519Order is the order of the prime-order subgroup of edwards25519,
// l = 2^252 + 27742317777372353535851937790883648493.
var ed25519Order, _ = new(big.Int).SetString(
	"7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)

type ed25519Suite struct{}

// Ed25519 returns the FROST(Ed25519, SHA-512) suite.
func Ed25519() Suite { return ed25519Suite{} }

func (ed25519Suite) Name() string       { return "ed25519" }
func (ed25519Suite) ScalarSize() int    { return 32 }
func (ed25519Suite) ElementSize() int   { return 32 }
func (ed25519Suite) SignatureSize() int { return 64 }
func (ed25519Suite) Order() *big.Int    { return ed25519Order }

type ed25519Element struct {
	p *edwards25519.Point
}

func (ed25519Suite) Identity() Element {
	return ed25519Element{edwards25519.NewIdentityPoint()}
}

func (s ed25519Suite) BaseMult(k *big.Int) Element {
	return ed25519Element{new(edwards25519.Point).ScalarBaseMult(s.scalar(k))}
}

// scalar converts a big.Int into an edwards25519 scalar via its canonical
// reduced encoding.
func (s ed25519Suite) scalar(k *big.Int) *edwards25519.Scalar {
	sc, err := edwards25519.NewScalar().SetCanonicalBytes(s.EncodeScalar(k))
	if err != nil {
		// EncodeScalar reduces mod l, so the encoding is always canonical.
		panic("ciphersuite: non-canonical reduced scalar: " + err.Error())
	}
	return sc
}

func (ed25519Suite) DecodeElement(b []byte) (Element, error) {
	if len(b) != 32 {
		return nil, errors.New("ed25519: element encoding must be 32 bytes")
	}
	p, err := new(edwards25519.Point).SetBytes(b)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(p.Bytes(), b) {
		return nil, errors.New("ed25519: element encoding is not canonical")
	}
	return ed25519Element{p}, nil
}

func (s ed25519Suite) DecodeScalar(b []byte) (*big.Int, error) {
	if len(b) != 32 {
		return nil, errors.New("ed25519: scalar encoding must be 32 bytes")
	}
	v := decodeLittleEndian(b)
	if v.Cmp(ed25519Order) >= 0 {
		return nil, errors.New("ed25519: scalar is not canonical")
	}
	return v, nil
}

func (ed25519Suite) EncodeScalar(k *big.Int) []byte {
	return encodeLittleEndian(new(big.Int).Mod(k, ed25519Order), 32)
}

func (e ed25519Element) Add(other Element) Element {
	o := other.(ed25519Element)
	return ed25519Element{new(edwards25519.Point).Add(e.p, o.p)}
}

func (e ed25519Element) ScalarMult(k *big.Int) Element {
	return ed25519Element{new(edwards25519.Point).ScalarMult(ed25519Suite{}.scalar(k), e.p)}
}

func (e ed25519Element) Negate() Element {
	return ed25519Element{new(edwards25519.Point).Negate(e.p)}
}

func (e ed25519Element) Equal(other Element) bool {
	o, ok := other.(ed25519Element)
	return ok && e.p.Equal(o.p) == 1
}

func (e ed25519Element) IsIdentity() bool {
	return e.p.Equal(edwards25519.NewIdentityPoint()) == 1
}

func (e ed25519Element) Encode() []byte { return e.p.Bytes() }

// ed25519HashToScalar interprets a 64-byte digest as a little-endian integer
// reduced mod l, matching SetUniformBytes semantics.
func ed25519HashToScalar(digest [64]byte) *big.Int {
	v := decodeLittleEndian(digest[:])
	return v.Mod(v, ed25519Order)
}

func ed25519Hash(parts ...[]byte) [64]byte {
	h := sha512.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (ed25519Suite) H1(m ...[]byte) *big.Int {
	parts := append([][]byte{[]byte(ed25519Context), []byte("rho")}, m...)
	return ed25519HashToScalar(ed25519Hash(parts...))
}

// H2 is the plain RFC 8032 challenge SHA-512(R || A || m) with no context
// prefix, so the aggregate verifies under crypto/ed25519.
func (ed25519Suite) H2(m ...[]byte) *big.Int {
	return ed25519HashToScalar(ed25519Hash(m...))
}

func (ed25519Suite) H3(m ...[]byte) *big.Int {
	parts := append([][]byte{[]byte(ed25519Context), []byte("nonce")}, m...)
	return ed25519HashToScalar(ed25519Hash(parts...))
}

func (ed25519Suite) H4(m []byte) []byte {
	d := ed25519Hash([]byte(ed25519Context), []byte("msg"), m)
	return d[:]
}

func (ed25519Suite) H5(m []byte) []byte {
	d := ed25519Hash([]byte(ed25519Context), []byte("com"), m)
	return d[:]
}

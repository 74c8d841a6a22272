package ciphersuite

import (
	"errors"
	"math/big"

	"golang.org/x/crypto/sha3"
)

const ed448Context = "FROST-ED448-SHAKE256-v1"

// Curve parameters for edwards448 (RFC 8032, section 5.2):
// x^2 + y^2 = 1 + d*x^2*y^2 over GF(p) with p = 2^448 - 2^224 - 1 and
// d = -39081. The prime subgroup has order
// L = 2^446 - 13818066809895115352007386748515426880336692474882178609894547503885.
var (
	ed448P     *big.Int
	ed448D     *big.Int
	ed448Order *big.Int
	// (p+1)/4, the exponent of the square-root computation (p = 3 mod 4).
	ed448SqrtExp *big.Int
	ed448BaseX   *big.Int
	ed448BaseY   *big.Int
)

func init() {
	one := big.NewInt(1)
	ed448P = new(big.Int).Lsh(one, 448)
	ed448P.Sub(ed448P, new(big.Int).Lsh(one, 224))
	ed448P.Sub(ed448P, one)

	ed448D = new(big.Int).Sub(ed448P, big.NewInt(39081))

	c, ok := new(big.Int).SetString(
		"13818066809895115352007386748515426880336692474882178609894547503885", 10)
	if !ok {
		panic("ciphersuite: bad ed448 order constant")
	}
	ed448Order = new(big.Int).Lsh(one, 446)
	ed448Order.Sub(ed448Order, c)

	ed448SqrtExp = new(big.Int).Add(ed448P, one)
	ed448SqrtExp.Rsh(ed448SqrtExp, 2)

	ed448BaseY, ok = new(big.Int).SetString(
		"2988192100784814926760179304439306734375440401540802420959282413723315061898"+
			"35876003536878655418784733982303233503462500531545062832660", 10)
	if !ok {
		panic("ciphersuite: bad ed448 base point constant")
	}
	x, err := ed448Decompress(ed448BaseY, 0)
	if err != nil {
		panic("ciphersuite: ed448 base point does not decompress: " + err.Error())
	}
	ed448BaseX = x
}

type ed448Suite struct{}

// Ed448 returns the FROST(Ed448, SHAKE256) suite.
func Ed448() Suite { return ed448Suite{} }

func (ed448Suite) Name() string       { return "ed448" }
func (ed448Suite) ScalarSize() int    { return 57 }
func (ed448Suite) ElementSize() int   { return 57 }
func (ed448Suite) SignatureSize() int { return 114 }
func (ed448Suite) Order() *big.Int    { return ed448Order }

// ed448Element is an affine point on edwards448. The Edwards addition law
// with non-square d is complete, so affine arithmetic needs no special
// cases for doubling or the identity (0, 1).
type ed448Element struct {
	x, y *big.Int
}

func (ed448Suite) Identity() Element {
	return ed448Element{big.NewInt(0), big.NewInt(1)}
}

func (s ed448Suite) BaseMult(k *big.Int) Element {
	return ed448Element{ed448BaseX, ed448BaseY}.ScalarMult(k)
}

func (e ed448Element) Add(other Element) Element {
	o := other.(ed448Element)
	// den = d * x1 * x2 * y1 * y2
	den := new(big.Int).Mul(e.x, o.x)
	den.Mod(den, ed448P)
	den.Mul(den, e.y)
	den.Mod(den, ed448P)
	den.Mul(den, o.y)
	den.Mod(den, ed448P)
	den.Mul(den, ed448D)
	den.Mod(den, ed448P)

	one := big.NewInt(1)

	// x3 = (x1*y2 + y1*x2) / (1 + den)
	xn := new(big.Int).Mul(e.x, o.y)
	t := new(big.Int).Mul(e.y, o.x)
	xn.Add(xn, t)
	xn.Mod(xn, ed448P)
	xd := new(big.Int).Add(one, den)
	xd.Mod(xd, ed448P)
	xn.Mul(xn, xd.ModInverse(xd, ed448P))
	xn.Mod(xn, ed448P)

	// y3 = (y1*y2 - x1*x2) / (1 - den)
	yn := new(big.Int).Mul(e.y, o.y)
	t.Mul(e.x, o.x)
	yn.Sub(yn, t)
	yn.Mod(yn, ed448P)
	yd := new(big.Int).Sub(one, den)
	yd.Mod(yd, ed448P)
	yn.Mul(yn, yd.ModInverse(yd, ed448P))
	yn.Mod(yn, ed448P)

	return ed448Element{xn, yn}
}

func (e ed448Element) ScalarMult(k *big.Int) Element {
	k = new(big.Int).Mod(k, ed448Order)
	acc := ed448Suite{}.Identity()
	for i := k.BitLen() - 1; i >= 0; i-- {
		acc = acc.Add(acc)
		if k.Bit(i) == 1 {
			acc = acc.Add(e)
		}
	}
	return acc
}

func (e ed448Element) Negate() Element {
	return ed448Element{new(big.Int).Mod(new(big.Int).Neg(e.x), ed448P), e.y}
}

func (e ed448Element) Equal(other Element) bool {
	o, ok := other.(ed448Element)
	return ok && e.x.Cmp(o.x) == 0 && e.y.Cmp(o.y) == 0
}

func (e ed448Element) IsIdentity() bool {
	return e.x.Sign() == 0 && e.y.Cmp(big.NewInt(1)) == 0
}

// Encode produces the 57-byte RFC 8032 encoding: the y-coordinate in
// little-endian order with the sign of x in the top bit of the final byte.
func (e ed448Element) Encode() []byte {
	out := make([]byte, 57)
	copy(out, encodeLittleEndian(e.y, 56))
	out[56] = byte(e.x.Bit(0)) << 7
	return out
}

func (ed448Suite) DecodeElement(b []byte) (Element, error) {
	if len(b) != 57 {
		return nil, errors.New("ed448: element encoding must be 57 bytes")
	}
	if b[56]&0x7f != 0 {
		return nil, errors.New("ed448: invalid element encoding")
	}
	sign := uint(b[56] >> 7)
	y := decodeLittleEndian(b[:56])
	if y.Cmp(ed448P) >= 0 {
		return nil, errors.New("ed448: element y-coordinate out of range")
	}
	x, err := ed448Decompress(y, sign)
	if err != nil {
		return nil, err
	}
	return ed448Element{x, y}, nil
}

// ed448Decompress recovers x from y and the sign bit by solving
// x^2 = (y^2 - 1) / (d*y^2 - 1) mod p.
func ed448Decompress(y *big.Int, sign uint) (*big.Int, error) {
	y2 := new(big.Int).Mul(y, y)
	y2.Mod(y2, ed448P)

	u := new(big.Int).Sub(y2, big.NewInt(1))
	u.Mod(u, ed448P)

	v := new(big.Int).Mul(ed448D, y2)
	v.Sub(v, big.NewInt(1))
	v.Mod(v, ed448P)
	if v.Sign() == 0 {
		return nil, errors.New("ed448: point decompression failed")
	}

	w := new(big.Int).ModInverse(v, ed448P)
	w.Mul(w, u)
	w.Mod(w, ed448P)

	x := new(big.Int).Exp(w, ed448SqrtExp, ed448P)
	check := new(big.Int).Mul(x, x)
	check.Mod(check, ed448P)
	if check.Cmp(w) != 0 {
		return nil, errors.New("ed448: not a point on the curve")
	}
	if x.Sign() == 0 && sign == 1 {
		return nil, errors.New("ed448: invalid sign bit")
	}
	if x.Bit(0) != sign {
		x.Sub(ed448P, x)
	}
	return x, nil
}

func (s ed448Suite) DecodeScalar(b []byte) (*big.Int, error) {
	if len(b) != 57 {
		return nil, errors.New("ed448: scalar encoding must be 57 bytes")
	}
	v := decodeLittleEndian(b)
	if v.Cmp(ed448Order) >= 0 {
		return nil, errors.New("ed448: scalar is not canonical")
	}
	return v, nil
}

func (ed448Suite) EncodeScalar(k *big.Int) []byte {
	return encodeLittleEndian(new(big.Int).Mod(k, ed448Order), 57)
}

// ed448HashToScalar runs SHAKE256 over the given parts with a 114-byte
// output interpreted as a little-endian integer mod L.
func ed448HashToScalar(parts ...[]byte) *big.Int {
	v := decodeLittleEndian(ed448Shake(114, parts...))
	return v.Mod(v, ed448Order)
}

func ed448Shake(size int, parts ...[]byte) []byte {
	h := sha3.NewShake256()
	for _, p := range parts {
		h.Write(p)
	}
	out := make([]byte, size)
	h.Read(out)
	return out
}

func (ed448Suite) H1(m ...[]byte) *big.Int {
	return ed448HashToScalar(append([][]byte{[]byte(ed448Context), []byte("rho")}, m...)...)
}

// H2 is the RFC 8032 Ed448 challenge SHAKE256(dom4(0, "") || R || A || m, 114)
// so the aggregate verifies under a standard Ed448 verifier with an empty
// context string.
func (ed448Suite) H2(m ...[]byte) *big.Int {
	return ed448HashToScalar(append([][]byte{[]byte("SigEd448"), {0x00, 0x00}}, m...)...)
}

func (ed448Suite) H3(m ...[]byte) *big.Int {
	return ed448HashToScalar(append([][]byte{[]byte(ed448Context), []byte("nonce")}, m...)...)
}

func (ed448Suite) H4(m []byte) []byte {
	return ed448Shake(114, []byte(ed448Context), []byte("msg"), m)
}

func (ed448Suite) H5(m []byte) []byte {
	return ed448Shake(114, []byte(ed448Context), []byte("com"), m)
}

package polynomial

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

type Polynomial struct {
	order        *big.Int
	coefficients []*big.Int
}

// NewPolynomial generates a Polynomial f(X) = secret + a1*X + ... + at*X^t,
// with coefficients in Z_order, and degree t.
func NewPolynomial(order *big.Int, degree int, constant *big.Int) *Polynomial {
	var polynomial Polynomial
	polynomial.order = order
	polynomial.coefficients = make([]*big.Int, degree+1)

	// Set the constant term to the secret
	polynomial.coefficients[0] = new(big.Int).Mod(constant, order)

	for i := 1; i <= degree; i++ {
		c, err := rand.Int(rand.Reader, order)
		if err != nil {
			panic(fmt.Errorf("polynomial: failed to generate random coefficient: %w", err))
		}
		polynomial.coefficients[i] = c
	}

	return &polynomial
}

// Evaluate evaluates a polynomial in a given variable index
// We use Horner's method: https://en.wikipedia.org/wiki/Horner%27s_method
func (p *Polynomial) Evaluate(index *big.Int) *big.Int {
	if index.Sign() == 0 {
		panic("attempt to leak secret")
	}

	result := new(big.Int)
	// reverse order
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// b_n-1 = b_n * x + a_n-1
		result.Mul(result, index)
		result.Add(result, p.coefficients[i])
		result.Mod(result, p.order)
	}
	return result
}

func (p *Polynomial) Constant() *big.Int {
	return new(big.Int).Set(p.coefficients[0])
}

// Coefficients returns the coefficients, constant term first.
func (p *Polynomial) Coefficients() []*big.Int {
	return p.coefficients
}

// Degree is the highest power of the Polynomial
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Size is the number of coefficients of the polynomial
// It is equal to Degree+1
func (p *Polynomial) Size() int {
	return len(p.coefficients)
}

// Reset sets all coefficients to 0
func (p *Polynomial) Reset() {
	for i := range p.coefficients {
		p.coefficients[i].SetInt64(0)
	}
}

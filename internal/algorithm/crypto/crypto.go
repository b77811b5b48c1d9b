// Package crypto implements the modular arithmetic behind textbook RSA, plus a
// Caesar cipher. Intermediate values use math/big so products of int64 operands
// never overflow; inputs and results are int64.
//
// None of this is meant to protect anything. Key sizes are classroom-sized.
package crypto

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/seantiz/algolab/internal/algorithm/args"
	"github.com/seantiz/algolab/internal/registry"
)

var (
	// ErrModulus is returned for a modulus below 1 (2 for RSA).
	ErrModulus = errors.New("cryptography: modulus must be positive")

	// ErrNegativeExponent is returned by ModPow for exp < 0.
	ErrNegativeExponent = errors.New("cryptography: exponent must be non-negative")

	// ErrNotInvertible is returned when gcd(a, m) != 1.
	ErrNotInvertible = errors.New("cryptography: value is not invertible")

	// ErrNotPrime is returned when an RSA factor is not prime.
	ErrNotPrime = errors.New("cryptography: factor is not prime")

	// ErrMessageRange is returned for a message outside [0, n).
	ErrMessageRange = errors.New("cryptography: message out of range")
)

// KeyPair is a textbook RSA key: public (E, N), private (D, N).
type KeyPair struct {
	P   int64 `json:"p"`
	Q   int64 `json:"q"`
	N   int64 `json:"n"`
	Phi int64 `json:"phi"`
	E   int64 `json:"e"`
	D   int64 `json:"d"`
}

// Table returns the "cryptography" category.
func Table() registry.Category {
	return registry.Category{
		"gcd":         args.Fn2(GCD),
		"extendedGcd": args.Fn2(ExtendedGCD),
		"modPow":      args.Fn3(ModPow),
		"modInverse":  args.Fn2(ModInverse),
		"rsaKeys":     args.Fn3(RSAKeys),
		"rsaEncrypt":  args.Fn3(RSAEncrypt),
		"rsaDecrypt":  args.Fn3(RSADecrypt),
		"caesar":      args.Fn2(Caesar),
	}
}

// GCD returns the non-negative greatest common divisor of a and b.
func GCD(a, b int64) (int64, error) {
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(big.NewInt(a)), new(big.Int).Abs(big.NewInt(b)))
	return g.Int64(), nil
}

// ExtendedGCD returns [g, x, y] with a*x + b*y = g.
func ExtendedGCD(a, b int64) ([]int64, error) {
	oldR, r := a, b
	oldS, s := int64(1), int64(0)
	oldT, t := int64(0), int64(1)
	for r != 0 {
		q := oldR / r
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-q*s
		oldT, t = t, oldT-q*t
	}
	if oldR < 0 {
		oldR, oldS, oldT = -oldR, -oldS, -oldT
	}
	return []int64{oldR, oldS, oldT}, nil
}

// ModPow returns base^exp mod m, in [0, m).
func ModPow(base, exp, m int64) (int64, error) {
	if m < 1 {
		return 0, fmt.Errorf("%w: %d", ErrModulus, m)
	}
	if exp < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeExponent, exp)
	}
	mod := big.NewInt(m)
	b := new(big.Int).Mod(big.NewInt(base), mod)
	return new(big.Int).Exp(b, big.NewInt(exp), mod).Int64(), nil
}

// ModInverse returns x in [0, m) with a*x ≡ 1 (mod m).
func ModInverse(a, m int64) (int64, error) {
	if m < 1 {
		return 0, fmt.Errorf("%w: %d", ErrModulus, m)
	}
	mod := big.NewInt(m)
	x := new(big.Int).ModInverse(new(big.Int).Mod(big.NewInt(a), mod), mod)
	if x == nil {
		return 0, fmt.Errorf("%w: %d modulo %d", ErrNotInvertible, a, m)
	}
	return x.Int64(), nil
}

// RSAKeys derives a key pair from distinct primes p, q and public exponent e.
func RSAKeys(p, q, e int64) (KeyPair, error) {
	for _, f := range []int64{p, q} {
		if f < 2 || !big.NewInt(f).ProbablyPrime(20) {
			return KeyPair{}, fmt.Errorf("%w: %d", ErrNotPrime, f)
		}
	}
	if p == q {
		return KeyPair{}, fmt.Errorf("%w: p and q must differ", ErrNotPrime)
	}

	n := new(big.Int).Mul(big.NewInt(p), big.NewInt(q))
	if !n.IsInt64() {
		return KeyPair{}, fmt.Errorf("%w: p*q overflows int64", ErrModulus)
	}
	phi := (p - 1) * (q - 1)

	d, err := ModInverse(e, phi)
	if err != nil {
		return KeyPair{}, fmt.Errorf("public exponent %d is not coprime with phi=%d: %w", e, phi, ErrNotInvertible)
	}
	return KeyPair{P: p, Q: q, N: n.Int64(), Phi: phi, E: e, D: d}, nil
}

func rsaApply(msg, exp, n int64) (int64, error) {
	if n < 2 {
		return 0, fmt.Errorf("%w: %d", ErrModulus, n)
	}
	if msg < 0 || msg >= n {
		return 0, fmt.Errorf("%w: %d not in [0,%d)", ErrMessageRange, msg, n)
	}
	return ModPow(msg, exp, n)
}

// RSAEncrypt returns m^e mod n.
func RSAEncrypt(m, e, n int64) (int64, error) {
	return rsaApply(m, e, n)
}

// RSADecrypt returns c^d mod n.
func RSADecrypt(c, d, n int64) (int64, error) {
	return rsaApply(c, d, n)
}

// Caesar shifts ASCII letters by shift positions, preserving case. Other runes
// are copied unchanged. Negative shifts decrypt.
func Caesar(text string, shift int) (string, error) {
	shift = ((shift % 26) + 26) % 26
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune('a' + (r-'a'+rune(shift))%26)
		case r >= 'A' && r <= 'Z':
			b.WriteRune('A' + (r-'A'+rune(shift))%26)
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

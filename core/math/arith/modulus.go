package arith

import (
	"math/big"

	"github.com/cronokirby/saferith"
)

// Modulus wraps a saferith.Modulus and enables faster modular exponentiation when
// the factorization is known.
// When n = p⋅q, xᵉ (mod n) can be computed with only two exponentiations
// with p and q respectively.
//
// A Modulus carrying its factorization additionally caches φ(n) = (p-1)(q-1),
// which callers use to reduce exponents before raising. Whether or not the
// factorization is present is the trust axis of the accumulator: parameters
// built from a secret key answer HasFactorization, imported ones do not.
type Modulus struct {
	// represents modulus n
	*saferith.Modulus
	// n = p⋅q
	p, q *saferith.Modulus
	// pInv = p⁻¹ (mod q)
	pNat, pInv *saferith.Nat
	// phi = (p-1)⋅(q-1)
	phi    *saferith.Nat
	phiMod *saferith.Modulus
}

// ModulusFromN creates a simple wrapper around a given modulus n.
// The modulus is not copied.
func ModulusFromN(n *saferith.Modulus) *Modulus {
	return &Modulus{
		Modulus: n,
	}
}

// ModulusFromFactors creates the necessary cached values to accelerate
// exponentiation mod n = p⋅q, including the totient.
func ModulusFromFactors(p, q *saferith.Nat) *Modulus {
	nNat := new(saferith.Nat).Mul(p, q, -1)
	nMod := saferith.ModulusFromNat(nNat)
	pMod := saferith.ModulusFromNat(p)
	qMod := saferith.ModulusFromNat(q)
	pInvQ := new(saferith.Nat).ModInverse(p, qMod)
	pNat := new(saferith.Nat).SetNat(p)
	// For odd p, q: (p-1)(q-1) = 4⋅[(p-1)/2]⋅[(q-1)/2]
	pHalf := new(saferith.Nat).Rsh(p, 1, -1)
	qHalf := new(saferith.Nat).Rsh(q, 1, -1)
	phi := new(saferith.Nat).Mul(pHalf, qHalf, -1)
	phi.Mul(phi, new(saferith.Nat).SetUint64(4), -1)
	return &Modulus{
		Modulus: nMod,
		p:       pMod,
		q:       qMod,
		pNat:    pNat,
		pInv:    pInvQ,
		phi:     phi,
		phiMod:  saferith.ModulusFromNat(phi),
	}
}

// Exp is equivalent to (saferith.Nat).Exp(x, e, n.Modulus).
// It returns xᵉ (mod n).
func (n *Modulus) Exp(x, e *saferith.Nat) *saferith.Nat {
	if n.HasFactorization() {
		var xp, xq saferith.Nat
		xp.Exp(x, e, n.p) // x₁ = xᵉ (mod p₁)
		xq.Exp(x, e, n.q) // x₂ = xᵉ (mod p₂)
		// r = x₁ + p₁ ⋅ [p₁⁻¹ (mod p₂)] ⋅ [x₁ - x₂] (mod n)
		r := xq.ModSub(&xq, &xp, n.Modulus)
		r.ModMul(r, n.pInv, n.Modulus)
		r.ModMul(r, n.pNat, n.Modulus)
		r.ModAdd(r, &xp, n.Modulus)
		return r
	}
	return new(saferith.Nat).Exp(x, e, n.Modulus)
}

// ExpI is equivalent to (saferith.Nat).ExpI(x, e, n.Modulus).
// It returns xᵉ (mod n).
func (n *Modulus) ExpI(x *saferith.Nat, e *saferith.Int) *saferith.Nat {
	if n.HasFactorization() {
		y := n.Exp(x, e.Abs())
		inverted := new(saferith.Nat).ModInverse(y, n.Modulus)
		y.CondAssign(e.IsNegative(), inverted)
		return y
	}
	return new(saferith.Nat).ExpI(x, e, n.Modulus)
}

// HasFactorization reports whether the factorization of n is available.
func (n *Modulus) HasFactorization() bool {
	return n.p != nil && n.q != nil && n.pNat != nil && n.pInv != nil
}

// Phi returns φ(n) when the factorization is known, nil otherwise.
func (n *Modulus) Phi() *saferith.Nat {
	return n.phi
}

// PhiModulus returns φ(n) as a modulus for exponent arithmetic, nil when the
// factorization is unknown.
func (n *Modulus) PhiModulus() *saferith.Modulus {
	return n.phiMod
}

// IsValidNatModN checks that xs are all in the range [1,…,n-1] and coprime to n.
func IsValidNatModN(n *saferith.Modulus, xs ...*saferith.Nat) bool {
	nBig := n.Big()
	one := big.NewInt(1)
	gcd := new(big.Int)
	for _, x := range xs {
		if x == nil {
			return false
		}
		xBig := x.Big()
		if xBig.Sign() != 1 {
			return false
		}
		if xBig.Cmp(nBig) != -1 {
			return false
		}
		gcd.GCD(nil, nil, xBig, nBig)
		if gcd.Cmp(one) != 0 {
			return false
		}
	}
	return true
}

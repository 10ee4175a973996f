// Package zkpoke proves knowledge of an accumulated element: given the
// public accumulator value A and a witness W revealed by the prover, the
// proof shows knowledge of an exponent x with Wˣ = A (mod n) without
// revealing which element x is.
package zkpoke

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/mr-shifu/accumulator-lib/core/accumulator"
	"github.com/mr-shifu/accumulator-lib/core/math/arith"
	"github.com/mr-shifu/accumulator-lib/core/math/sample"
	"github.com/mr-shifu/accumulator-lib/lib/params"
	"github.com/mr-shifu/accumulator-lib/pkg/common/cryptosuite/hash"
)

type Public struct {
	// Params are the accumulation parameters (n, g).
	Params *accumulator.Params
	// Acc is the accumulator value the membership is claimed against.
	Acc *saferith.Nat
}

type Private struct {
	// W is the membership witness with Wˣ = Acc.
	W *saferith.Nat
	// X is the accumulated element.
	X *saferith.Nat
}

type Proof struct {
	// W is the witness the proof is anchored to.
	W *saferith.Nat
	// C = Wᵏ is the commitment to the blinding nonce.
	C *saferith.Nat
	// S = k + e⋅x is the blinded response over the integers.
	S *saferith.Nat
}

// NewProof proves knowledge of private.X satisfying Wˣ = Acc. A fresh
// blinding nonce is drawn from crypto/rand on every call; the nonce is
// never reused across proofs.
func NewProof(hash hash.Hash, public Public, private Private) *Proof {
	n := public.Params.Modulus()

	k := sample.Blind(rand.Reader, params.BitsBlind)
	C := n.Exp(private.W, k)

	e, _ := challenge(hash, public, private.W, C)

	// s = k + e⋅x over the integers, never reduced mod n.
	s := new(saferith.Nat).Mul(e, private.X, -1)
	s.Add(s, k, -1)

	return &Proof{
		W: private.W.Clone(),
		C: C,
		S: s,
	}
}

// Verify recomputes the challenge and checks Wˢ = C⋅Accᵉ (mod n).
func (p *Proof) Verify(hash hash.Hash, public Public) bool {
	if p == nil || !p.IsValid(public) {
		return false
	}
	n := public.Params.Modulus()

	e, err := challenge(hash, public, p.W, p.C)
	if err != nil {
		return false
	}

	lhs := n.Exp(p.W, p.S)
	rhs := n.Exp(public.Acc, e)
	rhs = new(saferith.Nat).ModMul(rhs, p.C, n.Modulus)
	return lhs.Eq(rhs) == 1
}

func (p *Proof) IsValid(public Public) bool {
	if p.W == nil || p.C == nil || p.S == nil {
		return false
	}
	return arith.IsValidNatModN(public.Params.N(), p.W, p.C)
}

// Empty returns a proof ready for unmarshalling.
func Empty() *Proof {
	return &Proof{
		W: new(saferith.Nat),
		C: new(saferith.Nat),
		S: new(saferith.Nat),
	}
}

func challenge(hash hash.Hash, public Public, W, C *saferith.Nat) (*saferith.Nat, error) {
	err := hash.WriteAny(public.Params, public.Acc, W, C)
	return sample.Challenge(hash.Digest()), err
}

// Package zknonmem proves that a public element x is not accumulated.
// The prover holds a Bézout style witness (a, D) with Accᵃ = g⋅Dˣ
// (mod n); the proof shows knowledge of the coefficient a without
// revealing it, anchoring D in the transcript.
package zknonmem

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
	// Acc is the accumulator value the non-membership is claimed against.
	Acc *saferith.Nat
	// X is the element whose absence is being proven.
	X *saferith.Nat
}

type Private struct {
	// Witness carries the Bézout coefficient A and the group element D.
	Witness *accumulator.NonMembershipWitness
}

type Proof struct {
	// D = g^(-b) from the non-membership witness.
	D *saferith.Nat
	// C = Accᵏ is the commitment to the blinding nonce.
	C *saferith.Nat
	// S = k + e⋅a is the blinded response over the integers.
	S *saferith.Int
}

// NewProof proves knowledge of the witness coefficient a satisfying
// Accᵃ = g⋅Dˣ. A fresh blinding nonce is drawn from crypto/rand on
// every call; the nonce is never reused across proofs.
func NewProof(hash hash.Hash, public Public, private Private) *Proof {
	n := public.Params.Modulus()

	k := sample.Blind(rand.Reader, params.BitsBlind)
	C := n.Exp(public.Acc, k)

	e, _ := challenge(hash, public, private.Witness.D, C)

	// s = k + e⋅a over the integers, signed since a may be negative.
	s := new(saferith.Int).Mul(new(saferith.Int).SetNat(e), private.Witness.A, -1)
	s.Add(s, new(saferith.Int).SetNat(k), -1)

	return &Proof{
		D: private.Witness.D.Clone(),
		C: C,
		S: s,
	}
}

// Verify recomputes the challenge and checks Accˢ = C⋅(g⋅Dˣ)ᵉ (mod n).
func (p *Proof) Verify(hash hash.Hash, public Public) bool {
	if p == nil || !p.IsValid(public) {
		return false
	}
	n := public.Params.Modulus()

	e, err := challenge(hash, public, p.D, p.C)
	if err != nil {
		return false
	}

	lhs := n.ExpI(public.Acc, p.S)

	t := n.Exp(p.D, public.X)
	t = new(saferith.Nat).ModMul(t, public.Params.G(), n.Modulus)
	rhs := n.Exp(t, e)
	rhs = new(saferith.Nat).ModMul(rhs, p.C, n.Modulus)
	return lhs.Eq(rhs) == 1
}

func (p *Proof) IsValid(public Public) bool {
	if p.D == nil || p.C == nil || p.S == nil {
		return false
	}
	return arith.IsValidNatModN(public.Params.N(), p.D, p.C)
}

// Empty returns a proof ready for unmarshalling.
func Empty() *Proof {
	return &Proof{
		D: new(saferith.Nat),
		C: new(saferith.Nat),
		S: new(saferith.Int),
	}
}

func challenge(hash hash.Hash, public Public, D, C *saferith.Nat) (*saferith.Nat, error) {
	err := hash.WriteAny(public.Params, public.Acc, public.X, D, C)
	return sample.Challenge(hash.Digest()), err
}

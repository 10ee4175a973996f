package accumulator

import (
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/mr-shifu/accumulator-lib/core/pool"
)

// MembershipWitness proves that X is accumulated: W^X = A (mod n).
type MembershipWitness struct {
	W *saferith.Nat
	X *saferith.Nat
}

// NonMembershipWitness proves that an element x is not accumulated, via
// Bézout coefficients A⋅prod + B⋅x = 1 over the integers and the group
// element D = g^(-B). The verification equation is value^A = g⋅D^x.
type NonMembershipWitness struct {
	A *saferith.Int
	B *saferith.Int
	D *saferith.Nat
}

// Update describes a batch of accumulator changes a witness holder
// missed. Value must be the accumulator value after the whole batch
// whenever Deleted is non-empty; it is what the updated witness is
// folded against.
type Update struct {
	Added   []*saferith.Nat
	Deleted []*saferith.Nat
	Value   *saferith.Nat
}

// MembershipWitness computes the witness for an accumulated element x.
//
// With trusted parameters this is one exponentiation with x's inverse
// modulo φ(n). Otherwise the witness is recomputed as g raised to the
// product of all other members.
func (a *Accumulator) MembershipWitness(x *saferith.Nat) (*MembershipWitness, error) {
	fp := Fingerprint(x)
	if _, ok := a.members[fp]; !ok {
		return nil, ErrElementNotPresent
	}

	if phi := a.params.n.Phi(); phi != nil {
		if xInv := new(big.Int).ModInverse(x.Big(), phi.Big()); xInv != nil {
			return &MembershipWitness{
				W: a.params.n.Exp(a.value, natFromBig(xInv)),
				X: x.Clone(),
			}, nil
		}
	}

	return &MembershipWitness{
		W: a.params.n.Exp(a.params.g, natFromBig(a.productWithout(fp))),
		X: x.Clone(),
	}, nil
}

// MembershipWitnesses computes witnesses for several accumulated
// elements, sharding the work across the pool.
func (a *Accumulator) MembershipWitnesses(pl *pool.Pool, xs ...*saferith.Nat) ([]*MembershipWitness, error) {
	results := pl.Parallelize(len(xs), func(i int) interface{} {
		w, err := a.MembershipWitness(xs[i])
		if err != nil {
			return err
		}
		return w
	})
	ws := make([]*MembershipWitness, len(xs))
	for i, r := range results {
		switch v := r.(type) {
		case *MembershipWitness:
			ws[i] = v
		case error:
			return nil, v
		}
	}
	return ws, nil
}

// NonMembershipWitness computes a witness that x is not accumulated.
// Fails with ErrElementIsMember when x is in the set.
func (a *Accumulator) NonMembershipWitness(x *saferith.Nat) (*NonMembershipWitness, error) {
	if _, ok := a.members[Fingerprint(x)]; ok {
		return nil, ErrElementIsMember
	}

	prod := a.product()
	xBig := x.Big()
	aCoeff := new(big.Int)
	bCoeff := new(big.Int)
	gcd := new(big.Int).GCD(aCoeff, bCoeff, prod, xBig)
	if gcd.Cmp(big.NewInt(1)) != 0 {
		return nil, ErrElementIsMember
	}

	bNeg := new(big.Int).Neg(bCoeff)
	d := a.params.n.ExpI(a.params.g, intFromBig(bNeg))
	return &NonMembershipWitness{
		A: intFromBig(aCoeff),
		B: intFromBig(bCoeff),
		D: d,
	}, nil
}

// Verify checks W^X = value (mod n).
func (w *MembershipWitness) Verify(p *Params, value *saferith.Nat) bool {
	if w == nil || w.W == nil || w.X == nil || value == nil {
		return false
	}
	lhs := p.n.Exp(w.W, w.X)
	return lhs.Eq(value) == 1
}

// Verify checks value^A = g⋅D^x (mod n) for the non-member element x.
func (w *NonMembershipWitness) Verify(p *Params, value, x *saferith.Nat) bool {
	if w == nil || w.A == nil || w.D == nil || value == nil || x == nil {
		return false
	}
	lhs := p.n.ExpI(value, w.A)
	rhs := p.n.Exp(w.D, x)
	rhs = new(saferith.Nat).ModMul(rhs, p.g, p.n.Modulus)
	return lhs.Eq(rhs) == 1
}

// Update folds a batch of accumulator changes into the witness.
//
// Additions cost one exponentiation each. Deletions are folded out with
// the Shamir trick: with α⋅X + β⋅(∏ deleted) = 1, the new witness is
// Value^α ⋅ W^β, which requires the post-batch Value. A batch that
// deleted the witness's own element fails with ErrElementNotPresent; a
// deletion batch without Value fails with ErrStaleWitnessUnrecoverable.
func (w *MembershipWitness) Update(p *Params, u *Update) (*MembershipWitness, error) {
	if u == nil {
		return &MembershipWitness{W: w.W.Clone(), X: w.X.Clone()}, nil
	}
	for _, y := range u.Deleted {
		if y.Eq(w.X) == 1 {
			return nil, ErrElementNotPresent
		}
	}

	next := w.W.Clone()
	for _, y := range u.Added {
		if y.Eq(w.X) == 1 {
			continue
		}
		next = p.n.Exp(next, y)
	}

	if len(u.Deleted) == 0 {
		return &MembershipWitness{W: next, X: w.X.Clone()}, nil
	}
	if u.Value == nil {
		return nil, ErrStaleWitnessUnrecoverable
	}

	dProd := big.NewInt(1)
	for _, y := range u.Deleted {
		dProd.Mul(dProd, y.Big())
	}
	alpha := new(big.Int)
	beta := new(big.Int)
	gcd := new(big.Int).GCD(alpha, beta, w.X.Big(), dProd)
	if gcd.Cmp(big.NewInt(1)) != 0 {
		return nil, ErrStaleWitnessUnrecoverable
	}

	// next = W'^(∏ deleted) and u.Value = W'^X for the target W', so
	// W' = Value^α ⋅ next^β.
	folded := p.n.ExpI(u.Value, intFromBig(alpha))
	folded = new(saferith.Nat).ModMul(folded, p.n.ExpI(next, intFromBig(beta)), p.n.Modulus)
	return &MembershipWitness{W: folded, X: w.X.Clone()}, nil
}

func intFromBig(b *big.Int) *saferith.Int {
	bits := b.BitLen()
	if bits == 0 {
		bits = 1
	}
	return new(saferith.Int).SetBig(b, bits)
}

package accumulator

import (
	"encoding/hex"
	"math/big"
	"sort"

	"github.com/cronokirby/saferith"
)

// Accumulator is the mutable state of one accumulated set: the current
// value A = g^(∏ members) mod n together with the accumulated elements.
//
// The element set is carried so that duplicates are rejected and so that
// trustless parameters can recompute values and witnesses from scratch.
// Mutations are single-writer: new values are computed off to the side
// and swapped in only on success, so a failed operation never leaves the
// state torn.
type Accumulator struct {
	params  *Params
	value   *saferith.Nat
	members map[string]*saferith.Nat
}

// New returns the empty accumulator under the given parameters, with
// value g.
func New(p *Params) *Accumulator {
	return &Accumulator{
		params:  p,
		value:   p.g.Clone(),
		members: map[string]*saferith.Nat{},
	}
}

// FromMembers accumulates all elements in one shot. With trusted
// parameters the whole product is reduced modulo φ(n) first, so the cost
// is a single exponentiation regardless of the number of elements.
func FromMembers(p *Params, elements ...*saferith.Nat) (*Accumulator, error) {
	a := New(p)
	for _, x := range elements {
		fp := Fingerprint(x)
		if _, ok := a.members[fp]; ok {
			return nil, ErrDuplicateElement
		}
		a.members[fp] = x.Clone()
	}

	if phiMod := p.n.PhiModulus(); phiMod != nil {
		e := new(saferith.Nat).SetUint64(1)
		for _, x := range a.members {
			e.ModMul(e, x, phiMod)
		}
		a.value = p.n.Exp(p.g, e)
		return a, nil
	}

	a.value = p.n.Exp(p.g, natFromBig(a.product()))
	return a, nil
}

// Restore rebuilds an accumulator from a persisted value and element
// set without recomputing the value. The caller vouches that value was
// produced by accumulating exactly the given elements.
func Restore(p *Params, value *saferith.Nat, elements []*saferith.Nat) (*Accumulator, error) {
	if value == nil {
		return nil, ErrMalformedParameters
	}
	a := &Accumulator{
		params:  p,
		value:   value.Clone(),
		members: make(map[string]*saferith.Nat, len(elements)),
	}
	for _, x := range elements {
		fp := Fingerprint(x)
		if _, ok := a.members[fp]; ok {
			return nil, ErrDuplicateElement
		}
		a.members[fp] = x.Clone()
	}
	return a, nil
}

// Add accumulates x, advancing the value to A^x mod n.
func (a *Accumulator) Add(x *saferith.Nat) error {
	fp := Fingerprint(x)
	if _, ok := a.members[fp]; ok {
		return ErrDuplicateElement
	}
	value := a.params.n.Exp(a.value, x)
	a.members[fp] = x.Clone()
	a.value = value
	return nil
}

// Delete removes x, advancing the value to the root A^(1/x) mod n.
//
// With trusted parameters the root is one exponentiation with the
// inverse of x modulo φ(n). Without the factorization the value is
// recomputed from the remaining elements; callers already holding x's
// membership witness should prefer DeleteWithWitness.
func (a *Accumulator) Delete(x *saferith.Nat) error {
	fp := Fingerprint(x)
	if _, ok := a.members[fp]; !ok {
		return ErrElementNotPresent
	}

	if phi := a.params.n.Phi(); phi != nil {
		if xInv := new(big.Int).ModInverse(x.Big(), phi.Big()); xInv != nil {
			value := a.params.n.Exp(a.value, natFromBig(xInv))
			delete(a.members, fp)
			a.value = value
			return nil
		}
	}

	delete(a.members, fp)
	a.value = a.params.n.Exp(a.params.g, natFromBig(a.product()))
	return nil
}

// DeleteWithWitness removes x using its current membership witness as
// the root value, avoiding both the totient and the full recomputation.
func (a *Accumulator) DeleteWithWitness(x *saferith.Nat, w *MembershipWitness) error {
	fp := Fingerprint(x)
	if _, ok := a.members[fp]; !ok {
		return ErrElementNotPresent
	}
	if w == nil || !w.Verify(a.params, a.value) {
		return ErrInvalidWitness
	}
	delete(a.members, fp)
	a.value = w.W.Clone()
	return nil
}

// Contains reports whether x is currently accumulated.
func (a *Accumulator) Contains(x *saferith.Nat) bool {
	_, ok := a.members[Fingerprint(x)]
	return ok
}

func (a *Accumulator) Len() int {
	return len(a.members)
}

// Value returns a snapshot of the current accumulator value.
func (a *Accumulator) Value() *saferith.Nat {
	return a.value.Clone()
}

func (a *Accumulator) Params() *Params {
	return a.params
}

// Members returns the accumulated elements in ascending order.
func (a *Accumulator) Members() []*saferith.Nat {
	out := make([]*saferith.Nat, 0, len(a.members))
	for _, x := range a.members {
		out = append(out, x.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Big().Cmp(out[j].Big()) == -1
	})
	return out
}

func (a *Accumulator) Clone() *Accumulator {
	members := make(map[string]*saferith.Nat, len(a.members))
	for fp, x := range a.members {
		members[fp] = x.Clone()
	}
	return &Accumulator{
		params:  a.params,
		value:   a.value.Clone(),
		members: members,
	}
}

// Fingerprint is the map key identifying an element: the hex encoding of
// its minimal big-endian bytes, independent of announced length.
func Fingerprint(x *saferith.Nat) string {
	return hex.EncodeToString(x.Big().Bytes())
}

// product multiplies the accumulated elements over the integers.
func (a *Accumulator) product() *big.Int {
	p := big.NewInt(1)
	for _, x := range a.members {
		p.Mul(p, x.Big())
	}
	return p
}

// productWithout multiplies all accumulated elements except the one
// fingerprinted by skip.
func (a *Accumulator) productWithout(skip string) *big.Int {
	p := big.NewInt(1)
	for fp, x := range a.members {
		if fp == skip {
			continue
		}
		p.Mul(p, x.Big())
	}
	return p
}

func natFromBig(b *big.Int) *saferith.Nat {
	return new(saferith.Nat).SetBig(b, b.BitLen())
}

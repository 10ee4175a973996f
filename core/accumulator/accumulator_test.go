package accumulator

import (
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/mr-shifu/accumulator-lib/core/encode"
	"github.com/mr-shifu/accumulator-lib/core/math/arith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKey builds a small trusted key from the Mersenne primes 2⁸⁹-1 and
// 2¹⁰⁷-1, skipping the safe prime checks to keep the algebra tests fast.
func testKey() *SecretKey {
	pBig := new(big.Int).Lsh(big.NewInt(1), 89)
	pBig.Sub(pBig, big.NewInt(1))
	qBig := new(big.Int).Lsh(big.NewInt(1), 107)
	qBig.Sub(qBig, big.NewInt(1))
	p := new(saferith.Nat).SetBig(pBig, pBig.BitLen())
	q := new(saferith.Nat).SetBig(qBig, qBig.BitLen())
	n := arith.ModulusFromFactors(p, q)
	g := new(saferith.Nat).SetUint64(4)
	return &SecretKey{
		Params: &Params{n: n, g: g},
		p:      p,
		q:      q,
	}
}

func testElements(t *testing.T, names ...string) []*saferith.Nat {
	t.Helper()
	xs := make([]*saferith.Nat, len(names))
	for i, name := range names {
		x, err := encode.ToPrime([]byte(name))
		require.NoError(t, err)
		xs[i] = x
	}
	return xs
}

func TestNewIsEmpty(t *testing.T) {
	sk := testKey()
	acc := New(sk.Params)
	assert.Equal(t, 0, acc.Len())
	assert.True(t, acc.Value().Eq(sk.G()) == 1, "empty accumulator must equal the base")
}

func TestAdd(t *testing.T) {
	sk := testKey()
	acc := New(sk.Params)
	xs := testElements(t, "alice", "bob")

	require.NoError(t, acc.Add(xs[0]))
	assert.True(t, acc.Contains(xs[0]))
	assert.False(t, acc.Contains(xs[1]))
	assert.Equal(t, 1, acc.Len())

	want := sk.Modulus().Exp(sk.G(), xs[0])
	assert.True(t, acc.Value().Eq(want) == 1)

	require.NoError(t, acc.Add(xs[1]))
	want = sk.Modulus().Exp(want, xs[1])
	assert.True(t, acc.Value().Eq(want) == 1)
}

func TestAddDuplicate(t *testing.T) {
	sk := testKey()
	acc := New(sk.Params)
	xs := testElements(t, "alice")

	require.NoError(t, acc.Add(xs[0]))
	before := acc.Value()
	err := acc.Add(xs[0])
	assert.ErrorIs(t, err, ErrDuplicateElement)
	assert.True(t, acc.Value().Eq(before) == 1, "failed add must not change the value")
	assert.Equal(t, 1, acc.Len())
}

func TestAddOrderIndependent(t *testing.T) {
	sk := testKey()
	xs := testElements(t, "alice", "bob", "carol")

	ab := New(sk.Params)
	require.NoError(t, ab.Add(xs[0]))
	require.NoError(t, ab.Add(xs[1]))
	require.NoError(t, ab.Add(xs[2]))

	ba := New(sk.Params)
	require.NoError(t, ba.Add(xs[2]))
	require.NoError(t, ba.Add(xs[1]))
	require.NoError(t, ba.Add(xs[0]))

	assert.True(t, ab.Value().Eq(ba.Value()) == 1)
}

func TestFromMembers(t *testing.T) {
	sk := testKey()
	xs := testElements(t, "alice", "bob", "carol")

	sequential := New(sk.Params)
	for _, x := range xs {
		require.NoError(t, sequential.Add(x))
	}

	trusted, err := FromMembers(sk.Params, xs...)
	require.NoError(t, err)
	assert.True(t, trusted.Value().Eq(sequential.Value()) == 1)

	trustless, err := FromMembers(sk.Public(), xs...)
	require.NoError(t, err)
	assert.True(t, trustless.Value().Eq(sequential.Value()) == 1)

	_, err = FromMembers(sk.Params, xs[0], xs[1], xs[0])
	assert.ErrorIs(t, err, ErrDuplicateElement)
}

func TestDelete(t *testing.T) {
	sk := testKey()
	xs := testElements(t, "alice", "bob", "carol")

	for _, p := range []*Params{sk.Params, sk.Public()} {
		acc, err := FromMembers(p, xs...)
		require.NoError(t, err)

		require.NoError(t, acc.Delete(xs[1]))
		assert.False(t, acc.Contains(xs[1]))
		assert.Equal(t, 2, acc.Len())

		want, err := FromMembers(p, xs[0], xs[2])
		require.NoError(t, err)
		assert.True(t, acc.Value().Eq(want.Value()) == 1, "deletion must roll the value back")

		assert.ErrorIs(t, acc.Delete(xs[1]), ErrElementNotPresent)
	}
}

func TestDeleteNotPresent(t *testing.T) {
	sk := testKey()
	xs := testElements(t, "alice", "bob")
	acc := New(sk.Params)
	require.NoError(t, acc.Add(xs[0]))
	assert.ErrorIs(t, acc.Delete(xs[1]), ErrElementNotPresent)
}

func TestDeleteWithWitness(t *testing.T) {
	sk := testKey()
	xs := testElements(t, "alice", "bob", "carol")
	acc, err := FromMembers(sk.Public(), xs...)
	require.NoError(t, err)

	w, err := acc.MembershipWitness(xs[1])
	require.NoError(t, err)

	reference := acc.Clone()
	require.NoError(t, reference.Delete(xs[1]))

	require.NoError(t, acc.DeleteWithWitness(xs[1], w))
	assert.True(t, acc.Value().Eq(reference.Value()) == 1)
	assert.False(t, acc.Contains(xs[1]))
}

func TestDeleteWithWitnessInvalid(t *testing.T) {
	sk := testKey()
	xs := testElements(t, "alice", "bob")
	acc, err := FromMembers(sk.Params, xs...)
	require.NoError(t, err)

	wrong, err := acc.MembershipWitness(xs[0])
	require.NoError(t, err)
	assert.ErrorIs(t, acc.DeleteWithWitness(xs[1], wrong), ErrInvalidWitness)
	assert.ErrorIs(t, acc.DeleteWithWitness(xs[1], nil), ErrInvalidWitness)
	assert.True(t, acc.Contains(xs[1]), "failed deletion must not change the set")
}

func TestMembers(t *testing.T) {
	sk := testKey()
	xs := testElements(t, "alice", "bob", "carol")
	acc, err := FromMembers(sk.Params, xs...)
	require.NoError(t, err)

	members := acc.Members()
	require.Len(t, members, 3)
	for i := 1; i < len(members); i++ {
		assert.Equal(t, -1, members[i-1].Big().Cmp(members[i].Big()), "members must be sorted")
	}
}

func TestClone(t *testing.T) {
	sk := testKey()
	xs := testElements(t, "alice", "bob")
	acc, err := FromMembers(sk.Params, xs...)
	require.NoError(t, err)

	snapshot := acc.Clone()
	require.NoError(t, acc.Delete(xs[0]))
	assert.True(t, snapshot.Contains(xs[0]), "clone must not observe later mutations")
	assert.Equal(t, 2, snapshot.Len())
	assert.Equal(t, 1, acc.Len())
}

func TestRestore(t *testing.T) {
	sk := testKey()
	xs := testElements(t, "alice", "bob")
	acc, err := FromMembers(sk.Params, xs...)
	require.NoError(t, err)

	restored, err := Restore(sk.Params, acc.Value(), acc.Members())
	require.NoError(t, err)
	assert.True(t, restored.Value().Eq(acc.Value()) == 1)
	assert.Equal(t, acc.Len(), restored.Len())

	w, err := restored.MembershipWitness(xs[0])
	require.NoError(t, err)
	assert.True(t, w.Verify(sk.Params, restored.Value()))

	_, err = Restore(sk.Params, nil, acc.Members())
	assert.ErrorIs(t, err, ErrMalformedParameters)
	_, err = Restore(sk.Params, acc.Value(), []*saferith.Nat{xs[0], xs[0]})
	assert.ErrorIs(t, err, ErrDuplicateElement)
}

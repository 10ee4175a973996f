package accumulator

import (
	"crypto/sha512"
	"testing"

	ed "filippo.io/edwards25519"
	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	core "github.com/mr-shifu/accumulator-lib/core/accumulator"
	"github.com/mr-shifu/accumulator-lib/core/pool"
	"github.com/mr-shifu/accumulator-lib/core/zk"
	comm_hash "github.com/mr-shifu/accumulator-lib/pkg/common/cryptosuite/hash"
	comm_keyopts "github.com/mr-shifu/accumulator-lib/pkg/common/keyopts"
	"github.com/mr-shifu/accumulator-lib/pkg/cryptosuite/sw/hash"
	"github.com/mr-shifu/accumulator-lib/pkg/keyopts"
	"github.com/mr-shifu/accumulator-lib/pkg/keystore"
	"github.com/mr-shifu/accumulator-lib/pkg/vault"
	"github.com/mr-shifu/accumulator-lib/pkg/witnessstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(t *testing.T, cfg *Config) (*AccumulatorKeyManager, comm_keyopts.Options) {
	t.Helper()
	acc_keyopts := keyopts.NewInMemoryKeyOpts()
	acc_vault := vault.NewInMemoryVault()
	acc_ks := keystore.NewInMemoryKeystore(acc_vault, acc_keyopts)

	wit_keyopts := keyopts.NewInMemoryKeyOpts()
	wit_store := witnessstore.NewInMemoryWitnessStore(wit_keyopts)

	mgr := NewAccumulatorKeyManager(acc_ks, wit_store, nil, cfg)

	opts, err := keyopts.NewOptions().Set("id", "1", "scope", "state")
	require.NoError(t, err)
	return mgr, opts
}

func testHasher(t *testing.T) comm_hash.Hash {
	t.Helper()
	hash_keyopts := keyopts.NewInMemoryKeyOpts()
	hash_vault := vault.NewInMemoryVault()
	hash_ks := keystore.NewInMemoryKeystore(hash_vault, hash_keyopts)

	opts, err := keyopts.NewOptions().Set("id", "1", "scope", "transcript")
	require.NoError(t, err)
	return hash.NewHashManager(hash_ks).NewHasher("test", opts)
}

// secpCredential returns a fresh compressed secp256k1 public key.
func secpCredential(t *testing.T) []byte {
	t.Helper()
	sk, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	return sk.PubKey().SerializeCompressed()
}

// edCredential returns the ed25519 public key derived from seed.
func edCredential(t *testing.T, seed string) []byte {
	t.Helper()
	h := sha512.Sum512([]byte(seed))
	s, err := ed.NewScalar().SetBytesWithClamping(h[:32])
	require.NoError(t, err)
	return ed.NewIdentityPoint().ScalarBaseMult(s).Bytes()
}

func TestImportKey(t *testing.T) {
	mgr, opts := testManager(t, nil)

	key, err := mgr.ImportKey(zk.SecretKey(), opts)
	require.NoError(t, err)
	assert.True(t, key.Private())
	assert.Equal(t, 2048, key.Params().BitLen())
	assert.Equal(t, 0, key.Len())

	got, err := mgr.GetKey(opts)
	require.NoError(t, err)
	assert.True(t, got.Private())
	assert.Equal(t, key.SKI(), got.SKI())
	assert.True(t, got.Value().Eq(key.Value()) == 1)

	// a serialized private key round trips
	kb, err := key.Bytes()
	require.NoError(t, err)
	opts2, err := keyopts.NewOptions().Set("id", "2", "scope", "state")
	require.NoError(t, err)
	key2, err := mgr.ImportKey(kb, opts2)
	require.NoError(t, err)
	assert.True(t, key2.Private())
	assert.Equal(t, key.SKI(), key2.SKI())

	// public parameters import without the factorization
	opts3, err := keyopts.NewOptions().Set("id", "3", "scope", "state")
	require.NoError(t, err)
	pub, err := mgr.ImportKey(zk.Params(), opts3)
	require.NoError(t, err)
	assert.False(t, pub.Private())
	assert.Equal(t, key.SKI(), pub.SKI())

	_, err = mgr.ImportKey([]byte("not a key"), opts)
	assert.Error(t, err)
	_, err = mgr.ImportKey(42, opts)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestGenerateKeyRejectsWeakLevel(t *testing.T) {
	mgr, opts := testManager(t, &Config{Bits: 1024})

	_, err := mgr.GenerateKey(opts)
	assert.ErrorIs(t, err, core.ErrInvalidSecurityLevel)
}

func TestGenerateKey(t *testing.T) {
	if testing.Short() {
		t.Skip("safe prime generation is slow")
	}

	acc_keyopts := keyopts.NewInMemoryKeyOpts()
	acc_vault := vault.NewInMemoryVault()
	acc_ks := keystore.NewInMemoryKeystore(acc_vault, acc_keyopts)
	wit_keyopts := keyopts.NewInMemoryKeyOpts()
	wit_store := witnessstore.NewInMemoryWitnessStore(wit_keyopts)

	pl := pool.NewPool(0)
	defer pl.TearDown()
	mgr := NewAccumulatorKeyManager(acc_ks, wit_store, pl, nil)

	opts, err := keyopts.NewOptions().Set("id", "1", "scope", "state")
	require.NoError(t, err)

	key, err := mgr.GenerateKey(opts)
	require.NoError(t, err)
	assert.True(t, key.Private())
	assert.True(t, key.Params().Trusted())
	assert.Equal(t, 2048, key.Params().BitLen())

	got, err := mgr.GetKey(opts)
	require.NoError(t, err)
	assert.Equal(t, key.SKI(), got.SKI())
}

func TestAddDelete(t *testing.T) {
	mgr, opts := testManager(t, nil)
	_, err := mgr.ImportKey(zk.SecretKey(), opts)
	require.NoError(t, err)

	alice := secpCredential(t)
	bob := secpCredential(t)
	carol := edCredential(t, "carol")

	v1, err := mgr.Add(alice, opts)
	require.NoError(t, err)
	v2, err := mgr.Add(bob, opts)
	require.NoError(t, err)
	assert.True(t, v1.Eq(v2) == 0, "the value must move on every addition")

	_, err = mgr.Add(alice, opts)
	assert.ErrorIs(t, err, core.ErrDuplicateElement)

	_, err = mgr.Delete(carol, opts)
	assert.ErrorIs(t, err, core.ErrElementNotPresent)

	// deletion rolls the value back
	v3, err := mgr.Delete(bob, opts)
	require.NoError(t, err)
	assert.True(t, v3.Eq(v1) == 1)

	// state survives the round trip through the keystore
	key, err := mgr.GetKey(opts)
	require.NoError(t, err)
	assert.Equal(t, 1, key.Len())
	x, err := mgr.Encode(alice)
	require.NoError(t, err)
	assert.True(t, key.Contains(x))
}

func TestTrackedWitnesses(t *testing.T) {
	mgr, opts := testManager(t, nil)
	_, err := mgr.ImportKey(zk.SecretKey(), opts)
	require.NoError(t, err)

	alice := secpCredential(t)
	bob := secpCredential(t)
	carol := edCredential(t, "carol")

	_, err = mgr.Add(alice, opts)
	require.NoError(t, err)
	_, err = mgr.Add(bob, opts)
	require.NoError(t, err)
	require.NoError(t, mgr.Track(alice, opts))

	key, err := mgr.GetKey(opts)
	require.NoError(t, err)
	w, err := mgr.TrackedWitness(alice, opts)
	require.NoError(t, err)
	assert.True(t, w.Verify(key.Params(), key.Value()))

	// additions fold into the tracked witness
	v, err := mgr.Add(carol, opts)
	require.NoError(t, err)
	w, err = mgr.TrackedWitness(alice, opts)
	require.NoError(t, err)
	assert.True(t, w.Verify(key.Params(), v))

	// deletions fold as well
	v, err = mgr.Delete(bob, opts)
	require.NoError(t, err)
	w, err = mgr.TrackedWitness(alice, opts)
	require.NoError(t, err)
	assert.True(t, w.Verify(key.Params(), v))

	// deleting the tracked element itself drops it from tracking
	_, err = mgr.Delete(alice, opts)
	require.NoError(t, err)
	_, err = mgr.TrackedWitness(alice, opts)
	assert.Error(t, err)

	// untracking stops maintenance
	require.NoError(t, mgr.Track(carol, opts))
	require.NoError(t, mgr.Untrack(carol, opts))
	_, err = mgr.TrackedWitness(carol, opts)
	assert.Error(t, err)
}

func TestWitnessUpdate(t *testing.T) {
	mgr, opts := testManager(t, nil)
	_, err := mgr.ImportKey(zk.SecretKey(), opts)
	require.NoError(t, err)

	alice := secpCredential(t)
	bob := secpCredential(t)

	v1, err := mgr.Add(alice, opts)
	require.NoError(t, err)
	key, err := mgr.GetKey(opts)
	require.NoError(t, err)

	w, err := mgr.Witness(alice, opts)
	require.NoError(t, err)
	assert.True(t, w.Verify(key.Params(), v1))

	// fold an addition into the caller-held witness
	bobX, err := mgr.Encode(bob)
	require.NoError(t, err)
	v2, err := mgr.Add(bob, opts)
	require.NoError(t, err)

	w2, err := mgr.UpdateWitness(w, &core.Update{Added: []*saferith.Nat{bobX}, Value: v2}, opts)
	require.NoError(t, err)
	assert.True(t, w2.Verify(key.Params(), v2))
	assert.False(t, w.Verify(key.Params(), v2), "the unfolded witness must be stale")

	// and a deletion
	v3, err := mgr.Delete(bob, opts)
	require.NoError(t, err)

	w3, err := mgr.UpdateWitness(w2, &core.Update{Deleted: []*saferith.Nat{bobX}, Value: v3}, opts)
	require.NoError(t, err)
	assert.True(t, w3.Verify(key.Params(), v3))

	// the witness cannot survive the deletion of its own element
	aliceX, err := mgr.Encode(alice)
	require.NoError(t, err)
	v4, err := mgr.Delete(alice, opts)
	require.NoError(t, err)

	_, err = mgr.UpdateWitness(w3, &core.Update{Deleted: []*saferith.Nat{aliceX}, Value: v4}, opts)
	assert.ErrorIs(t, err, core.ErrElementNotPresent)
}

func TestStaleTrackingRecovery(t *testing.T) {
	mgr, opts := testManager(t, nil)
	key, err := mgr.ImportKey(zk.SecretKey(), opts)
	require.NoError(t, err)
	empty, err := key.Bytes()
	require.NoError(t, err)

	alice := secpCredential(t)
	bob := secpCredential(t)
	_, err = mgr.Add(alice, opts)
	require.NoError(t, err)
	_, err = mgr.Add(bob, opts)
	require.NoError(t, err)
	require.NoError(t, mgr.Track(alice, opts))

	// roll the accumulator back underneath the tracked witness
	_, err = mgr.ImportKey(empty, opts)
	require.NoError(t, err)

	// the stored witness no longer matches and is recomputed
	v, err := mgr.Add(alice, opts)
	require.NoError(t, err)
	w, err := mgr.TrackedWitness(alice, opts)
	require.NoError(t, err)
	assert.True(t, w.Verify(key.Params(), v))
}

func TestStaleTrackingDisabled(t *testing.T) {
	mgr, opts := testManager(t, &Config{DisableRecompute: true})
	key, err := mgr.ImportKey(zk.SecretKey(), opts)
	require.NoError(t, err)
	empty, err := key.Bytes()
	require.NoError(t, err)

	alice := secpCredential(t)
	bob := secpCredential(t)
	_, err = mgr.Add(alice, opts)
	require.NoError(t, err)
	require.NoError(t, mgr.Track(alice, opts))

	_, err = mgr.ImportKey(empty, opts)
	require.NoError(t, err)

	_, err = mgr.Add(bob, opts)
	assert.ErrorIs(t, err, core.ErrStaleWitnessUnrecoverable)
}

func TestProveVerifyMembership(t *testing.T) {
	h := testHasher(t)
	mgr, opts := testManager(t, nil)
	_, err := mgr.ImportKey(zk.SecretKey(), opts)
	require.NoError(t, err)

	alice := secpCredential(t)
	bob := secpCredential(t)
	carol := edCredential(t, "carol")

	_, err = mgr.Add(alice, opts)
	require.NoError(t, err)
	_, err = mgr.Add(bob, opts)
	require.NoError(t, err)
	require.NoError(t, mgr.Track(alice, opts))

	// tracked element, proved from the maintained witness
	proof, err := mgr.ProveMembership(h.Clone(), alice, opts)
	require.NoError(t, err)
	ok, err := mgr.VerifyMembership(h.Clone(), proof, opts)
	require.NoError(t, err)
	assert.True(t, ok)

	// untracked element, witness computed on the fly
	proof2, err := mgr.ProveMembership(h.Clone(), bob, opts)
	require.NoError(t, err)
	ok, err = mgr.VerifyMembership(h.Clone(), proof2, opts)
	require.NoError(t, err)
	assert.True(t, ok)

	// absent element
	_, err = mgr.ProveMembership(h.Clone(), carol, opts)
	assert.ErrorIs(t, err, core.ErrElementNotPresent)

	// the challenge binds the verifier transcript
	diverged := h.Clone()
	require.NoError(t, diverged.WriteAny([]byte("divergence")))
	ok, err = mgr.VerifyMembership(diverged, proof, opts)
	require.NoError(t, err)
	assert.False(t, ok)

	// a proof does not survive a state change
	_, err = mgr.Delete(bob, opts)
	require.NoError(t, err)
	ok, err = mgr.VerifyMembership(h.Clone(), proof, opts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProveVerifyNonMembership(t *testing.T) {
	h := testHasher(t)
	mgr, opts := testManager(t, nil)
	_, err := mgr.ImportKey(zk.SecretKey(), opts)
	require.NoError(t, err)

	alice := secpCredential(t)
	carol := edCredential(t, "carol")

	_, err = mgr.Add(alice, opts)
	require.NoError(t, err)

	proof, err := mgr.ProveNonMembership(h.Clone(), carol, opts)
	require.NoError(t, err)
	ok, err := mgr.VerifyNonMembership(h.Clone(), carol, proof, opts)
	require.NoError(t, err)
	assert.True(t, ok)

	// members cannot be proven absent
	_, err = mgr.ProveNonMembership(h.Clone(), alice, opts)
	assert.ErrorIs(t, err, core.ErrElementIsMember)

	// the proof pins the accumulator value it was made against
	_, err = mgr.Add(carol, opts)
	require.NoError(t, err)
	ok, err = mgr.VerifyNonMembership(h.Clone(), carol, proof, opts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPublicKeyVerifies(t *testing.T) {
	h := testHasher(t)
	holder, hopts := testManager(t, nil)
	_, err := holder.ImportKey(zk.SecretKey(), hopts)
	require.NoError(t, err)

	alice := secpCredential(t)
	carol := edCredential(t, "carol")
	_, err = holder.Add(alice, hopts)
	require.NoError(t, err)

	key, err := holder.GetKey(hopts)
	require.NoError(t, err)
	pub, err := key.PublicKey().Bytes()
	require.NoError(t, err)

	// the verifier side only ever sees the public half of the key
	verifier, vopts := testManager(t, nil)
	vkey, err := verifier.ImportKey(pub, vopts)
	require.NoError(t, err)
	assert.False(t, vkey.Private())
	assert.Equal(t, key.SKI(), vkey.SKI())

	proof, err := holder.ProveMembership(h.Clone(), alice, hopts)
	require.NoError(t, err)
	ok, err := verifier.VerifyMembership(h.Clone(), proof, vopts)
	require.NoError(t, err)
	assert.True(t, ok)

	nproof, err := holder.ProveNonMembership(h.Clone(), carol, hopts)
	require.NoError(t, err)
	ok, err = verifier.VerifyNonMembership(h.Clone(), carol, nproof, vopts)
	require.NoError(t, err)
	assert.True(t, ok)
}

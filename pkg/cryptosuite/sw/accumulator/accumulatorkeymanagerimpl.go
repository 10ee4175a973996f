package accumulator

import (
	"encoding/hex"
	"sync"

	"github.com/cronokirby/saferith"
	core "github.com/mr-shifu/accumulator-lib/core/accumulator"
	"github.com/mr-shifu/accumulator-lib/core/encode"
	"github.com/mr-shifu/accumulator-lib/core/pool"
	zknonmem "github.com/mr-shifu/accumulator-lib/core/zk/nonmem"
	zkpoke "github.com/mr-shifu/accumulator-lib/core/zk/poke"
	"github.com/mr-shifu/accumulator-lib/lib/params"
	comm_accumulator "github.com/mr-shifu/accumulator-lib/pkg/common/cryptosuite/accumulator"
	comm_hash "github.com/mr-shifu/accumulator-lib/pkg/common/cryptosuite/hash"
	comm_keyopts "github.com/mr-shifu/accumulator-lib/pkg/common/keyopts"
	"github.com/mr-shifu/accumulator-lib/pkg/common/keystore"
	comm_witnessstore "github.com/mr-shifu/accumulator-lib/pkg/common/witnessstore"
	"github.com/mr-shifu/accumulator-lib/pkg/keyopts"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	// Bits is the modulus size of generated keys, default 2048.
	Bits int

	// DisableRecompute makes a tracked witness that cannot fold forward
	// surface ErrStaleWitnessUnrecoverable instead of being recomputed
	// from the current accumulator state.
	DisableRecompute bool
}

type AccumulatorKeyManager struct {
	keystore keystore.Keystore
	witstore comm_witnessstore.WitnessStore
	pl       *pool.Pool
	cfg      *Config

	// serializes accumulator mutations; reads go through the stores
	mtx sync.Mutex
}

var _ comm_accumulator.AccumulatorKeyManager = (*AccumulatorKeyManager)(nil)

func NewAccumulatorKeyManager(
	store keystore.Keystore,
	wstore comm_witnessstore.WitnessStore,
	pl *pool.Pool,
	cfg *Config) *AccumulatorKeyManager {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Bits == 0 {
		cfg.Bits = params.BitsModulus
	}
	return &AccumulatorKeyManager{
		keystore: store,
		witstore: wstore,
		pl:       pl,
		cfg:      cfg,
	}
}

// GenerateKey runs a trusted setup at the configured modulus size and
// stores the resulting key.
func (mgr *AccumulatorKeyManager) GenerateKey(opts comm_keyopts.Options) (comm_accumulator.AccumulatorKey, error) {
	sk, err := core.Setup(nil, mgr.pl, mgr.cfg.Bits)
	if err != nil {
		return nil, errors.WithMessage(err, "accumulator: failed to generate key")
	}

	return mgr.ImportKey(NewAccumulatorKey(sk, core.New(sk.Params)), opts)
}

// ImportKey imports an accumulator key from its byte representation, a
// core secret key or public parameters.
func (mgr *AccumulatorKeyManager) ImportKey(raw interface{}, opts comm_keyopts.Options) (comm_accumulator.AccumulatorKey, error) {
	var key *AccumulatorKey

	switch raw := raw.(type) {
	case []byte:
		k, err := fromBytes(raw)
		if err != nil {
			return nil, errors.WithMessage(err, "accumulator: failed to decode key")
		}
		// serialized material is untrusted, check the factors once here
		if k.Private() {
			if err := k.sk.Validate(); err != nil {
				return nil, err
			}
		}
		key = k
	case *core.SecretKey:
		key = NewAccumulatorKey(raw, core.New(raw.Params))
	case *core.Params:
		key = NewAccumulatorKey(nil, core.New(raw))
	case *AccumulatorKey:
		key = raw
	default:
		return nil, ErrInvalidKey
	}

	kb, err := key.Bytes()
	if err != nil {
		return nil, errors.WithMessage(err, "accumulator: failed to serialize key")
	}

	// get key SKI and encode it to hex string as keyID
	keyID := hex.EncodeToString(key.SKI())

	// import the serialized key to the keystore with keyID
	if err := mgr.keystore.Import(keyID, kb, opts); err != nil {
		return nil, errors.WithMessage(err, "accumulator: failed to import key to keystore")
	}

	return key, nil
}

// GetKey returns an accumulator key by its options.
func (mgr *AccumulatorKeyManager) GetKey(opts comm_keyopts.Options) (comm_accumulator.AccumulatorKey, error) {
	key, err := mgr.getKey(opts)
	if err != nil {
		return nil, err
	}
	return key, nil
}

// Encode maps opaque credential data to an accumulatable prime element.
func (mgr *AccumulatorKeyManager) Encode(data []byte) (*saferith.Nat, error) {
	return encode.ToPrime(data)
}

// Add accumulates the element encoding data, persists the new state and
// folds every tracked witness forward. The new value is returned.
func (mgr *AccumulatorKeyManager) Add(data []byte, opts comm_keyopts.Options) (*saferith.Nat, error) {
	mgr.mtx.Lock()
	defer mgr.mtx.Unlock()

	x, err := encode.ToPrime(data)
	if err != nil {
		return nil, errors.WithMessage(err, "accumulator: failed to encode element")
	}

	key, err := mgr.getKey(opts)
	if err != nil {
		return nil, err
	}

	if err := key.acc.Add(x); err != nil {
		return nil, err
	}

	if err := mgr.persist(key, opts); err != nil {
		return nil, err
	}

	u := &core.Update{Added: []*saferith.Nat{x}, Value: key.acc.Value()}
	if err := mgr.foldTracked(key, u, opts); err != nil {
		return nil, err
	}

	return key.acc.Value(), nil
}

// Delete removes the element encoding data, persists the new state and
// folds every tracked witness forward. The new value is returned.
func (mgr *AccumulatorKeyManager) Delete(data []byte, opts comm_keyopts.Options) (*saferith.Nat, error) {
	mgr.mtx.Lock()
	defer mgr.mtx.Unlock()

	x, err := encode.ToPrime(data)
	if err != nil {
		return nil, errors.WithMessage(err, "accumulator: failed to encode element")
	}

	key, err := mgr.getKey(opts)
	if err != nil {
		return nil, err
	}

	if err := key.acc.Delete(x); err != nil {
		return nil, err
	}

	if err := mgr.persist(key, opts); err != nil {
		return nil, err
	}

	u := &core.Update{Deleted: []*saferith.Nat{x}, Value: key.acc.Value()}
	if err := mgr.foldTracked(key, u, opts); err != nil {
		return nil, err
	}

	return key.acc.Value(), nil
}

// Track registers the element for witness maintenance: its membership
// witness is stored and kept current by Add and Delete.
func (mgr *AccumulatorKeyManager) Track(data []byte, opts comm_keyopts.Options) error {
	mgr.mtx.Lock()
	defer mgr.mtx.Unlock()

	x, err := encode.ToPrime(data)
	if err != nil {
		return errors.WithMessage(err, "accumulator: failed to encode element")
	}

	key, err := mgr.getKey(opts)
	if err != nil {
		return err
	}

	w, err := key.acc.MembershipWitness(x)
	if err != nil {
		return err
	}

	wopts, err := elementOpts(opts, x)
	if err != nil {
		return err
	}

	return mgr.witstore.Import(&comm_witnessstore.Witness{Witness: w}, wopts)
}

// Untrack drops the element from witness maintenance.
func (mgr *AccumulatorKeyManager) Untrack(data []byte, opts comm_keyopts.Options) error {
	mgr.mtx.Lock()
	defer mgr.mtx.Unlock()

	x, err := encode.ToPrime(data)
	if err != nil {
		return errors.WithMessage(err, "accumulator: failed to encode element")
	}

	wopts, err := elementOpts(opts, x)
	if err != nil {
		return err
	}

	return mgr.witstore.Delete(wopts)
}

// TrackedWitness returns the maintained witness for the element.
func (mgr *AccumulatorKeyManager) TrackedWitness(data []byte, opts comm_keyopts.Options) (*core.MembershipWitness, error) {
	x, err := encode.ToPrime(data)
	if err != nil {
		return nil, errors.WithMessage(err, "accumulator: failed to encode element")
	}

	wopts, err := elementOpts(opts, x)
	if err != nil {
		return nil, err
	}

	rec, err := mgr.witstore.Get(wopts)
	if err != nil {
		return nil, errors.WithMessage(err, "accumulator: element is not tracked")
	}

	return rec.Witness, nil
}

// Witness computes a fresh membership witness for the element.
func (mgr *AccumulatorKeyManager) Witness(data []byte, opts comm_keyopts.Options) (*core.MembershipWitness, error) {
	x, err := encode.ToPrime(data)
	if err != nil {
		return nil, errors.WithMessage(err, "accumulator: failed to encode element")
	}

	key, err := mgr.getKey(opts)
	if err != nil {
		return nil, err
	}

	return key.acc.MembershipWitness(x)
}

// UpdateWitness folds an accumulator update into a caller-held witness.
func (mgr *AccumulatorKeyManager) UpdateWitness(w *core.MembershipWitness, u *core.Update, opts comm_keyopts.Options) (*core.MembershipWitness, error) {
	key, err := mgr.getKey(opts)
	if err != nil {
		return nil, err
	}

	return w.Update(key.acc.Params(), u)
}

// NonMembershipWitness computes a non-membership witness for the element.
func (mgr *AccumulatorKeyManager) NonMembershipWitness(data []byte, opts comm_keyopts.Options) (*core.NonMembershipWitness, error) {
	x, err := encode.ToPrime(data)
	if err != nil {
		return nil, errors.WithMessage(err, "accumulator: failed to encode element")
	}

	key, err := mgr.getKey(opts)
	if err != nil {
		return nil, err
	}

	return key.acc.NonMembershipWitness(x)
}

// ProveMembership proves that data is accumulated, using the tracked
// witness when the element is tracked and computing one otherwise.
func (mgr *AccumulatorKeyManager) ProveMembership(h comm_hash.Hash, data []byte, opts comm_keyopts.Options) (*zkpoke.Proof, error) {
	x, err := encode.ToPrime(data)
	if err != nil {
		return nil, errors.WithMessage(err, "accumulator: failed to encode element")
	}

	key, err := mgr.getKey(opts)
	if err != nil {
		return nil, err
	}

	wopts, err := elementOpts(opts, x)
	if err != nil {
		return nil, err
	}

	var w *core.MembershipWitness
	if rec, err := mgr.witstore.Get(wopts); err == nil {
		w = rec.Witness
	} else {
		w, err = key.acc.MembershipWitness(x)
		if err != nil {
			return nil, err
		}
	}

	public := zkpoke.Public{Params: key.acc.Params(), Acc: key.acc.Value()}
	return zkpoke.NewProof(h, public, zkpoke.Private{W: w.W, X: x}), nil
}

// VerifyMembership verifies a membership proof against the stored
// accumulator state.
func (mgr *AccumulatorKeyManager) VerifyMembership(h comm_hash.Hash, proof *zkpoke.Proof, opts comm_keyopts.Options) (bool, error) {
	key, err := mgr.getKey(opts)
	if err != nil {
		return false, err
	}

	public := zkpoke.Public{Params: key.acc.Params(), Acc: key.acc.Value()}
	return proof.Verify(h, public), nil
}

// ProveNonMembership proves that data is not accumulated.
func (mgr *AccumulatorKeyManager) ProveNonMembership(h comm_hash.Hash, data []byte, opts comm_keyopts.Options) (*zknonmem.Proof, error) {
	x, err := encode.ToPrime(data)
	if err != nil {
		return nil, errors.WithMessage(err, "accumulator: failed to encode element")
	}

	key, err := mgr.getKey(opts)
	if err != nil {
		return nil, err
	}

	w, err := key.acc.NonMembershipWitness(x)
	if err != nil {
		return nil, err
	}

	public := zknonmem.Public{Params: key.acc.Params(), Acc: key.acc.Value(), X: x}
	return zknonmem.NewProof(h, public, zknonmem.Private{Witness: w}), nil
}

// VerifyNonMembership verifies a non-membership proof for data against
// the stored accumulator state.
func (mgr *AccumulatorKeyManager) VerifyNonMembership(h comm_hash.Hash, data []byte, proof *zknonmem.Proof, opts comm_keyopts.Options) (bool, error) {
	x, err := encode.ToPrime(data)
	if err != nil {
		return false, errors.WithMessage(err, "accumulator: failed to encode element")
	}

	key, err := mgr.getKey(opts)
	if err != nil {
		return false, err
	}

	public := zknonmem.Public{Params: key.acc.Params(), Acc: key.acc.Value(), X: x}
	return proof.Verify(h, public), nil
}

func (mgr *AccumulatorKeyManager) getKey(opts comm_keyopts.Options) (*AccumulatorKey, error) {
	decoded, err := mgr.keystore.Get(opts)
	if err != nil {
		return nil, errors.WithMessage(err, "accumulator: failed to get key from keystore")
	}

	key, err := fromBytes(decoded)
	if err != nil {
		return nil, errors.WithMessage(err, "accumulator: failed to decode key")
	}

	return key, nil
}

func (mgr *AccumulatorKeyManager) persist(key *AccumulatorKey, opts comm_keyopts.Options) error {
	kb, err := key.Bytes()
	if err != nil {
		return errors.WithMessage(err, "accumulator: failed to serialize key")
	}

	if err := mgr.keystore.Update(kb, opts); err != nil {
		return errors.WithMessage(err, "accumulator: failed to persist accumulator state")
	}

	return nil
}

// foldTracked folds an accumulator update into every tracked witness. A
// witness whose own element left the set is dropped from tracking; one
// that cannot fold forward is recomputed from the current state unless
// recomputation is disabled.
func (mgr *AccumulatorKeyManager) foldTracked(key *AccumulatorKey, u *core.Update, opts comm_keyopts.Options) error {
	tracked, err := mgr.witstore.GetAll(opts)
	if err != nil {
		return errors.WithMessage(err, "accumulator: failed to enumerate tracked witnesses")
	}
	if len(tracked) == 0 {
		return nil
	}

	var errGroup errgroup.Group
	for _, rec := range tracked {
		rec := rec
		errGroup.Go(func() error {
			wopts, err := elementOpts(opts, rec.Witness.X)
			if err != nil {
				return err
			}

			next, err := rec.Witness.Update(key.acc.Params(), u)
			if err == nil && !next.Verify(key.acc.Params(), u.Value) {
				// the stored witness did not match the previous state
				err = core.ErrStaleWitnessUnrecoverable
			}
			switch {
			case err == nil:
			case errors.Is(err, core.ErrElementNotPresent):
				return mgr.witstore.Delete(wopts)
			default:
				if mgr.cfg.DisableRecompute {
					return core.ErrStaleWitnessUnrecoverable
				}
				next, err = key.acc.MembershipWitness(rec.Witness.X)
				if errors.Is(err, core.ErrElementNotPresent) {
					return mgr.witstore.Delete(wopts)
				}
				if err != nil {
					return errors.WithMessage(err, "accumulator: failed to recompute witness")
				}
			}

			return mgr.witstore.Import(&comm_witnessstore.Witness{Witness: next}, wopts)
		})
	}

	return errGroup.Wait()
}

// elementOpts derives the witness store coordinates of an element: the
// key ID carried by opts and the element fingerprint as scope.
func elementOpts(opts comm_keyopts.Options, x *saferith.Nat) (comm_keyopts.Options, error) {
	v, ok := opts.Get("id")
	if !ok {
		return nil, errors.New("accumulator: options missing id")
	}
	kid, ok := v.(string)
	if !ok {
		return nil, errors.New("accumulator: options missing id")
	}

	wopts, err := keyopts.NewOptions().Set("id", kid, "scope", core.Fingerprint(x))
	if err != nil {
		return nil, errors.WithMessage(err, "accumulator: failed to create options")
	}

	return wopts, nil
}

package accumulator

import (
	"crypto/sha256"
	"errors"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	core "github.com/mr-shifu/accumulator-lib/core/accumulator"
	"github.com/mr-shifu/accumulator-lib/core/math/arith"
	"github.com/mr-shifu/accumulator-lib/lib/params"
	comm_accumulator "github.com/mr-shifu/accumulator-lib/pkg/common/cryptosuite/accumulator"
)

var (
	ErrInvalidKey = errors.New("invalid key")
)

// AccumulatorKey wraps accumulation parameters together with the current
// accumulator state. A private key carries the safe prime factorization
// and takes the totient shortcuts; a public key accumulates and verifies
// over (n, g) alone.
type AccumulatorKey struct {
	sk  *core.SecretKey // nil for a public key
	acc *core.Accumulator
}

type rawAccumulatorKey struct {
	N       []byte
	G       []byte
	P       []byte
	Q       []byte
	Value   []byte
	Members [][]byte
}

var _ comm_accumulator.AccumulatorKey = (*AccumulatorKey)(nil)

func NewAccumulatorKey(sk *core.SecretKey, acc *core.Accumulator) *AccumulatorKey {
	return &AccumulatorKey{
		sk:  sk,
		acc: acc,
	}
}

// Bytes returns the byte representation of the key. Integer fields are
// fixed width, modulus sized except for members which are element sized.
func (k *AccumulatorKey) Bytes() ([]byte, error) {
	p := k.acc.Params()
	size := p.ByteSize()

	raw := &rawAccumulatorKey{
		N:     arith.FixedBytes(p.N().Nat(), size),
		G:     arith.FixedBytes(p.G(), size),
		Value: arith.FixedBytes(k.acc.Value(), size),
	}

	if k.Private() {
		raw.P = arith.FixedBytes(k.sk.P(), size)
		raw.Q = arith.FixedBytes(k.sk.Q(), size)
	}

	members := k.acc.Members()
	raw.Members = make([][]byte, len(members))
	for i, x := range members {
		raw.Members[i] = arith.FixedBytes(x, params.BytesElement)
	}

	return cbor.Marshal(raw)
}

// SKI returns the serialized key identifier, a SHA-256 digest over the
// fixed width encoding of (n, g). Public and private halves of the same
// key share one SKI.
func (k *AccumulatorKey) SKI() []byte {
	h := sha256.New()
	if _, err := k.acc.Params().WriteTo(h); err != nil {
		return nil
	}
	return h.Sum(nil)
}

// Private returns true if the key holds the modulus factorization.
func (k *AccumulatorKey) Private() bool {
	return k.sk != nil
}

// PublicKey returns the corresponding public key part of the Accumulator
// Key: the same accumulator state over parameters stripped of the
// factorization.
func (k *AccumulatorKey) PublicKey() comm_accumulator.AccumulatorKey {
	p := k.acc.Params()
	if k.Private() {
		p = k.sk.Public()
	}

	acc, err := core.Restore(p, k.acc.Value(), k.acc.Members())
	if err != nil {
		return nil
	}

	return &AccumulatorKey{acc: acc}
}

// Params returns the raw accumulation parameters.
func (k *AccumulatorKey) Params() *core.Params {
	return k.acc.Params()
}

// Value returns the current accumulator value.
func (k *AccumulatorKey) Value() *saferith.Nat {
	return k.acc.Value()
}

func (k *AccumulatorKey) Contains(x *saferith.Nat) bool {
	return k.acc.Contains(x)
}

func (k *AccumulatorKey) Len() int {
	return k.acc.Len()
}

func fromBytes(data []byte) (*AccumulatorKey, error) {
	raw := &rawAccumulatorKey{}
	if err := cbor.Unmarshal(data, raw); err != nil {
		return nil, err
	}
	if len(raw.N) == 0 || len(raw.G) == 0 || len(raw.Value) == 0 {
		return nil, ErrInvalidKey
	}

	g := new(saferith.Nat).SetBytes(raw.G)

	key := &AccumulatorKey{}

	var p *core.Params
	if len(raw.P) != 0 && len(raw.Q) != 0 {
		sk, err := core.RestoreSecretKey(
			new(saferith.Nat).SetBytes(raw.P),
			new(saferith.Nat).SetBytes(raw.Q),
			g,
		)
		if err != nil {
			return nil, err
		}
		key.sk = sk
		p = sk.Params
	} else {
		pub, err := core.NewParams(saferith.ModulusFromBytes(raw.N), g)
		if err != nil {
			return nil, err
		}
		p = pub
	}

	members := make([]*saferith.Nat, len(raw.Members))
	for i, mb := range raw.Members {
		members[i] = new(saferith.Nat).SetBytes(mb)
	}

	acc, err := core.Restore(p, new(saferith.Nat).SetBytes(raw.Value), members)
	if err != nil {
		return nil, err
	}
	key.acc = acc

	return key, nil
}

package accumulator

import (
	"github.com/cronokirby/saferith"
	core "github.com/mr-shifu/accumulator-lib/core/accumulator"
	zknonmem "github.com/mr-shifu/accumulator-lib/core/zk/nonmem"
	zkpoke "github.com/mr-shifu/accumulator-lib/core/zk/poke"
	"github.com/mr-shifu/accumulator-lib/pkg/common/cryptosuite/hash"
	"github.com/mr-shifu/accumulator-lib/pkg/common/keyopts"
)

type AccumulatorKey interface {
	// Bytes returns the byte representation of the key.
	Bytes() ([]byte, error)

	// SKI returns the serialized key identifier.
	SKI() []byte

	// Private returns true if the key holds the modulus factorization.
	Private() bool

	// PublicKey returns the corresponding public key part of the Accumulator Key.
	PublicKey() AccumulatorKey

	// Params returns the raw accumulation parameters.
	Params() *core.Params

	// Value returns the current accumulator value.
	Value() *saferith.Nat

	Contains(x *saferith.Nat) bool

	Len() int
}

type AccumulatorKeyManager interface {
	// GenerateKey generates a new accumulator key pair.
	GenerateKey(opts keyopts.Options) (AccumulatorKey, error)

	// ImportKey imports an accumulator key from its byte representation.
	ImportKey(raw interface{}, opts keyopts.Options) (AccumulatorKey, error)

	// GetKey returns an accumulator key by its options.
	GetKey(opts keyopts.Options) (AccumulatorKey, error)

	// Encode maps opaque credential data to an accumulatable prime element.
	Encode(data []byte) (*saferith.Nat, error)

	// Add accumulates the element encoding data and returns the new value.
	Add(data []byte, opts keyopts.Options) (*saferith.Nat, error)

	// Delete removes the element encoding data and returns the new value.
	Delete(data []byte, opts keyopts.Options) (*saferith.Nat, error)

	// Track registers the element encoding data for witness maintenance.
	Track(data []byte, opts keyopts.Options) error

	// Untrack drops the element from witness maintenance.
	Untrack(data []byte, opts keyopts.Options) error

	// TrackedWitness returns the maintained witness for the element.
	TrackedWitness(data []byte, opts keyopts.Options) (*core.MembershipWitness, error)

	// Witness computes a fresh membership witness for the element.
	Witness(data []byte, opts keyopts.Options) (*core.MembershipWitness, error)

	// UpdateWitness folds an accumulator update into a caller-held witness.
	UpdateWitness(w *core.MembershipWitness, u *core.Update, opts keyopts.Options) (*core.MembershipWitness, error)

	// NonMembershipWitness computes a non-membership witness for the element.
	NonMembershipWitness(data []byte, opts keyopts.Options) (*core.NonMembershipWitness, error)

	ProveMembership(h hash.Hash, data []byte, opts keyopts.Options) (*zkpoke.Proof, error)

	VerifyMembership(h hash.Hash, proof *zkpoke.Proof, opts keyopts.Options) (bool, error)

	ProveNonMembership(h hash.Hash, data []byte, opts keyopts.Options) (*zknonmem.Proof, error)

	VerifyNonMembership(h hash.Hash, data []byte, proof *zknonmem.Proof, opts keyopts.Options) (bool, error)
}

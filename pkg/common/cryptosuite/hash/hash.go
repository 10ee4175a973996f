package hash

import (
	"io"

	core_hash "github.com/mr-shifu/accumulator-lib/core/hash"
	"github.com/mr-shifu/accumulator-lib/pkg/common/keyopts"
)

// Hash is an accumulating transcript hash. Writes are framed with their
// domain so the proof challenges derived from Digest bind the full
// transcript.
type Hash interface {
	Digest() io.Reader
	Sum() []byte
	WriteAny(...interface{}) error
	Clone() Hash
	Commit(data ...interface{}) (core_hash.Commitment, core_hash.Decommitment, error)
	Decommit(c core_hash.Commitment, d core_hash.Decommitment, data ...interface{}) bool
}

type HashManager interface {
	NewHasher(keyID string, opts keyopts.Options, data ...core_hash.WriterToWithDomain) Hash
	RestoreHasher(keyID string, opts keyopts.Options) (Hash, error)
}

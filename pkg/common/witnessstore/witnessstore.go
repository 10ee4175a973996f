package witnessstore

import (
	core "github.com/mr-shifu/accumulator-lib/core/accumulator"
	"github.com/mr-shifu/accumulator-lib/pkg/common/keyopts"
)

// Witness is one tracked membership witness. The record keeps the
// witness current across accumulator updates; ID is assigned by the
// store on import.
type Witness struct {
	ID      string
	Witness *core.MembershipWitness
}

type WitnessStore interface {
	// Import files a witness under the ID and scope carried by opts,
	// replacing any witness already filed there.
	Import(w *Witness, opts keyopts.Options) error

	// Get returns the witness for the ID and scope in opts.
	Get(opts keyopts.Options) (*Witness, error)

	// GetAll returns all witnesses filed under the ID in opts.
	GetAll(opts keyopts.Options) ([]*Witness, error)

	// Delete removes the witness for the ID and scope in opts.
	Delete(opts keyopts.Options) error

	// DeleteAll removes all witnesses filed under the ID in opts.
	DeleteAll(opts keyopts.Options) error
}

package keyopts

// KeyData locates one stored key: the scope it was filed under and the
// SKI of the key material in the backing store.
type KeyData struct {
	Scope string
	SKI   string
}

type Options interface {
	Set(kVs ...interface{}) (Options, error)
	Get(key string) (interface{}, bool)
}

// KeyOpts manages the storage of key metadata referred to by an ID (an
// accumulator key ID). Within one ID, entries are distinguished by a
// scope: the key state itself, a transcript, or an element fingerprint
// for witnesses.
type KeyOpts interface {
	// Import files key metadata under the ID and scope carried by opts.
	// data is the SKI of the stored key material.
	Import(data interface{}, opts Options) error

	// Get returns the key metadata for the ID and scope in opts.
	Get(opts Options) (*KeyData, error)

	// GetAll returns all metadata filed under the ID in opts, keyed by scope.
	GetAll(opts Options) (map[string]*KeyData, error)

	// Delete removes the metadata for the ID and scope in opts.
	Delete(opts Options) error

	// DeleteAll removes all metadata filed under the ID in opts.
	DeleteAll(opts Options) error
}

package keystore

import "github.com/mr-shifu/accumulator-lib/pkg/common/keyopts"

// Keystore stores serialized key material in a vault, addressed by the
// ID and scope coordinates carried in Options.
type Keystore interface {
	// Import stores key bytes under their SKI and files the metadata.
	Import(ski string, key []byte, opts keyopts.Options) error

	// Update replaces the key bytes of an already imported key.
	Update(key []byte, opts keyopts.Options) error

	// Get returns the key bytes for the coordinates in opts.
	Get(opts keyopts.Options) ([]byte, error)

	// Delete removes the key bytes and metadata for the coordinates in opts.
	Delete(opts keyopts.Options) error

	// DeleteAll removes every key filed under the ID in opts.
	DeleteAll(opts keyopts.Options) error

	// KeyAccessor binds a single key's coordinates for repeated access.
	KeyAccessor(ski string, opts keyopts.Options) KeyAccessor
}

// KeyAccessor reads and writes one key without re-supplying coordinates.
type KeyAccessor interface {
	Import(key []byte) error
	Get() ([]byte, error)
	Delete() error
}

package vault

// Vault is the backing store for serialized key material, addressed by
// SKI. Implementations must be safe for concurrent use.
type Vault interface {
	Import(keyID string, key []byte) error
	Get(keyID string) ([]byte, error)
	Exists(keyID string) (bool, error)
	Delete(keyID string) error
}

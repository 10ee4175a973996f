package keystore

import (
	"errors"

	"github.com/mr-shifu/accumulator-lib/pkg/common/keyopts"
	"github.com/mr-shifu/accumulator-lib/pkg/common/keystore"
	"github.com/mr-shifu/accumulator-lib/pkg/common/vault"
)

var (
	ErrKeyNotFound = errors.New("keystore: key not found")
)

type InMemoryKeystore struct {
	v  vault.Vault
	kr keyopts.KeyOpts
}

var _ keystore.Keystore = (*InMemoryKeystore)(nil)

func NewInMemoryKeystore(v vault.Vault, kr keyopts.KeyOpts) *InMemoryKeystore {
	return &InMemoryKeystore{
		v:  v,
		kr: kr,
	}
}

func (ks *InMemoryKeystore) Import(ski string, key []byte, opts keyopts.Options) error {
	// store key material to vault
	if err := ks.v.Import(ski, key); err != nil {
		return err
	}

	// file key metadata under the opts coordinates
	return ks.kr.Import(ski, opts)
}

func (ks *InMemoryKeystore) Update(key []byte, opts keyopts.Options) error {
	kd, err := ks.kr.Get(opts)
	if err != nil {
		return err
	}
	if kd.SKI == "" {
		return ErrKeyNotFound
	}
	return ks.v.Import(kd.SKI, key)
}

func (ks *InMemoryKeystore) Get(opts keyopts.Options) ([]byte, error) {
	kd, err := ks.kr.Get(opts)
	if err != nil {
		return nil, err
	}
	return ks.v.Get(kd.SKI)
}

func (ks *InMemoryKeystore) Delete(opts keyopts.Options) error {
	kd, err := ks.kr.Get(opts)
	if err != nil {
		return err
	}

	if err := ks.v.Delete(kd.SKI); err != nil {
		return err
	}

	return ks.kr.Delete(opts)
}

func (ks *InMemoryKeystore) DeleteAll(opts keyopts.Options) error {
	keys, err := ks.kr.GetAll(opts)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := ks.v.Delete(key.SKI); err != nil {
			return err
		}
	}

	return ks.kr.DeleteAll(opts)
}

func (ks *InMemoryKeystore) KeyAccessor(ski string, opts keyopts.Options) keystore.KeyAccessor {
	return NewInMemoryKeyAccessor(ski, opts, ks)
}

package keyopts

import (
	"errors"
	"sync"

	"github.com/mr-shifu/accumulator-lib/pkg/common/keyopts"
)

var (
	ErrInvalidParamsKeyID = errors.New("keyopts: invalid keyID")
	ErrInvalidParamsScope = errors.New("keyopts: invalid scope")
	ErrKeyNotFound        = errors.New("keyopts: key not found")
)

type Keys map[string]*keyopts.KeyData

type KeyOpts struct {
	lock sync.RWMutex

	// keys maps accumulator key ID to a map of scope to key metadata{SKI}.
	keys map[string]Keys
}

func NewInMemoryKeyOpts() *KeyOpts {
	return &KeyOpts{
		keys: make(map[string]Keys),
	}
}

// coordinates extracts the ("id", "scope") pair from opts.
func coordinates(opts keyopts.Options) (string, string, error) {
	ID, ok := opts.Get("id")
	if !ok {
		return "", "", ErrInvalidParamsKeyID
	}
	kid, ok := ID.(string)
	if !ok {
		return "", "", ErrInvalidParamsKeyID
	}

	scope, ok := opts.Get("scope")
	if !ok {
		return "", "", ErrInvalidParamsScope
	}
	sc, ok := scope.(string)
	if !ok {
		return "", "", ErrInvalidParamsScope
	}

	return kid, sc, nil
}

func keyID(opts keyopts.Options) (string, error) {
	ID, ok := opts.Get("id")
	if !ok {
		return "", ErrInvalidParamsKeyID
	}
	kid, ok := ID.(string)
	if !ok {
		return "", ErrInvalidParamsKeyID
	}
	return kid, nil
}

func (kr *KeyOpts) Import(data interface{}, opts keyopts.Options) error {
	kr.lock.Lock()
	defer kr.lock.Unlock()

	kid, sc, err := coordinates(opts)
	if err != nil {
		return err
	}

	ski, ok := data.(string)
	if !ok {
		return errors.New("keyopts: invalid data")
	}

	if _, ok := kr.keys[kid]; !ok {
		kr.keys[kid] = make(Keys)
	}
	kr.keys[kid][sc] = &keyopts.KeyData{
		Scope: sc,
		SKI:   ski,
	}

	return nil
}

func (kr *KeyOpts) Get(opts keyopts.Options) (*keyopts.KeyData, error) {
	kr.lock.RLock()
	defer kr.lock.RUnlock()

	kid, sc, err := coordinates(opts)
	if err != nil {
		return nil, err
	}

	ks, ok := kr.keys[kid]
	if !ok {
		return nil, ErrKeyNotFound
	}
	k, ok := ks[sc]
	if !ok {
		return nil, ErrKeyNotFound
	}

	return k, nil
}

func (kr *KeyOpts) GetAll(opts keyopts.Options) (map[string]*keyopts.KeyData, error) {
	kr.lock.RLock()
	defer kr.lock.RUnlock()

	kid, err := keyID(opts)
	if err != nil {
		return nil, err
	}

	// an ID with nothing filed is an empty enumeration, not an error
	ks := kr.keys[kid]

	result := make(map[string]*keyopts.KeyData, len(ks))
	for sc, key := range ks {
		result[sc] = key
	}
	return result, nil
}

func (kr *KeyOpts) Delete(opts keyopts.Options) error {
	kr.lock.Lock()
	defer kr.lock.Unlock()

	kid, sc, err := coordinates(opts)
	if err != nil {
		return err
	}

	ks, ok := kr.keys[kid]
	if !ok {
		return ErrKeyNotFound
	}
	delete(ks, sc)

	return nil
}

func (kr *KeyOpts) DeleteAll(opts keyopts.Options) error {
	kr.lock.Lock()
	defer kr.lock.Unlock()

	kid, err := keyID(opts)
	if err != nil {
		return err
	}
	delete(kr.keys, kid)

	return nil
}

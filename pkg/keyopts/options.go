package keyopts

import (
	"errors"

	com_keyopts "github.com/mr-shifu/accumulator-lib/pkg/common/keyopts"
)

type Options map[string]interface{}

var _ com_keyopts.Options = Options{}

func NewOptions() Options {
	return make(Options)
}

func (opts Options) Set(kVs ...interface{}) (com_keyopts.Options, error) {
	if len(kVs)%2 != 0 {
		return nil, errors.New("keyopts: odd number of key/values")
	}

	for i := 0; i < len(kVs); i += 2 {
		key, ok := kVs[i].(string)
		if !ok {
			return nil, errors.New("keyopts: option key is not a string")
		}
		opts[key] = kVs[i+1]
	}

	return opts, nil
}

func (opts Options) Get(key string) (interface{}, bool) {
	val, ok := opts[key]
	return val, ok
}

package witnessstore

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/mr-shifu/accumulator-lib/pkg/common/keyopts"
	"github.com/mr-shifu/accumulator-lib/pkg/common/witnessstore"
)

var (
	ErrWitnessNotFound = errors.New("witnessstore: witness not found")
)

type InMemoryWitnessStore struct {
	lock      sync.RWMutex
	witnesses map[string]*witnessstore.Witness
	kr        keyopts.KeyOpts
}

var _ witnessstore.WitnessStore = (*InMemoryWitnessStore)(nil)

func NewInMemoryWitnessStore(kr keyopts.KeyOpts) *InMemoryWitnessStore {
	return &InMemoryWitnessStore{
		witnesses: make(map[string]*witnessstore.Witness),
		kr:        kr,
	}
}

func (s *InMemoryWitnessStore) Import(w *witnessstore.Witness, opts keyopts.Options) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if w == nil || w.Witness == nil {
		return errors.New("witnessstore: nil witness")
	}

	// an existing record under the same coordinates is replaced in place
	if kd, err := s.kr.Get(opts); err == nil {
		w.ID = kd.SKI
		s.witnesses[kd.SKI] = w
		return nil
	}

	id := uuid.New().String()
	w.ID = id
	s.witnesses[id] = w

	return s.kr.Import(id, opts)
}

func (s *InMemoryWitnessStore) Get(opts keyopts.Options) (*witnessstore.Witness, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	kd, err := s.kr.Get(opts)
	if err != nil {
		return nil, err
	}

	w, ok := s.witnesses[kd.SKI]
	if !ok {
		return nil, ErrWitnessNotFound
	}

	return w, nil
}

func (s *InMemoryWitnessStore) GetAll(opts keyopts.Options) ([]*witnessstore.Witness, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	kds, err := s.kr.GetAll(opts)
	if err != nil {
		return nil, err
	}

	ws := make([]*witnessstore.Witness, 0, len(kds))
	for _, kd := range kds {
		if w, ok := s.witnesses[kd.SKI]; ok {
			ws = append(ws, w)
		}
	}

	return ws, nil
}

func (s *InMemoryWitnessStore) Delete(opts keyopts.Options) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	kd, err := s.kr.Get(opts)
	if err != nil {
		return err
	}

	delete(s.witnesses, kd.SKI)

	return s.kr.Delete(opts)
}

func (s *InMemoryWitnessStore) DeleteAll(opts keyopts.Options) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	kds, err := s.kr.GetAll(opts)
	if err != nil {
		return err
	}
	for _, kd := range kds {
		delete(s.witnesses, kd.SKI)
	}

	return s.kr.DeleteAll(opts)
}

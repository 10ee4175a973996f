package sample

import (
	"io"
	"math/big"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/mr-shifu/accumulator-lib/core/pool"
	"github.com/mr-shifu/accumulator-lib/lib/params"
)

// sieveBound is the exclusive upper bound on the small primes used to
// pre-filter safe prime candidates before running Miller-Rabin.
const sieveBound = 1 << 12

var (
	smallPrimes     []*big.Int
	smallPrimesOnce sync.Once
)

func initSmallPrimes() {
	composite := make([]bool, sieveBound)
	for i := 3; i*i < sieveBound; i += 2 {
		if composite[i] {
			continue
		}
		for j := i * i; j < sieveBound; j += i {
			composite[j] = true
		}
	}
	for i := 3; i < sieveBound; i += 2 {
		if !composite[i] {
			smallPrimes = append(smallPrimes, big.NewInt(int64(i)))
		}
	}
}

// trySafePrime reads a candidate of the given bit size and returns it if
// both p and (p-1)/2 are probably prime, nil otherwise.
func trySafePrime(rand io.Reader, bits int) *saferith.Nat {
	smallPrimesOnce.Do(initSmallPrimes)

	buf := make([]byte, bits/8)
	mustReadBits(rand, buf)

	// p = 3 mod 4 forces (p-1)/2 odd, a precondition for p safe.
	buf[bits/8-1] |= 3
	// Setting the top two bits keeps products of two such primes at
	// exactly twice the bit size.
	buf[0] |= 0xC0

	p := new(big.Int).SetBytes(buf)

	// p = 0 mod r rules out p, p = 1 mod r rules out q = (p-1)/2.
	m := new(big.Int)
	for _, r := range smallPrimes {
		switch m.Mod(p, r).Uint64() {
		case 0, 1:
			return nil
		}
	}

	q := new(big.Int).Rsh(p, 1)
	if !q.ProbablyPrime(params.PrimalityIterations) {
		return nil
	}
	if !p.ProbablyPrime(params.PrimalityIterations) {
		return nil
	}

	return new(saferith.Nat).SetBig(p, bits)
}

// SafePrime generates a random safe prime of the given bit size.
// bits must be a multiple of 8.
func SafePrime(rand io.Reader, bits int) *saferith.Nat {
	for {
		if p := trySafePrime(rand, bits); p != nil {
			return p
		}
	}
}

// SafePrimes generates two distinct random safe primes of the given bit
// size, using the pool to parallelize the search.
func SafePrimes(rand io.Reader, pl *pool.Pool, bits int) (p, q *saferith.Nat) {
	reader := pool.NewLockedReader(rand)
	results := pl.Search(2, func() interface{} {
		if sp := trySafePrime(reader, bits); sp != nil {
			return sp
		}
		return nil
	})
	p = results[0].(*saferith.Nat)
	q = results[1].(*saferith.Nat)
	return p, q
}

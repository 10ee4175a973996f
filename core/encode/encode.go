// Package encode deterministically maps arbitrary byte strings to prime
// numbers usable as accumulator elements.
//
// The mapping is hash-then-increment: the input is hashed to a fixed-width
// odd integer with the high bit set, then odd candidates are probed upward
// until one passes probabilistic primality testing. Equal inputs always
// yield equal primes, so the encoding can be recomputed independently by
// any party holding the same bytes.
package encode

import (
	"errors"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/mr-shifu/accumulator-lib/lib/params"
	"golang.org/x/crypto/sha3"
)

var ErrExhausted = errors.New("probe bound exceeded without finding a prime")

// ToPrime encodes data as a probable prime of exactly params.BitsElement
// bits. The result is a deterministic function of data.
func ToPrime(data []byte) (*saferith.Nat, error) {
	buf := make([]byte, params.BytesElement)
	shake := sha3.NewShake256()
	_, _ = shake.Write(data)
	_, _ = shake.Read(buf)

	// High bit fixes the bit length, low bit makes the start odd.
	buf[0] |= 0x80
	buf[params.BytesElement-1] |= 1

	candidate := new(big.Int).SetBytes(buf)
	two := big.NewInt(2)
	for probe := 0; probe < params.MaxEncodeProbes; probe++ {
		if candidate.BitLen() > params.BitsElement {
			return nil, ErrExhausted
		}
		if candidate.ProbablyPrime(params.PrimalityIterations) {
			return new(saferith.Nat).SetBig(candidate, params.BitsElement), nil
		}
		candidate.Add(candidate, two)
	}
	return nil, ErrExhausted
}

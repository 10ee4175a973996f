package sample

import (
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/mr-shifu/accumulator-lib/lib/params"
)

// maxIterations is the number of times a sampling loop retries before
// concluding the entropy source is broken.
const maxIterations = 255

// ErrMaxIterations is panicked when a random source fails persistently.
// Entropy failure is fatal; no operation falls back to a weaker source.
var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// ModN samples an element of ℤₙ by rejection.
//
// rand may be a transcript digest stream, in which case the result is a
// deterministic function of the transcript.
func ModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	nBig := n.Big()
	buf := make([]byte, (n.BitLen()+7)/8)
	candidate := new(big.Int)
	for {
		mustReadBits(rand, buf)
		candidate.SetBytes(buf)
		if candidate.Cmp(nBig) == -1 {
			return new(saferith.Nat).SetBig(candidate, n.BitLen())
		}
	}
}

// UnitModN samples a random unit of ℤₙ*.
func UnitModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	nBig := n.Big()
	gcd := new(big.Int)
	one := big.NewInt(1)
	buf := make([]byte, (n.BitLen()+7)/8)
	candidate := new(big.Int)
	for {
		mustReadBits(rand, buf)
		candidate.SetBytes(buf)
		if candidate.Sign() != 1 || candidate.Cmp(nBig) != -1 {
			continue
		}
		gcd.GCD(nil, nil, candidate, nBig)
		if gcd.Cmp(one) == 0 {
			return new(saferith.Nat).SetBig(candidate, n.BitLen())
		}
	}
}

// QR samples a random quadratic residue of ℤₙ* as the square of a random
// unit.
func QR(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	r := UnitModN(rand, n)
	return new(saferith.Nat).ModMul(r, r, n)
}

// Blind samples a proof blinding nonce of the given bit size.
// bits must be a multiple of 8.
func Blind(rand io.Reader, bits int) *saferith.Nat {
	buf := make([]byte, bits/8)
	mustReadBits(rand, buf)
	return new(saferith.Nat).SetBytes(buf)
}

// Challenge reads a Fiat-Shamir challenge of params.BitsChallenge bits,
// normally from a transcript digest stream.
func Challenge(rand io.Reader) *saferith.Nat {
	buf := make([]byte, params.BytesChallenge)
	mustReadBits(rand, buf)
	return new(saferith.Nat).SetBytes(buf)
}

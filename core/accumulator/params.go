// Package accumulator implements an RSA accumulator over a group of
// unknown order: a constant-size commitment to a dynamic set of primes,
// with witnesses that prove membership or non-membership of single
// elements against the current accumulator value.
//
// Parameters come in two flavours. A SecretKey produced by Setup keeps
// the factorization of the modulus and unlocks O(1) deletions and
// witness computations through the totient. Params imported from an
// external setup carry only (n, g); all operations remain available but
// deletions and witness computations walk the accumulated set instead.
package accumulator

import (
	cryptorand "crypto/rand"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/mr-shifu/accumulator-lib/core/math/arith"
	"github.com/mr-shifu/accumulator-lib/core/math/sample"
	"github.com/mr-shifu/accumulator-lib/core/pool"
	"github.com/mr-shifu/accumulator-lib/lib/params"
)

// Params are the public accumulation parameters: an RSA modulus n and a
// quadratic residue g used as the base of every accumulator.
type Params struct {
	n *arith.Modulus
	g *saferith.Nat
}

// SecretKey extends Params with the safe primes p, q factoring n.
type SecretKey struct {
	*Params
	p, q *saferith.Nat
}

// Setup generates a trusted setup of the given modulus bit size: two
// random safe primes p, q with n = p⋅q, and a random quadratic residue g.
// The returned key retains the factorization; callers wanting public
// parameters only take Public, or use SetupTrustless.
//
// bits must be at least 2048 and a multiple of 16. rand defaults to
// crypto/rand when nil, pl may be nil to search for primes serially.
func Setup(rand io.Reader, pl *pool.Pool, bits int) (*SecretKey, error) {
	if bits < params.BitsModulus || bits%16 != 0 {
		return nil, ErrInvalidSecurityLevel
	}
	if rand == nil {
		rand = cryptorand.Reader
	}

	p, q := sample.SafePrimes(rand, pl, bits/2)
	for p.Eq(q) == 1 {
		q = sample.SafePrime(rand, bits/2)
	}

	n := arith.ModulusFromFactors(p, q)
	g := sampleGenerator(rand, n.Modulus)
	return &SecretKey{
		Params: &Params{n: n, g: g},
		p:      p,
		q:      q,
	}, nil
}

// SetupTrustless generates parameters whose factorization is discarded
// before returning. Operations on accumulators under these parameters
// never take the totient shortcuts.
func SetupTrustless(rand io.Reader, pl *pool.Pool, bits int) (*Params, error) {
	sk, err := Setup(rand, pl, bits)
	if err != nil {
		return nil, err
	}
	return sk.Public(), nil
}

// NewSecretKey reassembles a trusted key from escrowed safe primes and a
// generator. Both primes must be safe and distinct, and g must be a unit
// in the range [2, n-1].
func NewSecretKey(p, q, g *saferith.Nat) (*SecretKey, error) {
	sk, err := RestoreSecretKey(p, q, g)
	if err != nil {
		return nil, err
	}
	if err := sk.Validate(); err != nil {
		return nil, err
	}
	return sk, nil
}

// RestoreSecretKey reassembles a trusted key without re-running the safe
// prime checks. For factors from an untrusted source, NewSecretKey, or
// RestoreSecretKey followed by Validate.
func RestoreSecretKey(p, q, g *saferith.Nat) (*SecretKey, error) {
	if p == nil || q == nil || g == nil {
		return nil, ErrMalformedParameters
	}
	if p.Eq(q) == 1 || p.Big().Bit(0) == 0 || q.Big().Bit(0) == 0 {
		return nil, ErrMalformedParameters
	}
	n := arith.ModulusFromFactors(p, q)
	if !validGenerator(n.Modulus, g) {
		return nil, ErrMalformedParameters
	}
	return &SecretKey{
		Params: &Params{n: n, g: new(saferith.Nat).SetNat(g)},
		p:      new(saferith.Nat).SetNat(p),
		q:      new(saferith.Nat).SetNat(q),
	}, nil
}

// Validate checks the safe primality of the stored factors, for keys
// obtained by deserialization.
func (sk *SecretKey) Validate() error {
	if sk == nil || sk.p == nil || sk.q == nil {
		return ErrMalformedParameters
	}
	if !isSafePrime(sk.p) || !isSafePrime(sk.q) {
		return ErrMalformedParameters
	}
	return nil
}

// NewParams imports externally generated parameters. No factorization is
// available, so only structure is checked: n must be odd and at least
// 2048 bits, g must be a unit in the range [2, n-1].
func NewParams(n *saferith.Modulus, g *saferith.Nat) (*Params, error) {
	if n == nil || g == nil {
		return nil, ErrMalformedParameters
	}
	nBig := n.Big()
	if nBig.Bit(0) == 0 {
		return nil, ErrMalformedParameters
	}
	if nBig.BitLen() < params.BitsModulus {
		return nil, ErrMalformedParameters
	}
	if !validGenerator(n, g) {
		return nil, ErrMalformedParameters
	}
	return &Params{
		n: arith.ModulusFromN(n),
		g: new(saferith.Nat).SetNat(g),
	}, nil
}

func (sk *SecretKey) P() *saferith.Nat { return sk.p }
func (sk *SecretKey) Q() *saferith.Nat { return sk.q }

// Public strips the factorization from the key.
func (sk *SecretKey) Public() *Params {
	return &Params{
		n: arith.ModulusFromN(sk.n.Modulus),
		g: sk.g,
	}
}

// Phi returns φ(n) = (p-1)(q-1).
func (sk *SecretKey) Phi() *saferith.Nat {
	return sk.n.Phi()
}

func (p *Params) N() *saferith.Modulus    { return p.n.Modulus }
func (p *Params) G() *saferith.Nat        { return p.g }
func (p *Params) Modulus() *arith.Modulus { return p.n }

// Trusted reports whether the parameters carry the factorization of n.
func (p *Params) Trusted() bool {
	return p.n.HasFactorization()
}

func (p *Params) BitLen() int {
	return p.n.BitLen()
}

// ByteSize is the width of a fixed-length encoding of values mod n.
func (p *Params) ByteSize() int {
	return (p.n.BitLen() + 7) / 8
}

// Validate re-runs the structural checks of NewParams, for parameters
// obtained by deserialization.
func (p *Params) Validate() error {
	if p == nil || p.n == nil || p.g == nil {
		return ErrMalformedParameters
	}
	nBig := p.n.Big()
	if nBig.Bit(0) == 0 || nBig.BitLen() < params.BitsModulus {
		return ErrMalformedParameters
	}
	if !validGenerator(p.n.Modulus, p.g) {
		return ErrMalformedParameters
	}
	return nil
}

func (p *Params) WriteTo(w io.Writer) (int64, error) {
	if p == nil {
		return 0, io.ErrUnexpectedEOF
	}
	var total int64
	size := p.ByteSize()
	for _, x := range []*saferith.Nat{p.n.Nat(), p.g} {
		n, err := w.Write(arith.FixedBytes(x, size))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (Params) Domain() string {
	return "Accumulator Parameters"
}

// sampleGenerator draws random quadratic residues until one lands in
// [2, n-1], so the base never degenerates to the identity.
func sampleGenerator(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	one := new(saferith.Nat).SetUint64(1)
	for {
		g := sample.QR(rand, n)
		if g.Eq(one) != 1 {
			return g
		}
	}
}

func validGenerator(n *saferith.Modulus, g *saferith.Nat) bool {
	if g.Big().Cmp(big.NewInt(2)) == -1 {
		return false
	}
	return arith.IsValidNatModN(n, g)
}

// isSafePrime checks that p = 3 mod 4 and both p and (p-1)/2 are
// probably prime.
func isSafePrime(p *saferith.Nat) bool {
	pBig := p.Big()
	if pBig.Bit(0) != 1 || pBig.Bit(1) != 1 {
		return false
	}
	if !pBig.ProbablyPrime(params.PrimalityIterations) {
		return false
	}
	half := new(big.Int).Rsh(pBig, 1)
	return half.ProbablyPrime(params.PrimalityIterations)
}

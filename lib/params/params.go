package params

const (
	SecParam  = 256
	SecBytes  = SecParam / 8
	StatParam = 80

	// BitsElement is the bit length of prime representatives produced by the
	// encoder. Elements are far smaller than the safe primes dividing the
	// modulus, so the two prime populations can never collide.
	BitsElement  = 1 * SecParam    // = 256
	BytesElement = BitsElement / 8 // = 32

	// BitsChallenge is the width of Fiat-Shamir challenges. The knowledge
	// error of a single challenge-response round is 2⁻¹²⁸.
	BitsChallenge  = 128
	BytesChallenge = BitsChallenge / 8 // = 16

	// BitsBlind sizes the blinding nonce for membership proofs: the secret
	// exponent plus the challenge plus a statistical hiding margin.
	BitsBlind = BitsElement + BitsChallenge + StatParam // = 464

	BitsSafePrime  = 4 * SecParam      // = 1024
	BytesSafePrime = BitsSafePrime / 8 // = 128

	// BitsModulus is the minimum (and default) accumulator modulus size.
	BitsModulus  = 2 * BitsSafePrime // = 2048
	BytesModulus = BitsModulus / 8   // = 256

	// PrimalityIterations is the number of Miller-Rabin rounds used on every
	// prime candidate, for an error probability of at most 2⁻¹²⁸.
	PrimalityIterations = 64

	// MaxEncodeProbes bounds the hash-then-increment search. The probability
	// of exhausting it on a 256-bit candidate is negligible.
	MaxEncodeProbes = 1 << 16
)

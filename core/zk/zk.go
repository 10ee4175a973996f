// Package zk provides fixed accumulator parameters shared by the proof
// tests, so that no test pays for safe prime generation.
package zk

import (
	"math/big"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/mr-shifu/accumulator-lib/core/accumulator"
)

// 1024 bit safe primes: the Oakley group 2 prime (RFC 2409) and the
// 1024 bit SRP group prime (RFC 5054).
const (
	pHex = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC74" +
		"020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F1437" +
		"4FE1356D6D51C245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
		"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE65381FFFFFFFFFFFFFFFF"
	qHex = "EEAF0AB9ADB38DD69C33F80AFA8FC5E86072618775FF3C0B9EA2314C9C256576" +
		"D674DF7496EA81D3383B4813D692C6E0E0D5D8E250B98BE48E495C1D6089DAD1" +
		"5DC7D7B46154D6B6CE8EF4AD69B15D4982559B297BCF1885C529F566660E57EC" +
		"68EDBC3C05726CC02FD4CBF4976EAA9AFD5138FE8376435B9FC61D2FC0EB06E3"
)

var (
	initOnce sync.Once
	fixedKey *accumulator.SecretKey
)

func initFixtures() {
	p, ok := new(big.Int).SetString(pHex, 16)
	if !ok {
		panic("zk: invalid prime fixture")
	}
	q, ok := new(big.Int).SetString(qHex, 16)
	if !ok {
		panic("zk: invalid prime fixture")
	}
	// g = 2² is a quadratic residue mod any odd n and keeps the
	// fixture fully deterministic.
	sk, err := accumulator.NewSecretKey(
		new(saferith.Nat).SetBig(p, p.BitLen()),
		new(saferith.Nat).SetBig(q, q.BitLen()),
		new(saferith.Nat).SetUint64(4),
	)
	if err != nil {
		panic(err)
	}
	fixedKey = sk
}

// SecretKey returns a fixed trusted key over a 2048 bit modulus.
func SecretKey() *accumulator.SecretKey {
	initOnce.Do(initFixtures)
	return fixedKey
}

// Params returns the public side of the fixed key, with the
// factorization stripped.
func Params() *accumulator.Params {
	initOnce.Do(initFixtures)
	return fixedKey.Public()
}

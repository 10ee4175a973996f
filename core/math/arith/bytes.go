package arith

import "github.com/cronokirby/saferith"

// FixedBytes returns x as a big-endian slice of exactly size bytes,
// left-padded with zeros. It panics when x does not fit in size bytes.
func FixedBytes(x *saferith.Nat, size int) []byte {
	buf := make([]byte, size)
	x.Big().FillBytes(buf)
	return buf
}

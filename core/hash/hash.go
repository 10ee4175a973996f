package hash

import (
	"fmt"
	"io"

	"github.com/mr-shifu/accumulator-lib/lib/params"
)

// DigestLengthBytes is the length of transcript digests, in bytes.
const DigestLengthBytes = params.SecBytes

// WriterToWithDomain represents a type writing itself into a transcript
// under a domain tag, so that structurally different data can never
// produce the same byte stream.
type WriterToWithDomain interface {
	io.WriterTo
	// Domain returns a context string describing the type being written.
	Domain() string
}

// BytesWithDomain is a simple wrapper for raw bytes tagged with a domain.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

func (b BytesWithDomain) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes)
	return int64(n), err
}

func (b BytesWithDomain) Domain() string {
	return b.TheDomain
}

// Commitment of some data, produced by a transcript's Commit.
type Commitment []byte

// Validate ensures the commitment has the expected shape.
func (c Commitment) Validate() error {
	if l := len(c); l != DigestLengthBytes {
		return fmt.Errorf("hash: commitment length is %d, expected %d", l, DigestLengthBytes)
	}
	for _, b := range c {
		if b != 0 {
			return nil
		}
	}
	return fmt.Errorf("hash: commitment is all zero")
}

// Decommitment of a previously committed value.
type Decommitment []byte

// Validate ensures the decommitment has the expected shape.
func (d Decommitment) Validate() error {
	if l := len(d); l != params.SecBytes {
		return fmt.Errorf("hash: decommitment length is %d, expected %d", l, params.SecBytes)
	}
	for _, b := range d {
		if b != 0 {
			return nil
		}
	}
	return fmt.Errorf("hash: decommitment is all zero")
}

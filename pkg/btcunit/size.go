package btcunit

import (
	"fmt"

	"github.com/btcsuite/btcd/blockchain"
)

// VByte defines a unit to express the size of a transaction or one of its
// inputs. One virtual byte is 1/4th of a weight unit.
type VByte struct {
	vb uint64
}

// NewVByte creates a new VByte from a uint64 value.
func NewVByte(val uint64) VByte {
	return VByte{vb: val}
}

// NewVByteFromWeight converts a size in weight units into virtual bytes,
// rounding up to the next whole vbyte.
func NewVByteFromWeight(wu uint64) VByte {
	return VByte{
		vb: (wu + blockchain.WitnessScaleFactor - 1) /
			blockchain.WitnessScaleFactor,
	}
}

// Uint64 returns the size in vbytes.
func (v VByte) Uint64() uint64 {
	return v.vb
}

// ToWU returns the size in weight units.
func (v VByte) ToWU() uint64 {
	return v.vb * blockchain.WitnessScaleFactor
}

// String returns the string representation of the virtual byte.
func (v VByte) String() string {
	return fmt.Sprintf("%d vb", v.vb)
}

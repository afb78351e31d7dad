// This file is part of aarch64emu.
//
// aarch64emu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// aarch64emu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with aarch64emu.  If not, see <https://www.gnu.org/licenses/>.

// Package codec packs and unpacks 32- and 64-bit values using the
// ELF-declared endianness, generalising the fixed-endian
// byteOrder.Uint16/Uint32/PutUint16/PutUint32 calls a CPU core's memory
// access layer would otherwise hardcode.
package codec

import "encoding/binary"

// Codec packs/unpacks integers using a fixed byte order, chosen at load time
// from the ELF header's EI_DATA field (ELFDATA2LSB or ELFDATA2MSB).
type Codec struct {
	Order binary.ByteOrder
}

// New returns a Codec for the given byte order.
func New(order binary.ByteOrder) Codec {
	return Codec{Order: order}
}

// PackU32 encodes v as 4 bytes.
func (c Codec) PackU32(v uint32) []byte {
	b := make([]byte, 4)
	c.Order.PutUint32(b, v)
	return b
}

// UnpackU32 decodes the first 4 bytes of b.
func (c Codec) UnpackU32(b []byte) uint32 {
	return c.Order.Uint32(b)
}

// PackU64 encodes v as 8 bytes.
func (c Codec) PackU64(v uint64) []byte {
	b := make([]byte, 8)
	c.Order.PutUint64(b, v)
	return b
}

// UnpackU64 decodes the first 8 bytes of b.
func (c Codec) UnpackU64(b []byte) uint64 {
	return c.Order.Uint64(b)
}

// PackI32 encodes a signed 32-bit value via its bit pattern.
func (c Codec) PackI32(v int32) []byte {
	return c.PackU32(uint32(v))
}

// UnpackI32 decodes a signed 32-bit value via its bit pattern.
func (c Codec) UnpackI32(b []byte) int32 {
	return int32(c.UnpackU32(b))
}

// PackI64 encodes a signed 64-bit value via its bit pattern.
func (c Codec) PackI64(v int64) []byte {
	return c.PackU64(uint64(v))
}

// UnpackI64 decodes a signed 64-bit value via its bit pattern.
func (c Codec) UnpackI64(b []byte) int64 {
	return int64(c.UnpackU64(b))
}

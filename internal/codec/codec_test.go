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

package codec_test

import (
	"encoding/binary"
	"testing"

	"github.com/jetsetilly/aarch64emu/internal/codec"
	"github.com/jetsetilly/aarch64emu/test"
)

func TestRoundTripU32(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		c := codec.New(order)
		for _, v := range []uint32{0, 1, 0xdeadbeef, 0xffffffff} {
			test.ExpectEquality(t, c.UnpackU32(c.PackU32(v)), v)
		}
	}
}

func TestRoundTripU64(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		c := codec.New(order)
		for _, v := range []uint64{0, 1, 0xdeadbeefcafef00d, 0xffffffffffffffff} {
			test.ExpectEquality(t, c.UnpackU64(c.PackU64(v)), v)
		}
	}
}

func TestRoundTripSigned(t *testing.T) {
	c := codec.New(binary.LittleEndian)
	test.ExpectEquality(t, c.UnpackI32(c.PackI32(-1)), int32(-1))
	test.ExpectEquality(t, c.UnpackI64(c.PackI64(-1)), int64(-1))
}

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

package syscalls

const (
	futexWait = 0
	futexWake = 1
	futexMask = 0x7f
)

// sysFutex implements §4.7. Only FUTEX_WAIT and FUTEX_WAKE carry real
// behaviour; every other masked op is accepted and explicitly returns 0 —
// the REDESIGN FLAG of §9 ("unknown ops leave the return register
// untouched... explicitly return 0").
func sysFutex(ctx *Context, args [8]uint64) (uint64, error) {
	uaddr := args[0]
	val := args[2]

	switch args[1] & futexMask {
	case futexWait:
		b, err := ctx.MM.Read(uaddr, 4)
		if err != nil {
			return 0, nil
		}
		if uint64(ctx.Codec.UnpackU32(b)) == val {
			// Single-threaded design: a matched wait is a terminal state,
			// not an actual block/wake cycle.
			_ = ctx.Engine.Stop()
		}
		derived := uint32((val & 0xc000) | (val & 0x2000))
		_ = ctx.MM.Write(uaddr, ctx.Codec.PackU32(derived))
		return 0, nil
	case futexWake:
		return 0, nil
	default:
		return 0, nil
	}
}

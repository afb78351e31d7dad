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

// sysRtSigaction implements the bookkeeping-only signal table of §4.5:
// signals are recorded but never delivered to the guest.
func sysRtSigaction(ctx *Context, args [8]uint64) (uint64, error) {
	signum := uint32(args[0])
	act := args[1]
	oldact := args[2]

	if oldact != 0 {
		rec := ctx.SigMap[signum]
		var buf []byte
		for _, w := range rec {
			buf = append(buf, ctx.Codec.PackU32(w)...)
		}
		if err := ctx.MM.Write(oldact, buf); err != nil {
			return minusOne, nil
		}
	}

	if act != 0 {
		b, err := ctx.MM.Read(act, 20)
		if err != nil {
			return minusOne, nil
		}
		var rec SigRecord
		for i := range rec {
			rec[i] = ctx.Codec.UnpackU32(b[i*4 : i*4+4])
		}
		ctx.SigMap[signum] = rec
	}

	return 0, nil
}

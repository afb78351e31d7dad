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

// guestPID is the fixed fake process id handed to the guest, per §4.4.
const guestPID = 1337

func sysGetpid(ctx *Context, args [8]uint64) (uint64, error) {
	return guestPID, nil
}

func sysGetuid(ctx *Context, args [8]uint64) (uint64, error) {
	return 0, nil
}

// sysSetTidAddress writes the host PID into the guest pointer and returns
// it, per §4.4. tidptr is `int *`, a 4-byte guest int, not a 64-bit word —
// writing more would clobber whatever the guest placed immediately after it.
func sysSetTidAddress(ctx *Context, args [8]uint64) (uint64, error) {
	ptr := args[0]
	pid := ctx.Host.Getpid()
	if ptr != 0 {
		if err := ctx.MM.Write(ptr, ctx.Codec.PackU32(uint32(pid))); err != nil {
			return minusOne, nil
		}
	}
	return uint64(pid), nil
}

// sysExitGroup stops the CPU engine and terminates the host process with
// status 1, per §4.4 and the CLI exit-code contract of §6.
func sysExitGroup(ctx *Context, args [8]uint64) (uint64, error) {
	_ = ctx.Engine.Stop()
	ctx.Host.Exit(1)
	return 0, nil
}

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

// sysAcceptedStub backs clock_gettime, madvise, prctl, sigaltstack, and
// rt_sigprocmask: all five are accepted as successes without touching guest
// memory, per §4.4's "misc accepted-as-success" category.
func sysAcceptedStub(ctx *Context, args [8]uint64) (uint64, error) {
	return 0, nil
}

// sysSchedGetscheduler forwards to the host; a negative pid is EINVAL, per
// §4.4.
func sysSchedGetscheduler(ctx *Context, args [8]uint64) (uint64, error) {
	pid := int(int64(args[0]))
	if pid < 0 {
		return negErrno(linuxEINVAL), nil
	}
	policy, err := ctx.Host.SchedGetscheduler(pid)
	if err != nil {
		return minusOne, nil
	}
	return uint64(int64(policy)), nil
}

// sysGetrandom reads n bytes from the host /dev/urandom and writes them to
// the guest buffer, per §4.4.
func sysGetrandom(ctx *Context, args [8]uint64) (uint64, error) {
	n := int(args[1])
	b, err := ctx.Host.URandom(n)
	if err != nil {
		return minusOne, nil
	}
	if err := ctx.MM.Write(args[0], b); err != nil {
		return minusOne, nil
	}
	return uint64(n), nil
}

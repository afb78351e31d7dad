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

import (
	"github.com/jetsetilly/aarch64emu/internal/codec"
	"github.com/jetsetilly/aarch64emu/internal/cpuengine"
	"github.com/jetsetilly/aarch64emu/internal/fatal"
	"github.com/jetsetilly/aarch64emu/internal/guestfs"
	"github.com/jetsetilly/aarch64emu/internal/hostos"
	"github.com/jetsetilly/aarch64emu/internal/logger"
	"github.com/jetsetilly/aarch64emu/internal/mmu"
)

// SigRecord is the opaque 20-byte handler record of §4.5: five consecutive
// 4-byte words read from the guest's sigaction struct.
type SigRecord [5]uint32

// Context is everything a handler may touch: the MMU, guest filesystem,
// host OS capability, the CPU engine (for exit_group/futex_wait's stop, and
// set_tid_address's host pid), the byte codec, and the mutable loader-seeded
// state (mmap cursor, elf path, signal table). Handlers take Context as a
// borrow for the duration of the call — never a retained reference — which
// is how this repository resolves the cyclic CPU-engine/hook ownership
// concern flagged in §9.
type Context struct {
	MM      *mmu.Manager
	Engine  cpuengine.Engine
	FS      *guestfs.FS
	Host    hostos.Host
	Codec   codec.Codec

	ElfPath     string
	MmapAddress uint64
	SigMap      map[uint32]SigRecord

	Debug bool
}

// Handler services one syscall: it returns the value to write to X0, or an
// error for the dispatch-fatal cases (unimplemented syscall, filesystem
// traversal violation).
type Handler func(ctx *Context, args [8]uint64) (uint64, error)

var table = map[Number]Handler{
	SysGetpid:            sysGetpid,
	SysGetuid:            sysGetuid,
	SysSetTidAddress:     sysSetTidAddress,
	SysExitGroup:         sysExitGroup,
	SysOpenat:            sysOpenat,
	SysClose:             sysClose,
	SysRead:              sysRead,
	SysWrite:             sysWrite,
	SysPread64:           sysPread64,
	SysFcntl:             sysFcntl,
	SysIoctl:             sysIoctl,
	SysFaccessat:         sysFaccessat,
	SysReadlinkat:        sysReadlinkat,
	SysFstatat:           sysFstatat,
	SysFstat:             sysFstat,
	SysFstatfs:           sysFstatfs,
	SysMmap:              sysMmap,
	SysMprotect:          sysMprotect,
	SysMunmap:            sysMunmap,
	SysMremap:            sysMremap,
	SysFutex:             sysFutex,
	SysSigaltstack:       sysAcceptedStub,
	SysRtSigaction:       sysRtSigaction,
	SysRtSigprocmask:     sysAcceptedStub,
	SysSchedGetscheduler: sysSchedGetscheduler,
	SysGetrandom:         sysGetrandom,
	SysClockGettime:      sysAcceptedStub,
	SysMadvise:           sysAcceptedStub,
	SysPrctl:             sysAcceptedStub,
}

// Dispatch reads num's handler from the table, calls it, and returns the
// value to write to X0. An unregistered syscall number is a dispatch-fatal
// error naming the syscall, per §4.4: "unknown syscalls abort with a fatal
// error naming the enum."
func Dispatch(ctx *Context, num Number, args [8]uint64) (uint64, error) {
	h, ok := table[num]
	if !ok {
		return 0, fatal.DispatchErrorf("unimplemented syscall %s (%d)", num, num)
	}

	ret, err := h(ctx, args)
	if ctx.Debug {
		logger.Logf("SYSCALL", "%s(%#x, %#x, %#x, %#x) = %#x", num, args[0], args[1], args[2], args[3], ret)
	}
	return ret, err
}

// minusOne is the guest-visible "-1" sentinel written to X0 on failure,
// per §4.4/§4.6's literal 0xffff_ffff.
const minusOne = uint64(0xffff_ffff)

// linuxEINVAL is the bare errno value; negErrno turns it into the negated
// form a Linux syscall ABI writes to the return register on failure.
const linuxEINVAL = 22

func negErrno(errno int) uint64 {
	return uint64(int64(-errno))
}

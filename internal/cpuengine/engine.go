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

// Package cpuengine defines the small CPU engine capability the emulation
// harness consumes: register read/write, linear memory read/write,
// page-granular map/protect/unmap, hook installation for interrupts and
// unmapped-access events, and start/stop of guest execution. The engine's
// own internals (instruction decode, the register file, translation
// blocks) are explicitly out of scope for this repository — they belong to
// the external CPU emulator engine named in §6 of the design, concretely
// Unicorn Engine (see unicorn.go).
package cpuengine

// Perm is a bit set over the protection lattice {READ, WRITE, EXEC}.
type Perm uint8

const (
	PermRead Perm = 1 << iota
	PermWrite
	PermExec
)

// RW is the read|write permission pair used for the guest stack.
const RW = PermRead | PermWrite

// RWX is used for segments whose exact executable-ness doesn't matter to
// the emulator (the BSS-in-tail residual of §4.2 step 4, the interpreter
// image, and the mmap arena).
const RWX = PermRead | PermWrite | PermExec

// aarch64 general-purpose register indices, X0 through X30, plus the
// program counter and stack pointer. These correspond 1:1 to Unicorn's
// UC_ARM64_REG_X0..UC_ARM64_REG_X30/SP/PC constants.
const (
	X0 = iota
	X1
	X2
	X3
	X4
	X5
	X6
	X7
	X8
	X9
	X10
	X11
	X12
	X13
	X14
	X15
	X16
	X17
	X18
	X19
	X20
	X21
	X22
	X23
	X24
	X25
	X26
	X27
	X28
	X29
	X30
	SP
	PC
	NumRegisters = PC + 1
)

// HookInterrupt is called when the guest executes a supervisor-call
// instruction. intno is the engine-reported interrupt/exception number.
type HookInterrupt func(intno uint32)

// HookInvalidMem is called when the guest accesses unmapped memory.
// Returning true tells the engine the access has been handled (e.g. the
// handler mapped the page on demand) and execution may continue;
// returning false propagates as an engine-fatal error.
type HookInvalidMem func(addr uint64, size int, write bool) bool

// Engine is the capability the loader, MMU, and syscall dispatcher consume.
// A concrete implementation wraps a real CPU emulator (Unicorn Engine); the
// interface exists so that the harness never calls engine-specific APIs
// directly outside of this package.
type Engine interface {
	// RegRead returns the current value of register reg (one of the
	// constants above).
	RegRead(reg int) (uint64, error)

	// RegWrite sets register reg to val.
	RegWrite(reg int, val uint64) error

	// MemMap maps size bytes at addr with the given permissions. Both addr
	// and size are expected page-aligned by the caller (the MMU rounds
	// before calling through).
	MemMap(addr, size uint64, perms Perm) error

	// MemProtect changes the permissions of an already-mapped range.
	MemProtect(addr, size uint64, perms Perm) error

	// MemUnmap unmaps size bytes at addr.
	MemUnmap(addr, size uint64) error

	// MemRead reads size bytes from guest memory at addr.
	MemRead(addr, size uint64) ([]byte, error)

	// MemWrite writes data to guest memory starting at addr.
	MemWrite(addr uint64, data []byte) error

	// HookIntr installs the supervisor-call interrupt hook. Called once by
	// the orchestrator at startup.
	HookIntr(cb HookInterrupt) error

	// HookInvalidMem installs the unmapped-access hook. Called once by the
	// orchestrator at startup.
	HookInvalidMem(cb HookInvalidMem) error

	// Start runs the guest from begin until the until address (0 means
	// run until Stop is called or the guest halts), with the given
	// timeout and instruction count limits (0 means unlimited — the
	// orchestrator always passes 0 for both, per §5).
	Start(begin, until, timeout, count uint64) error

	// Stop requests termination of the current Start call at the next
	// translation-block boundary.
	Stop() error

	// Close releases the engine's resources.
	Close() error

	// EnableFPSIMD sets CPACR_EL1 |= 0x30_0000, granting the guest access
	// to the floating-point/SIMD register file. Called once by the loader
	// after the initial stack has been built (§4.2 step 8).
	EnableFPSIMD() error
}

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

// Package emulator is the orchestrator of §2.6: it owns the CPU engine, the
// MMU, the guest filesystem, and the signal table for the process's entire
// lifetime, wires the interrupt/unmapped-memory hooks to the syscall
// dispatcher, and runs the guest from its entry point. Grounded on the
// single top-level VCS struct ownership pattern of the teacher's hardware
// package (the Hardware type owning CPU/memory/TV for a run's lifetime),
// generalised to this process's CPU-engine/MMU/filesystem/sigmap ownership
// of spec.md §3.
package emulator

import (
	"github.com/jetsetilly/aarch64emu/internal/cpuengine"
	"github.com/jetsetilly/aarch64emu/internal/fatal"
	"github.com/jetsetilly/aarch64emu/internal/guestfs"
	"github.com/jetsetilly/aarch64emu/internal/hostos"
	"github.com/jetsetilly/aarch64emu/internal/loader"
	"github.com/jetsetilly/aarch64emu/internal/logger"
	"github.com/jetsetilly/aarch64emu/internal/mmu"
	"github.com/jetsetilly/aarch64emu/internal/syscalls"
)

// Emulator is the process-global singleton of spec.md §3: rootfs/elf_path/
// argv/envp, the layout constants baked into the loader, and everything the
// loader set by running once at construction time.
type Emulator struct {
	Image  *loader.Image
	MM     *mmu.Manager
	Engine cpuengine.Engine
	FS     *guestfs.FS
	Host   hostos.Host
	Ctx    *syscalls.Context
}

// New opens elfPath, creates a fresh CPU engine, and runs the loader to
// completion: by the time New returns, the guest's stack, mappings, and
// register file are fully seeded and Run need only call Start.
func New(elfPath, rootfs string, argv, envp []string, debug bool) (*Emulator, error) {
	engine, err := cpuengine.NewUnicorn()
	if err != nil {
		return nil, fatal.EngineErrorf("creating CPU engine: %w", err)
	}

	mm := mmu.New(engine)
	host := hostos.New()
	fs := guestfs.New(rootfs, host)

	img, err := loader.Load(mm, engine, fs, host, elfPath, argv, envp)
	if err != nil {
		return nil, err
	}

	ctx := &syscalls.Context{
		MM:          mm,
		Engine:      engine,
		FS:          fs,
		Host:        host,
		Codec:       img.Codec,
		ElfPath:     elfPath,
		MmapAddress: img.MmapAddress,
		SigMap:      make(map[uint32]syscalls.SigRecord),
		Debug:       debug,
	}

	return &Emulator{Image: img, MM: mm, Engine: engine, FS: fs, Host: host, Ctx: ctx}, nil
}

// argRegs are the registers arguments are taken from, per §4.4.
var argRegs = [8]int{cpuengine.X0, cpuengine.X1, cpuengine.X2, cpuengine.X3, cpuengine.X4, cpuengine.X5, cpuengine.X6, cpuengine.X7}

// Run installs the interrupt and unmapped-memory hooks and starts guest
// execution at the entry point the loader computed (the interpreter's
// entry, if one was loaded, else the ELF's own entry — the interpreter
// itself transfers control to the program entry once it has finished
// resolving dependencies, so the orchestrator only ever issues a single
// Start).
func (e *Emulator) Run() error {
	if err := e.Engine.HookIntr(e.handleInterrupt); err != nil {
		return fatal.EngineErrorf("installing interrupt hook: %w", err)
	}
	if err := e.Engine.HookInvalidMem(e.handleInvalidMem); err != nil {
		return fatal.EngineErrorf("installing unmapped-memory hook: %w", err)
	}

	if err := e.Engine.Start(e.Image.EntryPoint, 0, 0, 0); err != nil {
		return e.abort(fatal.EngineErrorf("CPU engine start: %w", err))
	}
	return nil
}

// handleInterrupt is the CPU engine's supervisor-call callback. It borrows
// e for the duration of the call only — it is registered as a bound method
// value, not a closure that retains a second independent reference to the
// emulator, which is how this repository resolves the cyclic CPU-engine/
// hook-callback ownership note of §9.
func (e *Emulator) handleInterrupt(intno uint32) {
	x8, err := e.Engine.RegRead(cpuengine.X8)
	if err != nil {
		e.abort(fatal.EngineErrorf("reading syscall number from X8: %w", err))
		return
	}

	var args [8]uint64
	for i, reg := range argRegs {
		v, err := e.Engine.RegRead(reg)
		if err != nil {
			e.abort(fatal.EngineErrorf("reading syscall argument X%d: %w", i, err))
			return
		}
		args[i] = v
	}

	ret, err := syscalls.Dispatch(e.Ctx, syscalls.Number(x8), args)
	if err != nil {
		e.abort(err)
		return
	}

	if err := e.Engine.RegWrite(cpuengine.X0, ret); err != nil {
		e.abort(fatal.EngineErrorf("writing return value to X0: %w", err))
	}
}

// handleInvalidMem is the CPU engine's unmapped-access callback: every
// unmapped fetch/read/write is engine-fatal per §7, so it always returns
// false (not handled) after logging the diagnostic.
func (e *Emulator) handleInvalidMem(addr uint64, size int, write bool) bool {
	kind := "read"
	if write {
		kind = "write"
	}
	e.abort(fatal.EngineErrorf("unmapped %s of %d bytes at %#x", kind, size, addr))
	return false
}

// abort dumps the diagnostic context (register file + memory map) and
// terminates the process, per §7's engine-fatal handling.
func (e *Emulator) abort(err error) error {
	diag := e.diagnostic()
	logger.Errorf("FATAL", "%s\n%s", err, diag)
	e.Host.Exit(1)
	return err
}

func (e *Emulator) diagnostic() fatal.Diagnostic {
	var regs [31]uint64
	for i := cpuengine.X0; i <= cpuengine.X30; i++ {
		v, _ := e.Engine.RegRead(i)
		regs[i] = v
	}
	pc, _ := e.Engine.RegRead(cpuengine.PC)
	return fatal.Diagnostic{
		Registers: regs,
		PC:        pc,
		MemoryMap: e.MM.Display(),
	}
}

// Close releases the CPU engine's resources.
func (e *Emulator) Close() error {
	return e.Engine.Close()
}

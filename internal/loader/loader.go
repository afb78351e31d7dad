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

// Package loader transforms an ELF image on disk into a ready-to-run guest
// process image: code/data mappings, the dynamic linker (if any), and the
// initial stack with argv/envp/auxv. Grounded on the two-pass PT_LOAD walk
// and ELF-flags-to-permission switch of the teacher's
// hardware/memory/cartridge/elf package (elfMemory.decode, mapAddress),
// generalised from a single co-processor image to a full process image with
// a PT_INTERP second pass and stack construction, the latter two grounded on
// original_source/code/src/core/loaders/elfLoader.rs and elfRunner.rs.
package loader

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jetsetilly/aarch64emu/internal/codec"
	"github.com/jetsetilly/aarch64emu/internal/cpuengine"
	"github.com/jetsetilly/aarch64emu/internal/fatal"
	"github.com/jetsetilly/aarch64emu/internal/guestfs"
	"github.com/jetsetilly/aarch64emu/internal/hostos"
	"github.com/jetsetilly/aarch64emu/internal/mmu"
)

// Image is the result of a successful Load: everything the orchestrator
// needs to start the guest and everything the syscall dispatcher needs for
// brk/mmap bookkeeping.
type Image struct {
	LoadAddress   uint64
	ElfEntry      uint64
	EntryPoint    uint64
	InterpAddress uint64
	BrkAddress    uint64
	MmapAddress   uint64
	NewStack      uint64
	Codec         codec.Codec
}

// Load maps elfPath (a host path) into the guest address space through mm
// and engine, resolves and loads its PT_INTERP dynamic linker (if any) via
// fs's rootfs translation, then builds the initial stack with argv/envp and
// the auxiliary vector, per spec.md §4.2.
func Load(mm *mmu.Manager, engine cpuengine.Engine, fs *guestfs.FS, host hostos.Host, elfPath string, argv, envp []string) (*Image, error) {
	if err := mm.Map(StackBase, StackSize, cpuengine.RW, "[stack]"); err != nil {
		return nil, fatal.LoaderErrorf("mapping stack: %w", err)
	}

	ef, err := elf.Open(elfPath)
	if err != nil {
		return nil, fatal.LoaderErrorf("opening %s: %w", elfPath, err)
	}
	defer ef.Close()

	if ef.Machine != elf.EM_AARCH64 {
		return nil, fatal.LoaderErrorf("unsupported machine %s, want EM_AARCH64", ef.Machine)
	}

	var base uint64
	if ef.Type == elf.ET_DYN {
		base = LoadBase
	}

	interpPath, memStart, memEnd := scanProgramHeaders(ef)
	_ = memStart

	high, err := loadSegments(mm, ef, base, elfPath)
	if err != nil {
		return nil, fatal.LoaderErrorf("loading %s: %w", elfPath, err)
	}

	if total := base + memEnd; high < total {
		if err := mm.Map(high, total-high, cpuengine.RWX, "[bss]"); err != nil {
			return nil, fatal.LoaderErrorf("mapping bss tail: %w", err)
		}
	}

	elfEntry := ef.Entry + base
	brkAddress := base + memEnd + brkSlack

	phoff, phentsize, phnum, err := readPhdrInfo(elfPath, ef.ByteOrder)
	if err != nil {
		return nil, fatal.LoaderErrorf("reading program header table of %s: %w", elfPath, err)
	}
	phdrAddr := base + phoff

	var interpAddress, entryPoint uint64
	entryPoint = elfEntry

	if interpPath != "" {
		interpHostPath := fs.TranslatePath(interpPath)
		ief, err := elf.Open(interpHostPath)
		if err != nil {
			return nil, fatal.LoaderErrorf("opening interpreter %s: %w", interpHostPath, err)
		}
		defer ief.Close()

		if err := loadInterpreter(mm, ief, interpHostPath); err != nil {
			return nil, fatal.LoaderErrorf("loading interpreter %s: %w", interpHostPath, err)
		}

		interpAddress = InterpBase
		entryPoint = ief.Entry + InterpBase
	}

	enc := codec.New(ef.ByteOrder)

	random, err := host.URandom(16)
	if err != nil {
		return nil, fatal.LoaderErrorf("reading random seed: %w", err)
	}

	ss, err := writeStackStrings(mm, StackBase+StackSize, elfPath, argv, envp, random)
	if err != nil {
		return nil, fatal.LoaderErrorf("writing stack strings: %w", err)
	}

	// AT_ENTRY must be the program's own entry point, not entryPoint (which
	// is the interpreter's entry once a PT_INTERP is loaded, above): ld.so
	// reads AT_ENTRY to know where to jump once it has finished resolving
	// the binary's dependencies.
	auxv := buildAuxv(phdrAddr, uint64(phentsize), uint64(phnum), interpAddress, elfEntry, ss.randomAddr, ss.platformAddr)
	table := assembleTable(enc, ss.elfPathAddr, ss.argvAddrs, ss.envpAddrs, auxv)

	tableLen := uint64(len(table))
	unalignedStart := ss.cursor - tableLen
	newStack := unalignedStart - unalignedStart%16

	if err := mm.Write(newStack, table); err != nil {
		return nil, fatal.LoaderErrorf("writing ELF table: %w", err)
	}

	if err := engine.RegWrite(cpuengine.SP, newStack); err != nil {
		return nil, fatal.LoaderErrorf("setting SP: %w", err)
	}
	if err := engine.EnableFPSIMD(); err != nil {
		return nil, fatal.LoaderErrorf("enabling FP/SIMD: %w", err)
	}

	return &Image{
		LoadAddress:   base,
		ElfEntry:      elfEntry,
		EntryPoint:    entryPoint,
		InterpAddress: interpAddress,
		BrkAddress:    brkAddress,
		MmapAddress:   MmapAreaBase,
		NewStack:      newStack,
		Codec:         enc,
	}, nil
}

// scanProgramHeaders is the first pass of §4.2 step 3: it records the
// PT_INTERP path (if any) and the [mem_start, mem_end) span of all PT_LOAD
// segments.
func scanProgramHeaders(ef *elf.File) (interpPath string, memStart, memEnd uint64) {
	memStart = ^uint64(0)
	for _, p := range ef.Progs {
		switch p.Type {
		case elf.PT_INTERP:
			buf := make([]byte, p.Filesz)
			if _, err := io.ReadFull(p.Open(), buf); err == nil {
				interpPath = strings.TrimRight(string(buf), "\x00")
			}
		case elf.PT_LOAD:
			if p.Vaddr < memStart {
				memStart = p.Vaddr
			}
			if end := p.Vaddr + p.Memsz; end > memEnd {
				memEnd = end
			}
		}
	}
	if memStart == ^uint64(0) {
		memStart = 0
	}
	return interpPath, memStart, memEnd
}

// loadSegments is the second pass of §4.2 step 3: every PT_LOAD is mapped at
// [align_down(base+vaddr), align_up(base+vaddr+filesz)) with permissions
// translated from the ELF segment flags, then filesz bytes are written from
// the file. It returns the high-water mark of mapped addresses for the
// BSS-in-tail residual of step 4.
func loadSegments(mm *mmu.Manager, ef *elf.File, base uint64, desc string) (high uint64, err error) {
	for _, p := range ef.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}

		start := mmu.AlignDown(base + p.Vaddr)
		end := mmu.AlignUpStrict(base + p.Vaddr + p.Filesz)
		perms := permsFromFlags(p.Flags)

		if err := mm.Map(start, end-start, perms, desc); err != nil {
			return high, fmt.Errorf("mapping segment at %#x: %w", start, err)
		}

		data := make([]byte, p.Filesz)
		if _, err := io.ReadFull(p.Open(), data); err != nil {
			return high, fmt.Errorf("reading segment data: %w", err)
		}
		if err := mm.Write(base+p.Vaddr, data); err != nil {
			return high, fmt.Errorf("writing segment data at %#x: %w", base+p.Vaddr, err)
		}

		if end > high {
			high = end
		}
	}
	return high, nil
}

// loadInterpreter performs §4.2 step 6: the interpreter's PT_LOAD span is
// mapped as a single R|W|X region at InterpBase, then each PT_LOAD segment's
// file bytes are written at InterpBase + p_paddr.
func loadInterpreter(mm *mmu.Manager, ief *elf.File, desc string) error {
	var size uint64
	for _, p := range ief.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		if end := p.Vaddr + p.Memsz; end > size {
			size = end
		}
	}

	if err := mm.Map(InterpBase, size, cpuengine.RWX, desc); err != nil {
		return fmt.Errorf("mapping interpreter image: %w", err)
	}

	for _, p := range ief.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		data := make([]byte, p.Filesz)
		if _, err := io.ReadFull(p.Open(), data); err != nil {
			return fmt.Errorf("reading interpreter segment: %w", err)
		}
		if err := mm.Write(InterpBase+p.Paddr, data); err != nil {
			return fmt.Errorf("writing interpreter segment at %#x: %w", InterpBase+p.Paddr, err)
		}
	}
	return nil
}

// permsFromFlags translates ELF segment flags to the engine's permission
// lattice per §4.2 step 3: X implies R|X, W adds W, R adds R.
func permsFromFlags(flags elf.ProgFlag) cpuengine.Perm {
	var perms cpuengine.Perm
	if flags&elf.PF_X != 0 {
		perms |= cpuengine.PermRead | cpuengine.PermExec
	}
	if flags&elf.PF_W != 0 {
		perms |= cpuengine.PermWrite
	}
	if flags&elf.PF_R != 0 {
		perms |= cpuengine.PermRead
	}
	return perms
}

// readPhdrInfo reads e_phoff/e_phentsize/e_phnum directly from the raw
// Elf64_Ehdr, since debug/elf's File does not expose them: AT_PHDR needs the
// file offset of the program header table, not just the parsed Progs slice.
func readPhdrInfo(path string, order binary.ByteOrder) (phoff uint64, phentsize, phnum uint16, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, 0, err
	}
	defer f.Close()

	var hdr [64]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return 0, 0, 0, err
	}

	phoff = order.Uint64(hdr[32:40])
	phentsize = order.Uint16(hdr[54:56])
	phnum = order.Uint16(hdr[56:58])
	return phoff, phentsize, phnum, nil
}

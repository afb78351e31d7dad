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

// Package mmu is the guest memory manager: page-aligned map/unmap/protect
// over a cpuengine.Engine, plus a bookkeeping table of Regions with
// permissions and a human-readable description. Grounded on the
// origin/memtop bookkeeping table and bounds-checked accessors of the
// teacher's ARM co-processor memory model (MapAddress / read8bit / etc. in
// hardware/memory/cartridge/{elf,arm}), generalised from a fixed 32-bit
// co-processor address space to a page-granular 64-bit guest.
package mmu

import (
	"fmt"
	"sort"

	"github.com/jetsetilly/aarch64emu/internal/cpuengine"
)

const pageSize = 4096

// AlignUpStrict rounds x up to the next multiple of the page size, always
// adding at least one page — even when x is already aligned. This
// intentionally preserves the source behaviour callers rely on for
// size-derivation (see §9 "Alignment helper asymmetry").
func AlignUpStrict(x uint64) uint64 {
	return ((x / pageSize) + 1) * pageSize
}

// AlignUpPage rounds x up to the nearest multiple of the page size without
// the AlignUpStrict asymmetry: an already-aligned x is returned unchanged.
// Used by Map, Unmap and Protect, where over-rounding would touch more
// than was requested.
func AlignUpPage(x uint64) uint64 {
	return (x + pageSize - 1) / pageSize * pageSize
}

// AlignDown rounds x down to the nearest multiple of the page size.
func AlignDown(x uint64) uint64 {
	return (x / pageSize) * pageSize
}

// Region is one bookkeeping entry for a mapped guest virtual range.
type Region struct {
	Start       uint64
	End         uint64
	Perms       cpuengine.Perm
	Description string
}

func (r *Region) String() string {
	return fmt.Sprintf("%016x-%016x %s %s", r.Start, r.End, permString(r.Perms), r.Description)
}

func permString(p cpuengine.Perm) string {
	b := []byte("---")
	if p&cpuengine.PermRead != 0 {
		b[0] = 'r'
	}
	if p&cpuengine.PermWrite != 0 {
		b[1] = 'w'
	}
	if p&cpuengine.PermExec != 0 {
		b[2] = 'x'
	}
	return string(b)
}

// Manager is the memory manager: the engine it maps pages through, and the
// MemoryMap bookkeeping table keyed by each Region's Start address.
type Manager struct {
	engine cpuengine.Engine
	byAddr map[uint64]*Region
}

// New creates a Manager bound to engine.
func New(engine cpuengine.Engine) *Manager {
	return &Manager{engine: engine, byAddr: make(map[uint64]*Region)}
}

// Map maps size bytes (rounded up with AlignUpPage) at addr with the
// given permissions and description. If the requested range is already
// fully covered by existing Regions, Map is a no-op that returns success —
// the idempotence rule of §4.1.
func (m *Manager) Map(addr, size uint64, perms cpuengine.Perm, desc string) error {
	aligned := AlignUpPage(size)
	if m.IsMapped(addr, aligned) {
		return nil
	}
	if desc == "" {
		desc = "[mapped]"
	}
	if err := m.engine.MemMap(addr, aligned, perms); err != nil {
		return fmt.Errorf("mmu: map %#x+%#x: %w", addr, aligned, err)
	}
	m.byAddr[addr] = &Region{Start: addr, End: addr + aligned, Perms: perms, Description: desc}
	return nil
}

// Unmap removes the mapping covering [addr, addr+AlignUpPage(size)),
// splitting any Region that only partially overlaps the requested range so
// that surviving head/tail slices remain in bookkeeping under their own
// (possibly new) start address. This implements the REDESIGN FLAG of §9:
// the bookkeeping map never holds overlapping or dangling Regions after an
// Unmap.
func (m *Manager) Unmap(addr, size uint64) error {
	aligned := AlignUpPage(size)
	reqEnd := addr + aligned

	for _, r := range m.regionsOverlapping(addr, reqEnd) {
		delete(m.byAddr, r.Start)

		if r.Start < addr {
			head := &Region{Start: r.Start, End: addr, Perms: r.Perms, Description: r.Description}
			m.byAddr[head.Start] = head
		}
		if r.End > reqEnd {
			tail := &Region{Start: reqEnd, End: r.End, Perms: r.Perms, Description: r.Description}
			m.byAddr[tail.Start] = tail
		}
	}

	if err := m.engine.MemUnmap(addr, aligned); err != nil {
		return fmt.Errorf("mmu: unmap %#x+%#x: %w", addr, aligned, err)
	}
	return nil
}

// regionsOverlapping returns every Region that intersects [start, end),
// sorted by Start so callers get deterministic split behaviour.
func (m *Manager) regionsOverlapping(start, end uint64) []*Region {
	var hits []*Region
	for _, r := range m.byAddr {
		if r.Start < end && r.End > start {
			hits = append(hits, r)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Start < hits[j].Start })
	return hits
}

// Protect changes permissions on the range covering [addr, addr+size) both
// in bookkeeping and on the engine. Note: the mprotect *syscall* handler
// (internal/syscalls) deliberately does not call this — see DESIGN.md's
// Open Question resolution for mprotect. No syscall handler calls Protect;
// it is exercised only by this package's tests.
func (m *Manager) Protect(addr, size uint64, perms cpuengine.Perm) error {
	aligned := AlignUpPage(size)
	if err := m.engine.MemProtect(addr, aligned, perms); err != nil {
		return fmt.Errorf("mmu: protect %#x+%#x: %w", addr, aligned, err)
	}
	if r := m.RegionOf(addr, aligned); r != nil {
		r.Perms = perms
	}
	return nil
}

// Annotate overwrites (or inserts) the bookkeeping Region for [addr, end)
// without touching the engine. Used by the mmap syscall handler to attach a
// file's guest path as the description of an already-mapped range (§4.6),
// since Map's idempotence would otherwise silently skip the description
// update for an address the caller already mapped itself.
func (m *Manager) Annotate(addr, end uint64, perms cpuengine.Perm, desc string) {
	m.byAddr[addr] = &Region{Start: addr, End: end, Perms: perms, Description: desc}
}

// Read reads n bytes of guest memory at addr.
func (m *Manager) Read(addr uint64, n uint64) ([]byte, error) {
	b, err := m.engine.MemRead(addr, n)
	if err != nil {
		return nil, fmt.Errorf("mmu: read %#x+%#x: %w", addr, n, err)
	}
	return b, nil
}

// Write writes data to guest memory at addr.
func (m *Manager) Write(addr uint64, data []byte) error {
	if err := m.engine.MemWrite(addr, data); err != nil {
		return fmt.Errorf("mmu: write %#x+%#x: %w", addr, len(data), err)
	}
	return nil
}

// IsMapped reports whether every byte of [addr, addr+size) is covered by
// some combination of bookkeeping Regions.
func (m *Manager) IsMapped(addr, size uint64) bool {
	if size == 0 {
		return true
	}
	end := addr + size
	hits := m.regionsOverlapping(addr, end)
	cursor := addr
	for _, r := range hits {
		if r.Start > cursor {
			return false
		}
		if r.End > cursor {
			cursor = r.End
		}
		if cursor >= end {
			return true
		}
	}
	return cursor >= end
}

// RegionOf returns the Region containing addr (len is accepted for
// interface symmetry with the design's region_of(addr, len) but only addr
// is used to select the containing Region), or nil if addr is unmapped.
func (m *Manager) RegionOf(addr, len uint64) *Region {
	for _, r := range m.byAddr {
		if addr >= r.Start && addr < r.End {
			return r
		}
	}
	return nil
}

// Display renders the bookkeeping table, highest address first, for
// diagnostic dumps (fatal.Diagnostic.MemoryMap) and any future `display()`
// debugger command.
func (m *Manager) Display() string {
	regions := make([]*Region, 0, len(m.byAddr))
	for _, r := range m.byAddr {
		regions = append(regions, r)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Start > regions[j].Start })

	s := ""
	for _, r := range regions {
		s += r.String() + "\n"
	}
	return s
}

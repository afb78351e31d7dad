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

package mmu_test

import (
	"fmt"

	"github.com/jetsetilly/aarch64emu/internal/cpuengine"
)

// fakeEngine is a minimal in-process stand-in for the CPU engine capability,
// used so that mmu's tests can run without a real Unicorn instance. It
// models guest memory as one byte slice per MemMap call, keyed by its base
// address.
type fakeEngine struct {
	mem map[uint64][]byte
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{mem: make(map[uint64][]byte)}
}

func (f *fakeEngine) RegRead(reg int) (uint64, error)          { return 0, nil }
func (f *fakeEngine) RegWrite(reg int, val uint64) error       { return nil }
func (f *fakeEngine) HookIntr(cb cpuengine.HookInterrupt) error { return nil }
func (f *fakeEngine) HookInvalidMem(cb cpuengine.HookInvalidMem) error {
	return nil
}
func (f *fakeEngine) Start(begin, until, timeout, count uint64) error { return nil }
func (f *fakeEngine) Stop() error                                    { return nil }
func (f *fakeEngine) Close() error                                   { return nil }
func (f *fakeEngine) EnableFPSIMD() error                            { return nil }

func (f *fakeEngine) MemMap(addr, size uint64, perms cpuengine.Perm) error {
	f.mem[addr] = make([]byte, size)
	return nil
}

func (f *fakeEngine) MemProtect(addr, size uint64, perms cpuengine.Perm) error {
	return nil
}

func (f *fakeEngine) MemUnmap(addr, size uint64) error {
	delete(f.mem, addr)
	return nil
}

func (f *fakeEngine) MemRead(addr, size uint64) ([]byte, error) {
	for base, buf := range f.mem {
		if addr >= base && addr+size <= base+uint64(len(buf)) {
			off := addr - base
			out := make([]byte, size)
			copy(out, buf[off:off+size])
			return out, nil
		}
	}
	return nil, fmt.Errorf("fakeEngine: unmapped read at %#x", addr)
}

func (f *fakeEngine) MemWrite(addr uint64, data []byte) error {
	for base, buf := range f.mem {
		if addr >= base && addr+uint64(len(data)) <= base+uint64(len(buf)) {
			off := addr - base
			copy(buf[off:], data)
			return nil
		}
	}
	return fmt.Errorf("fakeEngine: unmapped write at %#x", addr)
}

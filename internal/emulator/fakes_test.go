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

package emulator

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/jetsetilly/aarch64emu/internal/cpuengine"
)

type fakeEngine struct {
	regions        map[uint64][]byte
	regs           [cpuengine.NumRegisters]uint64
	intrHook       cpuengine.HookInterrupt
	invalidMemHook cpuengine.HookInvalidMem
	startBegin     uint64
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{regions: make(map[uint64][]byte)}
}

func (f *fakeEngine) RegRead(reg int) (uint64, error) { return f.regs[reg], nil }
func (f *fakeEngine) RegWrite(reg int, val uint64) error {
	f.regs[reg] = val
	return nil
}

func (f *fakeEngine) HookIntr(cb cpuengine.HookInterrupt) error {
	f.intrHook = cb
	return nil
}

func (f *fakeEngine) HookInvalidMem(cb cpuengine.HookInvalidMem) error {
	f.invalidMemHook = cb
	return nil
}

func (f *fakeEngine) Start(begin, until, timeout, count uint64) error {
	f.startBegin = begin
	return nil
}

func (f *fakeEngine) Stop() error          { return nil }
func (f *fakeEngine) Close() error         { return nil }
func (f *fakeEngine) EnableFPSIMD() error  { return nil }

func (f *fakeEngine) MemMap(addr, size uint64, perms cpuengine.Perm) error {
	f.regions[addr] = make([]byte, size)
	return nil
}

func (f *fakeEngine) MemProtect(addr, size uint64, perms cpuengine.Perm) error { return nil }

func (f *fakeEngine) MemUnmap(addr, size uint64) error {
	delete(f.regions, addr)
	return nil
}

func (f *fakeEngine) find(addr, size uint64) (base uint64, buf []byte, ok bool) {
	for base, buf := range f.regions {
		if addr >= base && addr+size <= base+uint64(len(buf)) {
			return base, buf, true
		}
	}
	return 0, nil, false
}

func (f *fakeEngine) MemRead(addr, size uint64) ([]byte, error) {
	base, buf, ok := f.find(addr, size)
	if !ok {
		return nil, fmt.Errorf("fakeEngine: unmapped read at %#x len %d", addr, size)
	}
	off := addr - base
	out := make([]byte, size)
	copy(out, buf[off:off+size])
	return out, nil
}

func (f *fakeEngine) MemWrite(addr uint64, data []byte) error {
	base, buf, ok := f.find(addr, uint64(len(data)))
	if !ok {
		return fmt.Errorf("fakeEngine: unmapped write at %#x len %d", addr, len(data))
	}
	off := addr - base
	copy(buf[off:], data)
	return nil
}

// fakeHost backs hostos.Host; Exit records the code instead of terminating
// the test process.
type fakeHost struct {
	exitCode *int
}

func newFakeHost() *fakeHost { return &fakeHost{} }

func (h *fakeHost) Open(path string, flags int, mode uint32) (int, error)     { return -1, fmt.Errorf("unsupported") }
func (h *fakeHost) Openat(dirfd int, path string, flags int, mode uint32) (int, error) {
	return -1, fmt.Errorf("unsupported")
}
func (h *fakeHost) Read(fd int, buf []byte) (int, error)  { return 0, fmt.Errorf("unsupported") }
func (h *fakeHost) Write(fd int, buf []byte) (int, error) { return 0, fmt.Errorf("unsupported") }
func (h *fakeHost) Pread(fd int, buf []byte, offset int64) (int, error) {
	return 0, fmt.Errorf("unsupported")
}
func (h *fakeHost) Close(fd int) error { return nil }
func (h *fakeHost) Fstat(fd int) (unix.Stat_t, error) { return unix.Stat_t{}, fmt.Errorf("unsupported") }
func (h *fakeHost) Fstatat(dirfd int, path string, flags int) (unix.Stat_t, error) {
	return unix.Stat_t{}, fmt.Errorf("unsupported")
}
func (h *fakeHost) Fstatfs(fd int) (unix.Statfs_t, error) { return unix.Statfs_t{}, nil }
func (h *fakeHost) Getpid() int                            { return 4242 }
func (h *fakeHost) SchedGetscheduler(pid int) (int, error) { return 0, nil }
func (h *fakeHost) URandom(n int) ([]byte, error)          { return make([]byte, n), nil }

func (h *fakeHost) Exit(code int) {
	c := code
	h.exitCode = &c
}

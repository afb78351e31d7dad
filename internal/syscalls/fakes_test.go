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

package syscalls_test

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/jetsetilly/aarch64emu/internal/cpuengine"
)

// fakeEngine is a byte-addressable CPU engine stand-in holding one byte
// slice per MemMap call, keyed by base address, so mmap/mremap arena tests
// don't need to track real page-fault behaviour.
type fakeEngine struct {
	regions map[uint64][]byte
	regs    [cpuengine.NumRegisters]uint64
	stopped bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{regions: make(map[uint64][]byte)}
}

func (f *fakeEngine) RegRead(reg int) (uint64, error) { return f.regs[reg], nil }
func (f *fakeEngine) RegWrite(reg int, val uint64) error {
	f.regs[reg] = val
	return nil
}
func (f *fakeEngine) HookIntr(cb cpuengine.HookInterrupt) error               { return nil }
func (f *fakeEngine) HookInvalidMem(cb cpuengine.HookInvalidMem) error        { return nil }
func (f *fakeEngine) Start(begin, until, timeout, count uint64) error         { return nil }
func (f *fakeEngine) Stop() error                                             { f.stopped = true; return nil }
func (f *fakeEngine) Close() error                                            { return nil }
func (f *fakeEngine) EnableFPSIMD() error                                     { return nil }

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

// fakeHost backs hostos.Host with real file I/O against a temp directory
// plus deterministic stand-ins for the id/random/stat calls.
type fakeHost struct {
	files  map[int]*os.File
	next   int
	pid    int
	random byte
}

func newFakeHost() *fakeHost {
	return &fakeHost{files: make(map[int]*os.File), next: 3, pid: 4242}
}

func (h *fakeHost) Open(path string, flags int, mode uint32) (int, error) {
	f, err := os.OpenFile(path, flags, os.FileMode(mode))
	if err != nil {
		return -1, err
	}
	fd := h.next
	h.next++
	h.files[fd] = f
	return fd, nil
}

func (h *fakeHost) Openat(dirfd int, path string, flags int, mode uint32) (int, error) {
	return h.Open(path, flags, mode)
}

func (h *fakeHost) Read(fd int, buf []byte) (int, error)  { return h.files[fd].Read(buf) }
func (h *fakeHost) Write(fd int, buf []byte) (int, error) { return h.files[fd].Write(buf) }
func (h *fakeHost) Pread(fd int, buf []byte, offset int64) (int, error) {
	return h.files[fd].ReadAt(buf, offset)
}

func (h *fakeHost) Close(fd int) error {
	f, ok := h.files[fd]
	if !ok {
		return fmt.Errorf("fakeHost: fd %d not open", fd)
	}
	delete(h.files, fd)
	return f.Close()
}

func (h *fakeHost) Fstat(fd int) (unix.Stat_t, error) {
	f, ok := h.files[fd]
	if !ok {
		return unix.Stat_t{}, fmt.Errorf("fakeHost: fd %d not open", fd)
	}
	var st unix.Stat_t
	info, err := f.Stat()
	if err != nil {
		return st, err
	}
	st.Size = info.Size()
	return st, nil
}

func (h *fakeHost) Fstatat(dirfd int, path string, flags int) (unix.Stat_t, error) {
	info, err := os.Stat(path)
	if err != nil {
		return unix.Stat_t{}, err
	}
	var st unix.Stat_t
	st.Size = info.Size()
	return st, nil
}

func (h *fakeHost) Fstatfs(fd int) (unix.Statfs_t, error) { return unix.Statfs_t{}, nil }
func (h *fakeHost) Getpid() int                            { return h.pid }
func (h *fakeHost) SchedGetscheduler(pid int) (int, error) { return 0, nil }

func (h *fakeHost) URandom(n int) ([]byte, error) {
	b := make([]byte, n)
	for i := range b {
		h.random++
		b[i] = h.random
	}
	return b, nil
}

func (h *fakeHost) Exit(code int) {}

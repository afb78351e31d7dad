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

package guestfs_test

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// fakeHost is an in-process stand-in for hostos.Host, delegating to the
// real os package for file operations so tests can exercise Open/Read/
// Close against a temp directory without needing a container-style rootfs.
type fakeHost struct {
	files map[int]*os.File
	next  int
}

func newFakeHost() *fakeHost {
	return &fakeHost{files: make(map[int]*os.File), next: 3}
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
	return -1, fmt.Errorf("fakeHost: openat not supported in tests")
}

func (h *fakeHost) Read(fd int, buf []byte) (int, error) {
	return h.files[fd].Read(buf)
}

func (h *fakeHost) Write(fd int, buf []byte) (int, error) {
	return h.files[fd].Write(buf)
}

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

func (h *fakeHost) Fstat(fd int) (unix.Stat_t, error)                 { return unix.Stat_t{}, nil }
func (h *fakeHost) Fstatat(int, string, int) (unix.Stat_t, error)     { return unix.Stat_t{}, nil }
func (h *fakeHost) Fstatfs(fd int) (unix.Statfs_t, error)             { return unix.Statfs_t{}, nil }
func (h *fakeHost) Getpid() int                                       { return 1337 }
func (h *fakeHost) SchedGetscheduler(pid int) (int, error)            { return 0, nil }
func (h *fakeHost) URandom(n int) ([]byte, error)                     { return make([]byte, n), nil }
func (h *fakeHost) Exit(code int)                                     {}

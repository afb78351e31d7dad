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

// Package hostos is the "host OS" capability of §6: open/openat/read/
// write/pread/close/sched_getscheduler, fstat/fstatat/fstatfs, process id,
// /dev/urandom reading, and process exit. It has no lseek, fcntl or ioctl
// entry points. Every host-facing
// syscall handler in internal/syscalls goes through this interface rather
// than calling golang.org/x/sys/unix directly, so that the dispatcher's
// tests can substitute a fake.
package hostos

import (
	"os"

	"golang.org/x/sys/unix"
)

// Host is the capability interface.
type Host interface {
	Open(path string, flags int, mode uint32) (int, error)
	Openat(dirfd int, path string, flags int, mode uint32) (int, error)
	Read(fd int, buf []byte) (int, error)
	Write(fd int, buf []byte) (int, error)
	Pread(fd int, buf []byte, offset int64) (int, error)
	Close(fd int) error
	Fstat(fd int) (unix.Stat_t, error)
	Fstatat(dirfd int, path string, flags int) (unix.Stat_t, error)
	Fstatfs(fd int) (unix.Statfs_t, error)
	Getpid() int
	SchedGetscheduler(pid int) (int, error)
	URandom(n int) ([]byte, error)
	Exit(code int)
}

// unixHost backs Host with golang.org/x/sys/unix raw syscalls.
type unixHost struct{}

// New returns the real host OS capability.
func New() Host { return unixHost{} }

func (unixHost) Open(path string, flags int, mode uint32) (int, error) {
	return unix.Open(path, flags, mode)
}

func (unixHost) Openat(dirfd int, path string, flags int, mode uint32) (int, error) {
	return unix.Openat(dirfd, path, flags, mode)
}

func (unixHost) Read(fd int, buf []byte) (int, error) {
	return unix.Read(fd, buf)
}

func (unixHost) Write(fd int, buf []byte) (int, error) {
	return unix.Write(fd, buf)
}

func (unixHost) Pread(fd int, buf []byte, offset int64) (int, error) {
	return unix.Pread(fd, buf, offset)
}

func (unixHost) Close(fd int) error {
	return unix.Close(fd)
}

func (unixHost) Fstat(fd int) (unix.Stat_t, error) {
	var st unix.Stat_t
	err := unix.Fstat(fd, &st)
	return st, err
}

func (unixHost) Fstatat(dirfd int, path string, flags int) (unix.Stat_t, error) {
	var st unix.Stat_t
	err := unix.Fstatat(dirfd, path, &st, flags)
	return st, err
}

func (unixHost) Fstatfs(fd int) (unix.Statfs_t, error) {
	var st unix.Statfs_t
	err := unix.Fstatfs(fd, &st)
	return st, err
}

func (unixHost) Getpid() int {
	return unix.Getpid()
}

func (unixHost) SchedGetscheduler(pid int) (int, error) {
	return unix.SchedGetscheduler(pid)
}

func (unixHost) URandom(n int) ([]byte, error) {
	f, err := os.Open("/dev/urandom")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	if _, err := readFull(f, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readFull(f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (unixHost) Exit(code int) {
	os.Exit(code)
}

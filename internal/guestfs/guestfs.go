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

// Package guestfs provides virtual-root path translation, a table of guest
// file descriptors, and the /proc and /dev path-rewrite rules of §4.3.
// Grounded on the name-to-index lookup table pattern of
// elfMemory.sectionsByName / mem.Reference(segment) in the teacher's ELF
// cartridge support, generalised from section names to guest paths and fds.
package guestfs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/aarch64emu/internal/hostos"
)

// driverPaths are owned by the host unchanged; the guest never sees rootfs
// rewriting for these.
var driverPaths = map[string]bool{
	"/dev/urandom":    true,
	"/dev/random":     true,
	"/dev/srandom":    true,
	"/dev/null":       true,
	"/proc/self/exe":  true,
}

// GuestFile is one entry in the FileTable: the guest-visible path, the
// underlying host descriptor, the open flags, and an advisory "shared" bit
// (false unless MarkShared is called).
type GuestFile struct {
	Path   string
	HostFD int
	Flags  int
	Shared bool
}

// FS is the guest filesystem: rootfs translation plus the FileTable
// (host_fd -> GuestFile), used for reverse lookup of a path from an fd
// (mmap of a file, readlinkat("/proc/self/fd/N")).
type FS struct {
	rootfs string
	host   hostos.Host
	files  map[int]*GuestFile
}

// New creates a guest filesystem rooted at rootfs.
func New(rootfs string, host hostos.Host) *FS {
	return &FS{rootfs: rootfs, host: host, files: make(map[int]*GuestFile)}
}

// TranslatePath maps a guest path to the host path that backs it, applying
// the §4.3 rewrite rules. It performs no traversal check itself; Open and
// Openat call ValidatePath first, which replaces the "reject any ..
// anywhere" behaviour flagged in §9.
func (fs *FS) TranslatePath(p string) string {
	if driverPaths[p] || strings.Contains(p, "/proc/self/fd") {
		return p
	}
	if p == "/sys/fs/selinux/null" {
		return "/dev/null"
	}
	return fs.rootfs + "/" + p
}

// hasDotDotComponent is the naive traversal test of §4.3: it reports
// whether any path component is literally "..", regardless of whether the
// resulting path would still resolve inside rootfs.
func hasDotDotComponent(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// ValidatePath applies the REDESIGN FLAG of §9: for a path with a ".."
// component, the canonicalised (lexically cleaned) form of the translated
// path must still have rootfs as a prefix. This allows paths like
// "a/../b" that happen to resolve inside rootfs, while a path that would
// escape rootfs even after cleaning is rejected. Driver paths and paths
// without a ".." component are accepted without further checks.
func (fs *FS) ValidatePath(guestPath string) error {
	if driverPaths[guestPath] || strings.Contains(guestPath, "/proc/self/fd") {
		return nil
	}
	if hasDotDotComponent(guestPath) {
		translated := fs.TranslatePath(guestPath)
		clean := filepath.Clean(translated)
		rootClean := filepath.Clean(fs.rootfs)
		if clean != rootClean && !strings.HasPrefix(clean, rootClean+"/") {
			return fmt.Errorf("guestfs: path %q escapes rootfs", guestPath)
		}
	}
	return nil
}

// Open translates path, opens it on the host, and on success registers the
// returned host fd in the FileTable. Returns fd == -1 on an ordinary host
// open(2) failure. Returns a non-nil error only for the ".." traversal
// case, which §8 requires to be a fatal abort rather than a guest-visible
// -1 — the caller (internal/syscalls) turns that into a dispatcher-fatal
// error via the fatal package.
func (fs *FS) Open(path string, flags int) (int, error) {
	if err := fs.ValidatePath(path); err != nil {
		return -1, err
	}

	hostPath := fs.TranslatePath(path)
	hostFlags := openFlags(flags)

	fd, err := fs.host.Open(hostPath, hostFlags, 0644)
	if err != nil {
		return -1, nil
	}

	fs.files[fd] = &GuestFile{Path: path, HostFD: fd, Flags: flags}
	return fd, nil
}

// Openat implements §4.3's openat: a dirfd in [1, 256) is forwarded
// directly to the host openat with the raw path bytes; otherwise it falls
// back to Open. See Open for the traversal-error convention.
func (fs *FS) Openat(dirfd int, path string, flags int, mode uint32) (int, error) {
	if dirfd < 1 || dirfd >= 256 {
		return fs.Open(path, flags)
	}

	if err := fs.ValidatePath(path); err != nil {
		return -1, err
	}

	fd, err := fs.host.Openat(dirfd, path, openFlags(flags), mode)
	if err != nil {
		return -1, nil
	}

	fs.files[fd] = &GuestFile{Path: path, HostFD: fd, Flags: flags}
	return fd, nil
}

// openFlags derives a host open(2) flag bitset from the low two bits of the
// guest flags word (RDONLY/WRONLY/RDWR) plus an O_CREAT test, per §4.3.
func openFlags(guestFlags int) int {
	const (
		oAccMode = 0x3
		oRDWR    = 0x2
		oWRONLY  = 0x1
		oCreat   = 0x40 // Linux O_CREAT
	)

	flags := guestFlags & oAccMode
	if guestFlags&oCreat != 0 {
		flags |= oCreat
	}
	_ = oWRONLY
	_ = oRDWR
	return flags
}

// Read forwards to the host on the raw fd.
func (fs *FS) Read(fd int, buf []byte) (int, error) {
	return fs.host.Read(fd, buf)
}

// Write forwards to the host on the raw fd.
func (fs *FS) Write(fd int, buf []byte) (int, error) {
	return fs.host.Write(fd, buf)
}

// Pread reads len(buf) bytes at offset without disturbing the file's
// current position: it saves the offset implicitly by using a positional
// pread(2), per §4.3 (the save/seek/restore described there is the
// semantics pread(2) already gives us on the host; see DESIGN.md's
// guestfs entry for why this repo does not hand-roll lseek/read/lseek).
func (fs *FS) Pread(fd int, buf []byte, offset int64) (int, error) {
	return fs.host.Pread(fd, buf, offset)
}

// Close closes fd on the host and removes it from the FileTable.
func (fs *FS) Close(fd int) error {
	err := fs.host.Close(fd)
	delete(fs.files, fd)
	return err
}

// PathOf performs the linear FileTable scan of §4.3: it returns the
// original guest path for fd, or ok == false if fd is not open (either
// never opened, or already closed).
func (fs *FS) PathOf(fd int) (string, bool) {
	gf, ok := fs.files[fd]
	if !ok {
		return "", false
	}
	return gf.Path, true
}

// MarkShared records the advisory "shared" bit on an open file. The mmap
// handler does not call it, so MAP_SHARED mappings leave the bit unset.
func (fs *FS) MarkShared(fd int) {
	if gf, ok := fs.files[fd]; ok {
		gf.Shared = true
	}
}

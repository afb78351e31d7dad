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

package syscalls

import (
	"github.com/jetsetilly/aarch64emu/internal/cpuengine"
	"github.com/jetsetilly/aarch64emu/internal/fatal"
	"github.com/jetsetilly/aarch64emu/internal/mmu"
)

var (
	errMremapNoOldLen  = fatal.DispatchErrorf("mremap: old_len == 0")
	errMremapNoMayMove = fatal.DispatchErrorf("mremap: MREMAP_MAYMOVE not set")
)

const (
	mapAnonymous = 0x20
	maxFDs       = 1024
)

// sysMmap implements §4.6. addr == 0 picks a fresh slot from the mmap arena
// cursor; addr != 0 is assumed already reserved by the caller (a known
// imperfection flagged in §9 — MAP_FIXED without an existing mapping is not
// mapped on demand here). A non-anonymous fd backs the new range with file
// contents and an auxiliary bookkeeping Region labelled with the file's
// guest path.
func sysMmap(ctx *Context, args [8]uint64) (uint64, error) {
	length := args[1]
	flags := args[3]
	fd := int64(args[4])
	off := int64(args[5])

	aligned := mmu.AlignUpStrict(length)

	var base uint64
	if args[0] == 0 {
		base = ctx.MmapAddress
		ctx.MmapAddress += aligned
		if err := ctx.MM.Map(base, aligned, cpuengine.RWX, "[syscall_mmap]"); err != nil {
			return minusOne, nil
		}
	} else {
		base = args[0]
	}

	if flags&mapAnonymous == 0 && fd > 0 && fd < maxFDs {
		data := make([]byte, length)
		n, err := ctx.FS.Pread(int(fd), data, off)
		if err == nil {
			_ = ctx.MM.Write(base, data[:n])
			path, _ := ctx.FS.PathOf(int(fd))
			end := base + mmu.AlignUpPage(length)
			ctx.MM.Annotate(base, end, cpuengine.RWX, path)
		}
	}

	return base, nil
}

// sysMprotect is a silent stub: bookkeeping and the engine are both left
// untouched, per §4.4's "recorded only, returns 0" and the Open Question
// resolution in DESIGN.md. mmu.Manager.Protect exists as a real primitive,
// but no handler calls it.
func sysMprotect(ctx *Context, args [8]uint64) (uint64, error) {
	return 0, nil
}

func sysMunmap(ctx *Context, args [8]uint64) (uint64, error) {
	if err := ctx.MM.Unmap(args[0], args[1]); err != nil {
		return minusOne, nil
	}
	return 0, nil
}

const mremapMayMove = 0x1

// sysMremap implements §4.6: without MREMAP_MAYMOVE, or a zero old_len, it
// fails loudly (a dispatch-fatal error, since the source's own single-
// threaded design never needs the in-place case). Otherwise it relocates
// the enclosing Region's contents to a fresh arena slot.
func sysMremap(ctx *Context, args [8]uint64) (uint64, error) {
	addr := args[0]
	oldLen := args[1]
	newLen := args[2]
	flags := args[3]

	if oldLen == 0 {
		return minusOne, errMremapNoOldLen
	}
	if flags&mremapMayMove == 0 {
		return minusOne, errMremapNoMayMove
	}

	region := ctx.MM.RegionOf(addr, oldLen)
	if region == nil {
		return minusOne, nil
	}

	old, err := ctx.MM.Read(addr, oldLen)
	if err != nil {
		return minusOne, nil
	}

	if err := ctx.MM.Unmap(addr, oldLen); err != nil {
		return minusOne, nil
	}

	newBase := ctx.MmapAddress
	aligned := mmu.AlignUpStrict(newLen)
	ctx.MmapAddress += aligned

	if err := ctx.MM.Map(newBase, aligned, cpuengine.RWX, region.Description); err != nil {
		return minusOne, nil
	}

	n := oldLen
	if newLen < n {
		n = newLen
	}
	if err := ctx.MM.Write(newBase, old[:n]); err != nil {
		return minusOne, nil
	}

	return newBase, nil
}

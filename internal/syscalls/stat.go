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
	"github.com/jetsetilly/aarch64emu/internal/codec"

	"golang.org/x/sys/unix"
)

// marshalStat packs a host unix.Stat_t into the fixed aarch64 guest stat
// buffer layout of §6, little-endian, substituting uid/gid with the guest's
// own (global) uid/gid rather than the host's.
func marshalStat(enc codec.Codec, st unix.Stat_t, uid, gid uint32) []byte {
	var buf []byte
	app := func(b []byte) { buf = append(buf, b...) }

	app(enc.PackU64(uint64(st.Dev)))
	app(enc.PackU64(uint64(st.Ino)))
	app(enc.PackU32(uint32(st.Mode)))
	app(enc.PackU32(uint32(st.Nlink)))
	app(enc.PackU32(uid))
	app(enc.PackU32(gid))
	app(enc.PackU64(uint64(st.Rdev)))
	app(enc.PackU64(0)) // pad
	app(enc.PackU64(uint64(st.Size)))
	app(enc.PackU32(uint32(st.Blksize)))
	app(enc.PackU32(0)) // pad
	app(enc.PackU64(uint64(st.Blocks)))
	app(enc.PackU64(uint64(st.Atim.Sec)))
	app(enc.PackU64(0)) // atime_ns
	app(enc.PackU64(uint64(st.Mtim.Sec)))
	app(enc.PackU64(0)) // mtime_ns
	app(enc.PackU64(uint64(st.Ctim.Sec)))
	app(enc.PackU64(0)) // ctime_ns
	return buf
}

// sysFstatat marshals the host fstatat result of the translated path into
// the guest stat buffer, with uid/gid fixed at 1000/1000 per §6. Returns -1
// without touching the buffer if the translated path does not exist.
func sysFstatat(ctx *Context, args [8]uint64) (uint64, error) {
	dirfd := int(int64(args[0]))
	path, err := readCString(ctx.MM, args[1])
	if err != nil {
		return minusOne, nil
	}

	hostPath := ctx.FS.TranslatePath(path)
	st, err := ctx.Host.Fstatat(dirfd, hostPath, int(args[3]))
	if err != nil {
		return minusOne, nil
	}

	buf := marshalStat(ctx.Codec, st, 1000, 1000)
	if err := ctx.MM.Write(args[2], buf); err != nil {
		return minusOne, nil
	}
	return 0, nil
}

// sysFstat marshals the host fstat result of fd into the guest stat buffer,
// with uid/gid fixed at 0/0 per §6.
func sysFstat(ctx *Context, args [8]uint64) (uint64, error) {
	fd := int(args[0])
	st, err := ctx.Host.Fstat(fd)
	if err != nil {
		return minusOne, nil
	}

	buf := marshalStat(ctx.Codec, st, 0, 0)
	if err := ctx.MM.Write(args[1], buf); err != nil {
		return minusOne, nil
	}
	return 0, nil
}

// statfsConstants are the fixed 12 x u64 placeholder values of §6, used as
// an ext-family stand-in response.
var statfsConstants = [12]uint64{
	0xef53, // f_type: EXT4_SUPER_MAGIC
	0x1000, // f_bsize
	0x4000000, 0x3000000, 0x3000000, // f_blocks, f_bfree, f_bavail
	0x100000, 0x100000, // f_files, f_ffree
	0, 0, // f_fsid (two words)
	255,   // f_namelen
	0x1000, // f_frsize
	0,     // f_flags
}

func sysFstatfs(ctx *Context, args [8]uint64) (uint64, error) {
	var buf []byte
	for _, w := range statfsConstants {
		buf = append(buf, ctx.Codec.PackU64(w)...)
	}
	if err := ctx.MM.Write(args[1], buf); err != nil {
		return minusOne, nil
	}
	return 0, nil
}

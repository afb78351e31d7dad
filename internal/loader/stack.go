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

package loader

import (
	"fmt"

	"github.com/jetsetilly/aarch64emu/internal/codec"
	"github.com/jetsetilly/aarch64emu/internal/mmu"
)

// stackStrings records where writeStackStrings placed each string, so the
// auxv and table can be assembled once every address is known.
type stackStrings struct {
	elfPathAddr  uint64
	argvAddrs    []uint64
	envpAddrs    []uint64
	randomAddr   uint64
	platformAddr uint64
	cursor       uint64
}

// writeStackStrings implements §4.2 step 7's string phase: elf_path, then
// argv in reverse, then envp in reverse, then 16 random bytes and the
// "aarch64" platform string, each written immediately below the previous
// cursor. Every string is NUL-terminated; the random bytes are written
// as-is, with no terminator.
func writeStackStrings(mm *mmu.Manager, top uint64, elfPath string, argv, envp []string, random []byte) (*stackStrings, error) {
	cursor := top
	var writeErr error

	writeCString := func(s string) uint64 {
		if writeErr != nil {
			return 0
		}
		b := append([]byte(s), 0)
		cursor -= uint64(len(b))
		if err := mm.Write(cursor, b); err != nil {
			writeErr = fmt.Errorf("writing stack string %q: %w", s, err)
			return 0
		}
		return cursor
	}

	elfPathAddr := writeCString(elfPath)

	argvAddrs := make([]uint64, len(argv))
	for i := len(argv) - 1; i >= 0; i-- {
		argvAddrs[i] = writeCString(argv[i])
	}

	envpAddrs := make([]uint64, len(envp))
	for i := len(envp) - 1; i >= 0; i-- {
		envpAddrs[i] = writeCString(envp[i])
	}

	if writeErr != nil {
		return nil, writeErr
	}

	if len(random) < 16 {
		return nil, fmt.Errorf("writing stack strings: need 16 random bytes, got %d", len(random))
	}
	cursor -= 16
	randomAddr := cursor
	if err := mm.Write(randomAddr, random[:16]); err != nil {
		return nil, fmt.Errorf("writing random seed: %w", err)
	}

	platform := append([]byte("aarch64"), 0)
	cursor -= uint64(len(platform))
	platformAddr := cursor
	if err := mm.Write(platformAddr, platform); err != nil {
		return nil, fmt.Errorf("writing platform string: %w", err)
	}

	return &stackStrings{
		elfPathAddr:  elfPathAddr,
		argvAddrs:    argvAddrs,
		envpAddrs:    envpAddrs,
		randomAddr:   randomAddr,
		platformAddr: platformAddr,
		cursor:       cursor,
	}, nil
}

// assembleTable builds the ELF table of §4.2 step 7: argc, arg0 pointer,
// argv pointers, a NULL terminator, envp pointers, a NULL terminator, then
// the auxiliary vector.
func assembleTable(enc codec.Codec, elfPathAddr uint64, argvAddrs, envpAddrs []uint64, auxv []auxEntry) []byte {
	words := make([]uint64, 0, 2+len(argvAddrs)+1+len(envpAddrs)+1+2*len(auxv))
	words = append(words, uint64(len(argvAddrs)+1))
	words = append(words, elfPathAddr)
	words = append(words, argvAddrs...)
	words = append(words, 0)
	words = append(words, envpAddrs...)
	words = append(words, 0)
	for _, a := range auxv {
		words = append(words, a.key, a.val)
	}

	buf := make([]byte, 0, len(words)*8)
	for _, w := range words {
		buf = append(buf, enc.PackU64(w)...)
	}
	return buf
}

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
	"bytes"
	"fmt"

	"github.com/jetsetilly/aarch64emu/internal/mmu"
)

const maxGuestString = 4096

// readCString reads a NUL-terminated byte string from guest memory at addr,
// a handful of handlers' only way to turn a guest pointer argument (a path,
// in every case here) into a Go string.
func readCString(mm *mmu.Manager, addr uint64) (string, error) {
	const chunk = 64

	var buf []byte
	for uint64(len(buf)) < maxGuestString {
		b, err := mm.Read(addr+uint64(len(buf)), chunk)
		if err != nil {
			return "", fmt.Errorf("reading guest string at %#x: %w", addr, err)
		}
		if i := bytes.IndexByte(b, 0); i >= 0 {
			buf = append(buf, b[:i]...)
			return string(buf), nil
		}
		buf = append(buf, b...)
	}
	return "", fmt.Errorf("guest string at %#x exceeds %d bytes with no NUL", addr, maxGuestString)
}

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

// Auxiliary vector keys emitted to the guest stack, per §6.
const (
	atNull     = 0
	atPHDR     = 3
	atPHENT    = 4
	atPHNUM    = 5
	atPAGESZ   = 6
	atBase     = 7
	atFlags    = 8
	atEntry    = 9
	atUID      = 11
	atEUID     = 12
	atGID      = 13
	atEGID     = 14
	atPlatform = 15
	atHWCAP    = 16
	atCLKTCK   = 17
	atSecure   = 23
	atRandom   = 25
)

// auxEntry is one (key, value) pair of the auxiliary vector.
type auxEntry struct {
	key uint64
	val uint64
}

// buildAuxv assembles the auxv in the exact order listed in §6, terminated
// by AT_NULL.
func buildAuxv(phdr, phent, phnum, interpBase, entry, randomAddr, platformAddr uint64) []auxEntry {
	return []auxEntry{
		{atPHDR, phdr},
		{atPHENT, phent},
		{atPHNUM, phnum},
		{atPAGESZ, 0x1000},
		{atBase, interpBase},
		{atFlags, 0},
		{atEntry, entry},
		{atUID, 0},
		{atEUID, 0},
		{atGID, 0},
		{atEGID, 0},
		{atHWCAP, 0x078bfbfd},
		{atCLKTCK, 100},
		{atRandom, randomAddr},
		{atPlatform, platformAddr},
		{atSecure, 0},
		{atNull, 0},
	}
}

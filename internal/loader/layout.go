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

// Layout constants for the aarch64 guest address space, matching the
// original implementation's fixed addresses (§3).
const (
	StackBase    = 0x4fff_ffff_de000
	StackSize    = 0x30000
	LoadBase     = 0x5555_5555_4000
	InterpBase   = 0x7fff_b7dd_5000
	MmapAreaBase = 0x7fff_f7dd_6000

	brkSlack = 0x2000
)

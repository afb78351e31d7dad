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

package cpuengine

import (
	"fmt"

	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"
)

// unicornEngine backs Engine with a real Unicorn Engine instance configured
// for aarch64 (UC_ARCH_ARM64 / UC_MODE_ARM).
type unicornEngine struct {
	mu uc.Unicorn
}

// NewUnicorn creates an aarch64 Unicorn Engine instance and wraps it as an
// Engine.
func NewUnicorn() (Engine, error) {
	mu, err := uc.NewUnicorn(uc.ARCH_ARM64, uc.MODE_ARM)
	if err != nil {
		return nil, fmt.Errorf("cpuengine: creating unicorn instance: %w", err)
	}
	return &unicornEngine{mu: mu}, nil
}

var aarch64Regs = [NumRegisters]int{
	X0: uc.ARM64_REG_X0, X1: uc.ARM64_REG_X1, X2: uc.ARM64_REG_X2, X3: uc.ARM64_REG_X3,
	X4: uc.ARM64_REG_X4, X5: uc.ARM64_REG_X5, X6: uc.ARM64_REG_X6, X7: uc.ARM64_REG_X7,
	X8: uc.ARM64_REG_X8, X9: uc.ARM64_REG_X9, X10: uc.ARM64_REG_X10, X11: uc.ARM64_REG_X11,
	X12: uc.ARM64_REG_X12, X13: uc.ARM64_REG_X13, X14: uc.ARM64_REG_X14, X15: uc.ARM64_REG_X15,
	X16: uc.ARM64_REG_X16, X17: uc.ARM64_REG_X17, X18: uc.ARM64_REG_X18, X19: uc.ARM64_REG_X19,
	X20: uc.ARM64_REG_X20, X21: uc.ARM64_REG_X21, X22: uc.ARM64_REG_X22, X23: uc.ARM64_REG_X23,
	X24: uc.ARM64_REG_X24, X25: uc.ARM64_REG_X25, X26: uc.ARM64_REG_X26, X27: uc.ARM64_REG_X27,
	X28: uc.ARM64_REG_X28, X29: uc.ARM64_REG_X29, X30: uc.ARM64_REG_X30,
	SP: uc.ARM64_REG_SP, PC: uc.ARM64_REG_PC,
}

func (e *unicornEngine) RegRead(reg int) (uint64, error) {
	v, err := e.mu.RegRead(aarch64Regs[reg])
	return v, err
}

func (e *unicornEngine) RegWrite(reg int, val uint64) error {
	return e.mu.RegWrite(aarch64Regs[reg], val)
}

func permToProt(perms Perm) int {
	prot := uc.PROT_NONE
	if perms&PermRead != 0 {
		prot |= uc.PROT_READ
	}
	if perms&PermWrite != 0 {
		prot |= uc.PROT_WRITE
	}
	if perms&PermExec != 0 {
		prot |= uc.PROT_EXEC
	}
	return prot
}

func (e *unicornEngine) MemMap(addr, size uint64, perms Perm) error {
	return e.mu.MemMapProt(addr, size, permToProt(perms))
}

func (e *unicornEngine) MemProtect(addr, size uint64, perms Perm) error {
	return e.mu.MemProtect(addr, size, permToProt(perms))
}

func (e *unicornEngine) MemUnmap(addr, size uint64) error {
	return e.mu.MemUnmap(addr, size)
}

func (e *unicornEngine) MemRead(addr, size uint64) ([]byte, error) {
	return e.mu.MemRead(addr, size)
}

func (e *unicornEngine) MemWrite(addr uint64, data []byte) error {
	return e.mu.MemWrite(addr, data)
}

func (e *unicornEngine) HookIntr(cb HookInterrupt) error {
	_, err := e.mu.HookAdd(uc.HOOK_INTR, func(mu uc.Unicorn, intno uint32) {
		cb(intno)
	}, 1, 0)
	return err
}

func (e *unicornEngine) HookInvalidMem(cb HookInvalidMem) error {
	_, err := e.mu.HookAdd(uc.HOOK_MEM_INVALID, func(mu uc.Unicorn, access int, addr uint64, size int, value int64) bool {
		write := access == uc.MEM_WRITE_UNMAPPED || access == uc.MEM_WRITE_PROT
		return cb(addr, size, write)
	}, 1, 0)
	return err
}

func (e *unicornEngine) Start(begin, until, timeout, count uint64) error {
	return e.mu.StartWithOptions(begin, until, &uc.UcOptions{Timeout: timeout, Count: count})
}

func (e *unicornEngine) Stop() error {
	return e.mu.Stop()
}

func (e *unicornEngine) Close() error {
	return e.mu.Close()
}

func (e *unicornEngine) EnableFPSIMD() error {
	v, err := e.mu.RegRead(uc.ARM64_REG_CPACR_EL1)
	if err != nil {
		return fmt.Errorf("cpuengine: reading CPACR_EL1: %w", err)
	}
	return e.mu.RegWrite(uc.ARM64_REG_CPACR_EL1, v|0x30_0000)
}

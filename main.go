package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jetsetilly/aarch64emu/internal/emulator"
	"github.com/jetsetilly/aarch64emu/internal/logger"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if len(flag.Args()) != 2 {
		fmt.Println("* usage: aarch64emu [-debug] <elf-path> <rootfs-dir>")
		os.Exit(1)
	}

	if *debug || os.Getenv("AARCH64EMU_DEBUG") != "" {
		logger.Enable()
	}

	elfPath := flag.Args()[0]
	rootfs := flag.Args()[1]

	emu, err := emulator.New(elfPath, rootfs, nil, nil, logger.Debug())
	if err != nil {
		fmt.Printf("* error loading %s (%s)\n", elfPath, err)
		os.Exit(1)
	}
	defer emu.Close()

	if err := emu.Run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

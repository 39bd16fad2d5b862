// Command rvsmp pumps an rvsmp Machine from the command line: load a
// kernel (or SD-card image), optionally start secondary hart workers, run
// the primary hart to completion, and print whatever it wrote to UART.
// Flag handling and the fatal-on-first-error style follow
// bassosimone-risc32/cmd/vm/main.go.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"rvsmp/vm"
)

func main() {
	log.SetFlags(0)
	kernelPath := flag.String("f", "", "kernel image to run")
	sdcardPath := flag.String("sdcard", "", "boot from a raw SD-card image instead of -f")
	harts := flag.Uint("harts", 0, "number of harts (0 = auto-detect)")
	verbose := flag.Bool("v", false, "log each primary-hart batch")
	flag.Parse()

	if *kernelPath == "" && *sdcardPath == "" {
		log.Fatal("usage: rvsmp [-harts N] [-v] (-f <kernel-file> | -sdcard <image-file>)")
	}

	machine, err := buildMachine(*kernelPath, *sdcardPath, uint32(*harts))
	if err != nil {
		log.Fatal(err)
	}

	if machine.NumHarts() > 1 {
		if err := machine.StartWorkers(); err != nil {
			log.Fatal(err)
		}
		defer machine.TerminateWorkers()
	}

	run(machine, *verbose)
}

func buildMachine(kernelPath, sdcardPath string, harts uint32) (*vm.Machine, error) {
	if sdcardPath != "" {
		data, err := os.ReadFile(sdcardPath)
		if err != nil {
			return nil, fmt.Errorf("rvsmp: reading sdcard image: %w", err)
		}
		return vm.NewFromSDCard(data, vm.Options{Harts: harts})
	}

	data, err := os.ReadFile(kernelPath)
	if err != nil {
		return nil, fmt.Errorf("rvsmp: reading kernel: %w", err)
	}
	if harts == 0 {
		return vm.New(data)
	}
	return vm.NewWithHarts(data, harts)
}

func run(machine *vm.Machine, verbose bool) {
	for {
		if verbose {
			log.Printf("rvsmp: is_smp=%v num_harts=%d", machine.IsSMP(), machine.NumHarts())
		}
		more := machine.Step()
		drainOutput(machine)
		if !more {
			break
		}
	}
	drainOutput(machine)
}

func drainOutput(machine *vm.Machine) {
	for {
		b, ok := machine.GetOutput()
		if !ok {
			return
		}
		os.Stdout.Write([]byte{b})
	}
}

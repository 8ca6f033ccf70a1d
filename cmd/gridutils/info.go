package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/subcommands"

	"github.com/eak1mov/go-libgrid/gridio"
)

type infoCmd struct {
	inputFormat string
	listFormats bool
}

func (c *infoCmd) Name() string     { return "info" }
func (c *infoCmd) Synopsis() string { return "print grid headers" }
func (c *infoCmd) Usage() string {
	return "gridutils info [-if <format>] <path>...\ngridutils info -formats\n"
}
func (c *infoCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputFormat, "if", "", "Input format (code[/scale/offset[/nan]])")
	f.BoolVar(&c.listFormats, "formats", false, "List the supported grid formats")
}

func (c *infoCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	registry := gridio.Default()
	if c.listFormats {
		for _, format := range registry.Formats() {
			fmt.Printf("%d\t%s\t%s\n", format.ID, format.Code, format.Description)
		}
		return subcommands.ExitSuccess
	}
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	spec, err := registry.ParseFormat(c.inputFormat)
	if err != nil {
		log.Println(err)
		return subcommands.ExitUsageError
	}

	s := newSession()
	status := subcommands.ExitSuccess
	for _, name := range f.Args() {
		h, err := registry.ReadInfo(s, name, spec)
		if err != nil {
			log.Println(err)
			status = subcommands.ExitFailure
			continue
		}
		format, _ := registry.Lookup(h.Format)
		fmt.Printf("%s: Title: %s\n", name, h.Title)
		fmt.Printf("%s: Command: %s\n", name, h.Command)
		fmt.Printf("%s: Remark: %s\n", name, h.Remark)
		fmt.Printf("%s: Format: %s (%s)\n", name, format.Code, format.Description)
		fmt.Printf("%s: Registration: %s\n", name, h.Registration)
		fmt.Printf("%s: x_min: %g x_max: %g x_inc: %g nx: %d\n", name, h.XMin, h.XMax, h.XInc, h.Nx)
		fmt.Printf("%s: y_min: %g y_max: %g y_inc: %g ny: %d\n", name, h.YMin, h.YMax, h.YInc, h.Ny)
		fmt.Printf("%s: z_min: %g z_max: %g\n", name, h.ZMin, h.ZMax)
		fmt.Printf("%s: scale_factor: %g add_offset: %g\n", name, h.ZScaleFactor, h.ZAddOffset)
		if h.HasNaNProxy() {
			fmt.Printf("%s: nan_value: %g\n", name, h.NaNValue)
		}
	}
	return status
}

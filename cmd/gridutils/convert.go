package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"

	"github.com/eak1mov/go-libgrid/grid"
	"github.com/eak1mov/go-libgrid/gridio"
)

type convertCmd struct {
	inputFormat  string
	inputPath    string
	outputFormat string
	outputPath   string
	region       string
	title        string
}

func (c *convertCmd) Name() string     { return "convert" }
func (c *convertCmd) Synopsis() string { return "convert between grid formats" }
func (c *convertCmd) Usage() string {
	return "gridutils convert -i <path> -o <path> [-if <format> | -of <format> | -R w/e/s/n]\n"
}
func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input path (= for standard input)")
	f.StringVar(&c.inputFormat, "if", "", "Input format (code[/scale/offset[/nan]], detected when empty)")
	f.StringVar(&c.outputPath, "o", "", "Output path (= for standard output)")
	f.StringVar(&c.outputFormat, "of", "bf", "Output format (code[/scale/offset[/nan]])")
	f.StringVar(&c.region, "R", "", "Sub-region w/e/s/n to extract")
	f.StringVar(&c.title, "title", "", "Title stored in the output header")
}

func (c *convertCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.inputPath == "" || c.outputPath == "" {
		log.Println("both -i and -o are required")
		return subcommands.ExitUsageError
	}
	registry := gridio.Default()
	outSpec, err := registry.ParseFormat(c.outputFormat)
	if err != nil {
		log.Println(err)
		return subcommands.ExitUsageError
	}
	if outSpec.ID == grid.FormatAuto {
		log.Println("output format must be given")
		return subcommands.ExitUsageError
	}

	bar := progressbar.NewOptions(2,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("reading"),
		progressbar.OptionShowCount(),
	)
	s := newSession()
	h, data, err := readGrid(s, c.inputPath, c.inputFormat, c.region)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	bar.Add(1)

	h.Name = c.outputPath
	h.Format = outSpec.ID
	h.ZScaleFactor, h.ZAddOffset = outSpec.Scale, outSpec.Offset
	h.NaNValue = outSpec.NaN
	if c.title != "" {
		h.Title = c.title
	}

	bar.Describe("writing")
	if _, err := registry.WriteGrid(s, h, data, grid.IO{}); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	bar.Add(1)
	bar.Finish()

	return subcommands.ExitSuccess
}

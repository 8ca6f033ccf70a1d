package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"

	"github.com/eak1mov/go-libgrid/contour"
	"github.com/eak1mov/go-libgrid/contourdb"
	"github.com/eak1mov/go-libgrid/grid"
	"github.com/eak1mov/go-libgrid/xy"
)

type contourCmd struct {
	inputFormat  string
	inputPath    string
	outputFormat string
	outputPath   string
	region       string
	interval     float64
	levels       string
	smooth       int
	scheme       string
	periodic     bool
}

func (c *contourCmd) Name() string     { return "contour" }
func (c *contourCmd) Synopsis() string { return "trace contour lines of a grid" }
func (c *contourCmd) Usage() string {
	return "gridutils contour -i <path> -o <path> (-c <interval> | -l <z1,z2,...>) [-of db|xy -s <factor> -scheme <name>]\n"
}
func (c *contourCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input grid path (= for standard input)")
	f.StringVar(&c.inputFormat, "if", "", "Input format (code[/scale/offset[/nan]], detected when empty)")
	f.StringVar(&c.outputPath, "o", "", "Output path; xy patterns may contain {level}")
	f.StringVar(&c.outputFormat, "of", "", "Output format (db, xy)")
	f.StringVar(&c.region, "R", "", "Sub-region w/e/s/n to contour")
	f.Float64Var(&c.interval, "c", 0, "Contour interval")
	f.StringVar(&c.levels, "l", "", "Comma separated contour levels")
	f.IntVar(&c.smooth, "s", 0, "Resampling factor applied to every line")
	f.StringVar(&c.scheme, "scheme", "linear", "Resampling scheme (linear, akima, cubic)")
	f.BoolVar(&c.periodic, "periodic", false, "Values are angles in degrees")
}

func (c *contourCmd) contourLevels(h grid.Header) ([]float64, error) {
	if c.levels == "" {
		return contour.Levels(h.ZMin, h.ZMax, c.interval)
	}
	var levels []float64
	for _, s := range strings.Split(c.levels, ",") {
		level, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func (c *contourCmd) newWriter(h grid.Header) (contour.Writer, error) {
	switch deduceContourFormat(c.outputFormat, c.outputPath) {
	case "db":
		return contourdb.NewWriter(c.outputPath, h,
			contourdb.WithMetadata(map[string]string{"source": c.inputPath}),
			contourdb.WithLogger(slog.Default()),
		)
	case "xy":
		return xy.NewWriter(c.outputPath)
	}
	return nil, fmt.Errorf("invalid output format: %q", c.outputFormat)
}

func (c *contourCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.inputPath == "" || c.outputPath == "" {
		log.Println("both -i and -o are required")
		return subcommands.ExitUsageError
	}
	scheme, err := contour.ParseScheme(c.scheme)
	if err != nil {
		log.Println(err)
		return subcommands.ExitUsageError
	}

	h, data, err := readGrid(newSession(), c.inputPath, c.inputFormat, c.region)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	levels, err := c.contourLevels(h)
	if err != nil {
		log.Println(err)
		return subcommands.ExitUsageError
	}

	field, err := contour.NewField(data, h, grid.Pad{},
		contour.WithSmoothing(c.smooth),
		contour.WithScheme(scheme),
		contour.WithPeriodic(c.periodic),
		contour.WithLogger(slog.Default()),
	)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	writer, err := c.newWriter(h)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	if closer, ok := writer.(io.Closer); ok {
		defer closer.Close()
	}

	bar := progressbar.NewOptions(len(levels),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("levels"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
	)
	lines := 0
	for _, level := range levels {
		for line := range field.Lines(level) {
			if err := writer.WriteLine(line); err != nil {
				log.Println(err)
				return subcommands.ExitFailure
			}
			lines++
		}
		bar.Add(1)
	}
	bar.Finish()
	slog.Info("contours traced", "levels", len(levels), "lines", lines)

	if err := writer.Finalize(); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

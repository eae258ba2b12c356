package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli"
	"github.com/valerio/go-z88bench/z88bench"
	"github.com/valerio/go-z88bench/z88bench/hdl/fetchsim"
	"github.com/valerio/go-z88bench/z88bench/machine"
	"github.com/valerio/go-z88bench/z88bench/memory"
	"github.com/valerio/go-z88bench/z88bench/monitor"
	"github.com/valerio/go-z88bench/z88bench/timing"
	"github.com/valerio/go-z88bench/z88bench/video"
)

func main() {
	app := cli.NewApp()
	app.Name = "z88bench"
	app.Description = "Clock-stepped test bench for a Z88 hardware model"
	app.Usage = "z88bench [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.Uint64Flag{
			Name:  "us",
			Usage: "Simulated time to run, in microseconds",
		},
		cli.Uint64Flag{
			Name:  "ms",
			Usage: "Simulated time to run, in milliseconds",
		},
		cli.Uint64Flag{
			Name:  "sec",
			Usage: "Simulated time to run, in seconds",
		},
		cli.IntFlag{
			Name:  "skip",
			Usage: "Do not write trace logs, images or waveforms numbered below this index",
		},
		cli.StringFlag{
			Name:  "machine",
			Usage: "Machine preset (" + strings.Join(machine.Presets(), ", ") + ") or YAML descriptor path",
			Value: machine.Z88.Name,
		},
		cli.StringFlag{
			Name:  "out",
			Usage: "Directory for trace logs, images and waveforms",
			Value: ".",
		},
		cli.StringFlag{
			Name:  "name",
			Usage: "Prefix of trace log and waveform files",
			Value: "z88",
		},
		cli.StringFlag{
			Name:  "monitor",
			Usage: "Progress display: plain, screen or none",
			Value: "plain",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
		cli.BoolFlag{
			Name:  "vcd",
			Usage: "Dump a waveform of the model pins",
		},
		cli.Uint64Flag{
			Name:  "vcd-split",
			Usage: "Start a new waveform file every N picoseconds of simulated time (0 = never)",
			Value: timing.Millisecond,
		},
		cli.BoolFlag{
			Name:  "vcd-on-frame",
			Usage: "Start a new waveform file on every frame",
		},
		cli.BoolFlag{
			Name:  "png",
			Usage: "Write frames as PNG instead of BMP",
		},
		cli.StringFlag{
			Name:  "pattern",
			Usage: "Video test pattern streamed by the model: none, checkerboard, stripes or diagonal",
			Value: fetchsim.PatternNone.String(),
		},
		cli.Uint64Flag{
			Name:  "frame-steps",
			Usage: "Steps between frame pulses of the model (0 = no frames)",
		},
		cli.BoolFlag{
			Name:  "print-machine",
			Usage: "Print the machine descriptor as YAML and exit",
		},
	}
	app.Action = runBench

	err := app.Run(os.Args)
	code, msg := exitCode(err)
	switch {
	case code < 0:
		slog.Debug("ROM load failed", "error", err)
		fmt.Println(msg)
	case code > 0:
		slog.Error("Error running bench", "error", msg)
	}
	os.Exit(code)
}

// exitCode maps the error returned by the app to the process exit code and
// the message reported for it. ROM failures exit with -1.
func exitCode(err error) (int, string) {
	switch {
	case err == nil:
		return 0, ""
	case errors.Is(err, memory.ErrROM):
		return -1, "Cannot open ROM file for reading."
	}
	return 1, err.Error()
}

func runBench(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	desc, err := machine.Load(c.String("machine"))
	if err != nil {
		return err
	}
	if c.Bool("print-machine") {
		data, err := machine.Marshal(desc)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	if c.NArg() == 0 {
		cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}
	rom, err := memory.LoadROM(c.Args().First(), desc.ROM.Size, desc.ROM.Latency)
	if err != nil {
		return err
	}

	model, err := newModel(c, desc)
	if err != nil {
		return err
	}

	observer, err := newObserver(c.String("monitor"), level)
	if err != nil {
		return err
	}

	images := video.BMP
	if c.Bool("png") {
		images = video.PNG
	}
	duration := timing.Duration(c.Uint64("us"), c.Uint64("ms"), c.Uint64("sec"))

	bench, err := z88bench.New(model, rom, z88bench.Config{
		Machine:    desc,
		Steps:      timing.Budget(duration, desc.StepPS),
		OutDir:     c.String("out"),
		Name:       c.String("name"),
		MinIndex:   c.Int("skip"),
		Images:     images,
		VCD:        c.Bool("vcd"),
		VCDSplitPS: c.Uint64("vcd-split"),
		VCDOnFrame: c.Bool("vcd-on-frame"),
		Observer:   observer,
	})
	if err != nil {
		_ = observer.Close(monitor.Stats{})
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, runErr := bench.Run(ctx)
	return errors.Join(runErr, bench.Close())
}

func newModel(c *cli.Context, desc machine.Descriptor) (*fetchsim.Model, error) {
	pattern, err := fetchsim.ParsePattern(c.String("pattern"))
	if err != nil {
		return nil, err
	}
	cfg := fetchsim.DefaultConfig(desc)
	cfg.Pattern = pattern
	cfg.FrameSteps = c.Uint64("frame-steps")
	return fetchsim.New(cfg)
}

func newObserver(kind string, level slog.Leveler) (monitor.Observer, error) {
	switch kind {
	case "plain":
		return monitor.NewPlain(os.Stdout), nil
	case "screen":
		return monitor.NewScreen(nil, level)
	case "none":
		return monitor.Discard{}, nil
	}
	return nil, fmt.Errorf("unknown monitor %q", kind)
}

// Package z88bench drives a clock-stepped model of a Z88 style computer
// against simulated external memories. Every step it models the access
// latency of the flash and SRAM, catches instruction fetches on the CPU bus
// and turns them into a disassembly trace, decodes video memory into image
// files on every frame, and optionally dumps a waveform.
package z88bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/valerio/go-z88bench/z88bench/bank"
	"github.com/valerio/go-z88bench/z88bench/edge"
	"github.com/valerio/go-z88bench/z88bench/hdl"
	"github.com/valerio/go-z88bench/z88bench/machine"
	"github.com/valerio/go-z88bench/z88bench/memory"
	"github.com/valerio/go-z88bench/z88bench/monitor"
	"github.com/valerio/go-z88bench/z88bench/rotate"
	"github.com/valerio/go-z88bench/z88bench/timing"
	"github.com/valerio/go-z88bench/z88bench/trace"
	"github.com/valerio/go-z88bench/z88bench/video"
	"github.com/valerio/go-z88bench/z88bench/waveform"
)

// ProgressSteps is how often, in steps, the run reports progress and checks
// for cancellation.
const ProgressSteps = 4096

// Config holds the options of a run.
type Config struct {
	Machine machine.Descriptor

	// Steps is the step budget. Zero means timing.DefaultSteps.
	Steps uint64

	OutDir string

	// Name prefixes the trace and waveform files.
	Name string

	// MinIndex is the first trace, image and waveform file actually written.
	MinIndex int

	Images video.Encoding

	VCD bool
	// VCDSplitPS starts a new waveform file every VCDSplitPS picoseconds.
	VCDSplitPS uint64
	// VCDOnFrame starts a new waveform file on every frame.
	VCDOnFrame bool

	Observer monitor.Observer
}

func (c *Config) setDefaults() {
	if c.Steps == 0 {
		c.Steps = timing.DefaultSteps
	}
	if c.Name == "" {
		c.Name = "z88"
	}
	if c.Images == "" {
		c.Images = video.BMP
	}
	if c.Observer == nil {
		c.Observer = monitor.Discard{}
	}
}

// Bench is the simulation context: the model, the memories around it and
// every piece of state carried from one step to the next.
type Bench struct {
	cfg   Config
	model hdl.Model

	rom      *memory.ROM
	sram     *memory.SRAM
	vram     *memory.VRAM
	resolver bank.Resolver

	clock     bool
	reset     bool
	flashData uint8
	sramData  uint16
	timePS    uint64
	steps     uint64

	fetchEdge *edge.Detector
	readEdge  *edge.Detector
	frameEdge *edge.Detector

	acc      trace.Accumulator
	traceOut *rotate.Writer
	emitter  *trace.Emitter
	frames   *video.Writer
	dumper   *waveform.Dumper

	unmapped bool
}

// New wires model to a fresh set of memories. The ROM image is loaded by
// the caller.
func New(model hdl.Model, rom *memory.ROM, cfg Config) (*Bench, error) {
	cfg.setDefaults()
	d := cfg.Machine
	if err := d.Validate(); err != nil {
		return nil, err
	}

	sram, err := memory.NewSRAM(d.SRAM.Size, d.SRAM.Latency)
	if err != nil {
		return nil, err
	}
	vram, err := memory.NewVRAM(d.VRAM.Size, d.VRAM.DataMask)
	if err != nil {
		return nil, err
	}
	if cfg.OutDir != "" {
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	b := &Bench{
		cfg:      cfg,
		model:    model,
		rom:      rom,
		sram:     sram,
		vram:     vram,
		resolver: d.Banking.Resolver(),

		fetchEdge: edge.New(true),
		readEdge:  edge.New(true),
		frameEdge: edge.New(false),

		traceOut: rotate.NewWriter(rotate.Sequence{
			Dir:      cfg.OutDir,
			Pattern:  cfg.Name + "_dasm_%04d.log",
			MinIndex: cfg.MinIndex,
		}),
		frames: video.NewWriter(d.Video, cfg.Images, rotate.Sequence{
			Dir:      cfg.OutDir,
			Pattern:  cfg.Images.Pattern(),
			MinIndex: cfg.MinIndex,
		}),
	}
	b.emitter = trace.NewEmitter(b.traceOut)

	if cfg.VCD {
		rec := waveform.NewRecorder(cfg.Name, b.signals())
		b.dumper = waveform.NewDumper(rec, rotate.Sequence{
			Dir:      cfg.OutDir,
			Pattern:  cfg.Name + "_%04d.vcd",
			MinIndex: cfg.MinIndex,
		}, cfg.VCDSplitPS)
	}

	slog.Info("Bench ready",
		"machine", d.Name,
		"steps", cfg.Steps,
		"rom_size", rom.Size(),
		"rom_latency", rom.Latency(),
		"sram_words", sram.Words(),
		"vram_size", vram.Size())
	return b, nil
}

// TimePS is the simulated time in picoseconds.
func (b *Bench) TimePS() uint64 { return b.timePS }

// Stats summarises the run so far.
func (b *Bench) Stats() monitor.Stats {
	return monitor.Stats{
		Machine:      b.cfg.Machine.Name,
		TimePS:       b.timePS,
		Steps:        b.steps,
		Budget:       b.cfg.Steps,
		Instructions: b.emitter.Lines(),
		Frames:       b.frames.Frames(),
		LastLine:     b.emitter.Last(),
	}
}

// Step advances the simulation by one clock half period.
func (b *Bench) Step() error {
	b.reset = b.steps < b.cfg.Machine.ResetSteps
	b.clock = !b.clock

	b.flashData = b.rom.Step(b.model.Flash())
	b.sramData = b.sram.Step(b.model.SRAM())
	b.vram.Step(b.clock, b.model.Video())

	b.model.Drive(hdl.Inputs{
		Clock:     b.clock,
		Reset:     b.reset,
		FlashData: b.flashData,
		SRAMData:  b.sramData,
	})
	b.model.Eval()

	if err := b.observeBus(); err != nil {
		return err
	}

	if b.dumper != nil {
		if err := b.dumper.Sample(b.timePS); err != nil {
			slog.Error("Waveform dump failed, disabling it", "error", err)
			b.closeDumper()
		}
	}

	if b.frameEdge.Update(b.model.Video().Frame) {
		if err := b.frame(); err != nil {
			return err
		}
	}

	b.timePS += b.cfg.Machine.StepPS
	b.steps++
	return nil
}

// observeBus feeds the fetch and read edges of this step into the opcode
// accumulator and emits every instruction that completes.
func (b *Bench) observeBus() error {
	pins := b.model.Fetch()
	fetch := b.fetchEdge.Update(pins.OpcodeFetch())
	read := b.readEdge.Update(pins.MemoryRead())

	if read {
		b.acc.Read(pins.Data)
	}
	if !fetch {
		return nil
	}

	regs := b.model.Registers()
	id, err := b.resolver.Resolve(regs.PC, b.model.Banking())
	if err != nil && !b.unmapped {
		slog.Warn("Fetch from unmapped segment", "pc", fmt.Sprintf("%04X", regs.PC), "error", err)
		b.unmapped = true
	}

	rec, done := b.acc.Fetch(trace.Start{
		TimePS: b.timePS,
		Regs:   regs,
		Bank:   id,
		Mapped: err == nil,
	}, pins.Data)
	if !done {
		return nil
	}
	_, err = b.emitter.Emit(rec)
	return err
}

// frame handles a frame boundary: the image is written and the trace and
// waveform move to their next files.
func (b *Bench) frame() error {
	if _, err := b.frames.WriteFrame(b.vram); err != nil {
		slog.Error("Failed to write frame", "frame", b.frames.Frames()-1, "error", err)
	}

	if err := b.traceOut.Rotate(); err != nil {
		return fmt.Errorf("failed to rotate trace log: %w", err)
	}

	if b.dumper != nil && b.cfg.VCDOnFrame {
		if err := b.dumper.Rotate(b.timePS); err != nil {
			slog.Error("Waveform rotation failed, disabling it", "error", err)
			b.closeDumper()
		} else {
			slog.Debug("Waveform rotated on frame", "file", b.dumper.Index())
		}
	}
	return nil
}

func (b *Bench) closeDumper() {
	if err := b.dumper.Close(); err != nil {
		slog.Error("Failed to close waveform", "error", err)
	}
	b.dumper = nil
}

// Run steps until the budget is spent, the model finishes, ctx is cancelled
// or the observer asks to stop. Stopping early is not an error.
func (b *Bench) Run(ctx context.Context) (monitor.Stats, error) {
	for b.steps < b.cfg.Steps {
		if err := b.Step(); err != nil {
			return b.Stats(), err
		}
		if b.model.Finished() {
			slog.Info("Model finished", "us", timing.Micros(b.timePS))
			break
		}
		if b.steps%ProgressSteps != 0 {
			continue
		}
		if err := b.traceOut.Flush(); err != nil {
			return b.Stats(), fmt.Errorf("failed to flush trace log: %w", err)
		}
		if ctx.Err() != nil {
			slog.Info("Simulation interrupted", "us", timing.Micros(b.timePS))
			break
		}
		if !b.cfg.Observer.Progress(b.Stats()) {
			slog.Info("Simulation stopped", "us", timing.Micros(b.timePS))
			break
		}
	}
	return b.Stats(), nil
}

// Close flushes and closes every output. The instruction still being
// collected is dropped: without the next fetch it cannot be known to be
// complete.
func (b *Bench) Close() error {
	if rec, ok := b.acc.Pending(); ok {
		slog.Debug("Dropping last instruction",
			"pc", fmt.Sprintf("%04X", rec.PC()),
			"bytes", fmt.Sprintf("% X", rec.Bytes))
	}

	var errs []error
	if err := b.traceOut.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close trace log: %w", err))
	}
	if b.dumper != nil {
		if err := b.dumper.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close waveform: %w", err))
		}
	}
	if err := b.cfg.Observer.Close(b.Stats()); err != nil {
		errs = append(errs, err)
	}

	st := b.Stats()
	slog.Info("Simulation done",
		"us", st.Micros(),
		"steps", st.Steps,
		"instructions", st.Instructions,
		"frames", st.Frames)
	return errors.Join(errs...)
}

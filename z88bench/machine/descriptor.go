// Package machine describes the memory geometry, latencies, banking scheme
// and video layout of the simulated computer. Descriptors come from YAML
// files or from the built-in presets.
package machine

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/valerio/go-z88bench/z88bench/bank"
	"github.com/valerio/go-z88bench/z88bench/bit"
	"github.com/valerio/go-z88bench/z88bench/hdl"
	"github.com/valerio/go-z88bench/z88bench/video"
)

// ErrInvalid is returned for descriptors that fail validation.
var ErrInvalid = errors.New("invalid machine descriptor")

// Memory is the geometry of a delayed memory device.
type Memory struct {
	Size    int `yaml:"size"`
	Latency int `yaml:"latency"` // steps between select and data
}

// VRAM is the geometry of the video memory.
type VRAM struct {
	Size     int   `yaml:"size"`
	DataMask uint8 `yaml:"data_mask"`
}

// Banking holds the segment decoding parameters.
type Banking struct {
	Segments       int    `yaml:"segments"`
	SegmentShift   uint8  `yaml:"segment_shift"`
	LowWindowShift uint8  `yaml:"low_window_shift"`
	LowWindowMask  uint16 `yaml:"low_window_mask"`
	ComSwitchMask  uint8  `yaml:"com_switch_mask"`
	LowBank        uint8  `yaml:"low_bank"`
	HighBank       uint8  `yaml:"high_bank"`
}

// Resolver builds the bank resolver for these parameters.
func (b Banking) Resolver() bank.Resolver {
	return bank.Resolver{
		SegmentShift:   b.SegmentShift,
		Segments:       b.Segments,
		LowWindowShift: b.LowWindowShift,
		LowWindowMask:  b.LowWindowMask,
		ComSwitchMask:  b.ComSwitchMask,
		LowBank:        b.LowBank,
		HighBank:       b.HighBank,
	}
}

// Descriptor is a complete machine description.
type Descriptor struct {
	Name       string       `yaml:"name"`
	StepPS     uint64       `yaml:"step_ps"`     // simulated time per step
	ResetSteps uint64       `yaml:"reset_steps"` // steps reset is held at power-on
	ROM        Memory       `yaml:"rom"`
	SRAM       Memory       `yaml:"sram"`
	VRAM       VRAM         `yaml:"vram"`
	Banking    Banking      `yaml:"banking"`
	Video      video.Format `yaml:"video"`
}

// Validate checks that the descriptor can drive a simulation.
func (d Descriptor) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(d.Name != "", "name is empty")
	check(d.StepPS > 0, "step_ps must be positive")
	check(bit.IsPow2(d.ROM.Size), "rom size %d is not a power of two", d.ROM.Size)
	check(d.ROM.Latency >= 1, "rom latency %d below 1", d.ROM.Latency)
	check(bit.IsPow2(d.SRAM.Size), "sram size %d is not a power of two", d.SRAM.Size)
	check(d.SRAM.Latency >= 1, "sram latency %d below 1", d.SRAM.Latency)
	check(bit.IsPow2(d.VRAM.Size), "vram size %d is not a power of two", d.VRAM.Size)
	check(d.Banking.Segments >= 1 && d.Banking.Segments <= hdl.SegmentCount,
		"banking segments %d outside 1..%d", d.Banking.Segments, hdl.SegmentCount)
	check(d.Banking.SegmentShift < 16, "segment_shift %d too large", d.Banking.SegmentShift)
	check(d.Banking.LowWindowShift < 16, "low_window_shift %d too large", d.Banking.LowWindowShift)

	if bit.IsPow2(d.VRAM.Size) {
		if err := d.Video.Validate(d.VRAM.Size); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalid, d.Name, err)
	}
	return nil
}

// Parse decodes and validates a YAML descriptor. Unknown keys are rejected.
func Parse(data []byte) (Descriptor, error) {
	var d Descriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// Load returns the preset called nameOrPath, or reads the descriptor from
// that file.
func Load(nameOrPath string) (Descriptor, error) {
	if d, ok := presets[nameOrPath]; ok {
		return d, nil
	}
	data, err := os.ReadFile(nameOrPath)
	if err != nil {
		return Descriptor{}, fmt.Errorf("unknown machine %q (presets: %v): %w", nameOrPath, Presets(), err)
	}
	return Parse(data)
}

// Marshal encodes d as YAML.
func Marshal(d Descriptor) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode machine %q: %w", d.Name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Presets lists the built-in machine names.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

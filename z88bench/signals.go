package z88bench

import (
	"fmt"

	"github.com/valerio/go-z88bench/z88bench/bit"
	"github.com/valerio/go-z88bench/z88bench/hdl"
	"github.com/valerio/go-z88bench/z88bench/waveform"
)

// signals lists the values dumped to the waveform, in declaration order.
func (b *Bench) signals() []waveform.Signal {
	m := b.model
	d := b.cfg.Machine
	flashWidth := bit.Width(d.ROM.Size)
	sramWidth := bit.Width(d.SRAM.Size)
	vramWidth := bit.Width(d.VRAM.Size)

	out := []waveform.Signal{
		waveform.Bool("clk", func() bool { return b.clock }),
		waveform.Bool("reset", func() bool { return b.reset }),

		waveform.Bool("FL_CEn", func() bool { return m.Flash().CEn }),
		waveform.Bool("FL_OEn", func() bool { return m.Flash().OEn }),
		waveform.Bus("FL_A", flashWidth, func() uint32 { return m.Flash().Addr }),
		waveform.Bus("FL_D", 8, func() uint8 { return b.flashData }),

		waveform.Bool("SRAM_CEn", func() bool { return m.SRAM().CEn }),
		waveform.Bool("SRAM_OEn", func() bool { return m.SRAM().OEn }),
		waveform.Bool("SRAM_WEn", func() bool { return m.SRAM().WEn }),
		waveform.Bool("SRAM_LBn", func() bool { return m.SRAM().LBn }),
		waveform.Bool("SRAM_UBn", func() bool { return m.SRAM().UBn }),
		waveform.Bus("SRAM_A", sramWidth, func() uint32 { return m.SRAM().Addr }),
		waveform.Bus("SRAM_D", 16, func() uint16 { return b.sramData }),
		waveform.Bus("SRAM_Q", 16, func() uint16 { return m.SRAM().Q }),

		waveform.Bool("M1n", func() bool { return m.Fetch().M1n }),
		waveform.Bool("MREQn", func() bool { return m.Fetch().MREQn }),
		waveform.Bool("PM1", func() bool { return m.Fetch().Valid }),
		waveform.Bus("DI", 8, func() uint8 { return m.Fetch().Data }),
		waveform.Bus("PC", 16, func() uint16 { return m.Registers().PC }),
		waveform.Bus("SP", 16, func() uint16 { return m.Registers().SP }),
	}

	for i := range hdl.SegmentCount {
		out = append(out, waveform.Bus(fmt.Sprintf("SR%d", i), 8, func() uint8 {
			return m.Banking().Segments[i]
		}))
	}
	out = append(out,
		waveform.Bus("COM", 8, func() uint8 { return m.Banking().Com }),
		waveform.Bool("frame", func() bool { return m.Video().Frame }),
		waveform.Bool("VRAM_WE", func() bool { return m.Video().WriteEnable }),
		waveform.Bus("VRAM_A", vramWidth, func() uint32 { return m.Video().WriteAddr }),
		waveform.Bus("VRAM_D", 8, func() uint8 { return m.Video().WriteData }),
	)
	return out
}

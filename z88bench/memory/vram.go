package memory

import "github.com/valerio/go-z88bench/z88bench/hdl"

// VRAM is the video memory written by the video controller's write port.
// Only dataMask bits of each byte are stored.
type VRAM struct {
	*Bank
	dataMask uint8
}

func NewVRAM(size int, dataMask uint8) (*VRAM, error) {
	bank, err := NewBank("vram", size)
	if err != nil {
		return nil, err
	}
	return &VRAM{Bank: bank, dataMask: dataMask}, nil
}

// Step applies the write port. Writes only land while the clock is high.
func (v *VRAM) Step(clock bool, pins hdl.VideoPins) {
	if clock && pins.WriteEnable {
		v.Write(pins.WriteAddr, pins.WriteData&v.dataMask)
	}
}

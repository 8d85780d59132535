// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package io

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
)

// Ads1x15 samples the control pots through an ADS1115 on an I2C
// bus, standing in for the on-chip converter of the reference
// controller. Each Start runs the conversion in a goroutine so it
// overlaps the control loop's settling delay, the same way the
// hardware conversion overlaps the fixed delay on the original
// board. Results are scaled to the 10 bit range of that converter.
type Ads1x15 struct {
	bus      i2c.BusCloser
	pins     map[int]ads1x15.PinADC
	max      physic.ElectricPotential
	selected int
	busy     bool
	res      chan uint16
	last     uint16
}

// NewAds1x15 opens an ADS1115 at its default address on the bus.
// Channels 0 to 3 map to inputs AIN0 to AIN3, measured single ended
// against a full scale of mv millivolts.
func NewAds1x15(bus i2c.BusCloser, mv int) (*Ads1x15, error) {
	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("ads1115: %v", err)
	}
	a := new(Ads1x15)
	a.bus = bus
	a.max = physic.ElectricPotential(mv) * physic.MilliVolt
	a.pins = make(map[int]ads1x15.PinADC)
	a.res = make(chan uint16, 1)
	channels := []ads1x15.Channel{
		ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3,
	}
	for ch, c := range channels {
		p, err := adc.PinForChannel(c, a.max, 860*physic.Hertz, ads1x15.SaveEnergy)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %v", ch, err)
		}
		a.pins[ch] = p
	}
	return a, nil
}

func (a *Ads1x15) Select(ch int) {
	a.selected = ch
}

// Start begins a conversion on the selected channel. A failed read
// is logged and reports the previous value, so one bad conversion
// nudges the output rather than slewing it.
func (a *Ads1x15) Start() {
	pin, ok := a.pins[a.selected]
	if !ok {
		return
	}
	ch := a.selected
	last := a.last
	a.busy = true
	go func() {
		s, err := pin.Read()
		if err != nil {
			log.Printf("adc channel %d: %v", ch, err)
			a.res <- last
			return
		}
		a.res <- potScale(s.V, a.max)
	}()
}

func (a *Ads1x15) Ready() bool {
	if !a.busy {
		return true
	}
	select {
	case v := <-a.res:
		a.last = v
		a.busy = false
		return true
	default:
		return false
	}
}

func (a *Ads1x15) Sample10() uint16 {
	return a.last
}

func (a *Ads1x15) Sample8() uint8 {
	return uint8(a.last >> 2)
}

// Close releases the bus.
func (a *Ads1x15) Close() {
	a.bus.Close()
}

// potScale converts a measured voltage to the 10 bit range of the
// reference converter.
func potScale(v, max physic.ElectricPotential) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= max {
		return 1023
	}
	return uint16(int64(v) * 1023 / int64(max))
}

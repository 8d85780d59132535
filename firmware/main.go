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

//go:build rp2040

// Firmware for a rocking stand on a Raspberry Pi Pico. The three
// pots connect to GP26, GP27 and GP28, and the servo signal comes
// from GP22. Telemetry goes out on the USB console, one line per
// second, in the format the monitor utility reads.
package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/servo"

	"github.com/wtarreau/rocking-stand/sine"
	"github.com/wtarreau/rocking-stand/stand"
)

// telemetry interval in control cycles, about once a second
const reportEvery = 50

// picoBoard runs the stand from the Pico's own converter and PWM.
// It has a single output line carrying the servo pulse.
type picoBoard struct {
	adc      [4]machine.ADC
	out      servo.Servo
	selected int
	sample   uint16
}

func newPicoBoard() (*picoBoard, error) {
	machine.InitADC()
	b := new(picoBoard)
	b.adc = [4]machine.ADC{
		{Pin: machine.ADC0},
		{Pin: machine.ADC1},
		{Pin: machine.ADC2},
		{Pin: machine.ADC3},
	}
	for i := range b.adc {
		if err := b.adc[i].Configure(machine.ADCConfig{}); err != nil {
			return nil, err
		}
	}
	out, err := servo.New(machine.PWM3, machine.GP22)
	if err != nil {
		return nil, err
	}
	b.out = out
	return b, nil
}

func (b *picoBoard) Select(ch int) {
	b.selected = ch & 3
}

// Start captures the result immediately; the on-chip converter
// finishes in a couple of microseconds, well inside any settling
// delay, so Ready never reports busy.
func (b *picoBoard) Start() {
	b.sample = b.adc[b.selected].Get()
}

func (b *picoBoard) Ready() bool {
	return true
}

// Get scales every reading to 16 bits whatever the converter width,
// so the reference precisions are the top bits.
func (b *picoBoard) Sample10() uint16 {
	return b.sample >> 6
}

func (b *picoBoard) Sample8() uint8 {
	return uint8(b.sample >> 8)
}

func (b *picoBoard) Delay(us int) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

func (b *picoBoard) Pulse(line, us int) {
	if err := b.out.SetMicroseconds(int16(us)); err != nil {
		println("servo error at width", us)
	}
	b.Delay(us)
}

func main() {
	b, err := newPicoBoard()
	if err != nil {
		panic(err)
	}
	p := stand.Defaults()
	// ADC3 measures VSYS on the Pico board, so the controls sit on
	// channels 0 to 2.
	p.OffsetChan = 0
	p.SpeedChan = 1
	p.AmpChan = 2
	st := stand.NewStand(b, sine.New(), p)
	for i := 0; ; i++ {
		st.Step()
		if i%reportEvery == 0 {
			t := st.Get()
			println("o=", t.Offset, "s=", t.Speed, "a=", t.Amp, "pw=", t.Width)
		}
	}
}

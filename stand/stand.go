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

// Package stand drives a servo rocking stand from three analogue
// controls. Each cycle reads an offset, a speed and an amplitude
// setting, converts the current phase angle through an 8 bit sine,
// and emits one servo pulse. The conversion settling delays pace the
// loop at roughly 50 Hz, so no other timer is needed.
package stand

import (
	"sync"

	"github.com/wtarreau/rocking-stand/sine"
)

// Board is the hardware the stand runs on. Implementations cover the
// converter and pulse output of a real controller as well as purely
// simulated ones.
type Board interface {
	// Select routes the numbered input channel to the converter.
	Select(ch int)
	// Start begins a conversion on the selected channel.
	Start()
	// Ready reports whether the conversion result can be read.
	Ready() bool
	// Sample8 reads the result as its most significant 8 bits.
	Sample8() uint8
	// Sample10 reads the full 10 bit result.
	Sample10() uint16
	// Delay pauses for the given number of microseconds.
	Delay(us int)
	// Pulse drives the numbered output line high for us microseconds.
	Pulse(line, us int)
}

// Params holds the tunable settings of a stand.
type Params struct {
	Line       int // output line for the servo pulse
	Center     int // pulse width at mid travel, microseconds
	Min        int // pulse width floor, microseconds
	Max        int // pulse width ceiling, microseconds
	SettleUs   int // delay after starting a conversion
	OffsetChan int // input channel of the offset control
	SpeedChan  int // input channel of the speed control
	AmpChan    int // input channel of the amplitude control
	OffsetGain int // left shift applied to the centred offset
	SpeedGain  int // left shift applied to the phase increment
	AmpDivisor int // right shift applied to the scaled sine
}

// Defaults returns the parameters of the reference stand.
func Defaults() Params {
	return Params{
		Line:       0,
		Center:     1500,
		Min:        500,
		Max:        2500,
		SettleUs:   6000,
		OffsetChan: 1,
		SpeedChan:  2,
		AmpChan:    3,
		OffsetGain: 1,
		SpeedGain:  2,
		AmpDivisor: 6,
	}
}

// Pots is a snapshot of the most recent control cycle.
type Pots struct {
	Offset uint16 // raw 10 bit offset reading
	Speed  uint16 // raw 10 bit speed reading
	Amp    uint8  // raw 8 bit amplitude reading
	Width  int    // pulse width sent, microseconds
	Angle  uint16 // phase angle after the cycle
}

// Stand rocks a servo back and forth.
type Stand struct {
	board Board
	sin   *sine.Sine
	mu    sync.Mutex // guards params, angle and last
	p     Params
	angle uint16
	last  Pots
}

// NewStand creates a stand driving the board with the sine table
// provided.
func NewStand(b Board, s *sine.Sine, p Params) *Stand {
	st := new(Stand)
	st.board = b
	st.sin = s
	st.p = p
	return st
}

// Run cycles the stand forever.
func (s *Stand) Run() {
	for {
		s.Step()
	}
}

// Step performs one control cycle: sample the three controls, emit
// one pulse, advance the phase. The pulse width sent is returned.
func (s *Stand) Step() int {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	offset := s.sample10(p.OffsetChan, p.SettleUs)
	speed := s.sample10(p.SpeedChan, p.SettleUs)
	amp := s.sample8(p.AmpChan, p.SettleUs)
	s.mu.Lock()
	w := s.width(uint8(s.angle>>8), offset, amp, p)
	s.angle += speed << p.SpeedGain
	s.last = Pots{Offset: offset, Speed: speed, Amp: amp, Width: w, Angle: s.angle}
	s.mu.Unlock()
	s.board.Pulse(p.Line, w)
	return w
}

// Get returns a snapshot of the last control cycle.
func (s *Stand) Get() Pots {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Params returns a copy of the current settings.
func (s *Stand) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p
}

// Tune replaces the settings. The phase angle is kept so the wave
// continues from where it was.
func (s *Stand) Tune(p Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
}

// Phase returns the current phase angle.
func (s *Stand) Phase() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.angle
}

// SetPhase forces the phase angle, restarting the wave from a known
// point.
func (s *Stand) SetPhase(angle uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.angle = angle
}

// width computes the clamped pulse width for one phase angle and
// one set of control samples.
func (s *Stand) width(angle uint8, offset uint16, amp uint8, p Params) int {
	w := p.Center + (int(offset)-512)<<p.OffsetGain +
		int(s.sin.Sin(angle))*int(amp)>>p.AmpDivisor
	if w < p.Min {
		w = p.Min
	}
	if w > p.Max {
		w = p.Max
	}
	return w
}

// sample10 reads a full resolution sample from one channel.
func (s *Stand) sample10(ch, settle int) uint16 {
	s.start(ch, settle)
	return s.board.Sample10()
}

// sample8 reads a reduced resolution sample from one channel.
func (s *Stand) sample8(ch, settle int) uint8 {
	s.start(ch, settle)
	return s.board.Sample8()
}

// start runs a conversion and waits until the result is ready. The
// settling delay lets the source impedance charge the sampling
// capacitor before the result is polled.
func (s *Stand) start(ch, settle int) {
	s.board.Select(ch)
	s.board.Start()
	s.board.Delay(settle)
	for !s.board.Ready() {
	}
}

// SquareWave emits a 1 kHz square wave on the line for the given
// number of cycles, or forever when cycles is zero or less. It is
// meant for checking the output stage and timing with a frequency
// meter before a servo is connected.
func SquareWave(b Board, line, cycles int) {
	for i := 0; cycles <= 0 || i < cycles; i++ {
		b.Pulse(line, 500)
		b.Delay(500)
	}
}

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

package stand

import (
	"fmt"
	"strings"
	"testing"

	"github.com/wtarreau/rocking-stand/sine"
)

// fakeBoard scripts the converter and records every operation so
// tests can check both results and sequencing.
type fakeBoard struct {
	pots     map[int]uint16 // 10 bit reading per channel
	notReady int            // polls reporting busy after each start
	selected int
	pending  int
	ops      []string
	pulses   []int
	lines    []int
	slept    int
}

func newFakeBoard() *fakeBoard {
	b := new(fakeBoard)
	b.pots = map[int]uint16{}
	return b
}

func (b *fakeBoard) Select(ch int) {
	b.selected = ch
	b.ops = append(b.ops, fmt.Sprintf("select %d", ch))
}

func (b *fakeBoard) Start() {
	b.pending = b.notReady
	b.ops = append(b.ops, "start")
}

func (b *fakeBoard) Ready() bool {
	if b.pending > 0 {
		b.pending--
		b.ops = append(b.ops, "busy")
		return false
	}
	b.ops = append(b.ops, "ready")
	return true
}

func (b *fakeBoard) Sample8() uint8 {
	b.ops = append(b.ops, "read8")
	return uint8(b.pots[b.selected] >> 2)
}

func (b *fakeBoard) Sample10() uint16 {
	b.ops = append(b.ops, "read10")
	return b.pots[b.selected]
}

func (b *fakeBoard) Delay(us int) {
	b.slept += us
	b.ops = append(b.ops, fmt.Sprintf("delay %d", us))
}

func (b *fakeBoard) Pulse(line, us int) {
	b.lines = append(b.lines, line)
	b.pulses = append(b.pulses, us)
	b.ops = append(b.ops, fmt.Sprintf("pulse %d", us))
}

func newTestStand(b Board) *Stand {
	return NewStand(b, sine.New(), Defaults())
}

// Every conversion must be started on the right channel, left to
// settle, and polled to completion before the result is read.
func TestStepSequence(t *testing.T) {
	b := newFakeBoard()
	b.notReady = 2
	b.pots[1] = 512
	s := newTestStand(b)
	s.Step()
	want := []string{
		"select 1", "start", "delay 6000", "busy", "busy", "ready", "read10",
		"select 2", "start", "delay 6000", "busy", "busy", "ready", "read10",
		"select 3", "start", "delay 6000", "busy", "busy", "ready", "read8",
		"pulse 1500",
	}
	if got := strings.Join(b.ops, ","); got != strings.Join(want, ",") {
		t.Errorf("step sequence %s", got)
	}
}

// Offset at midpoint and amplitude zero must give the center width
// at every phase.
func TestCenterWidth(t *testing.T) {
	b := newFakeBoard()
	b.pots[1] = 512
	b.pots[2] = 64 // phase top byte advances one per step
	b.pots[3] = 0
	s := newTestStand(b)
	for i := 0; i < 256; i++ {
		if w := s.Step(); w != 1500 {
			t.Errorf("step %d: width %d, want 1500", i, w)
		}
	}
}

// Full amplitude with the offset centred must stay inside the servo
// limits for a whole revolution.
func TestFullAmplitudeRange(t *testing.T) {
	b := newFakeBoard()
	b.pots[1] = 512
	b.pots[2] = 64
	b.pots[3] = 1023
	s := newTestStand(b)
	min, max := 9999, 0
	for i := 0; i < 256; i++ {
		w := s.Step()
		if w < 500 || w > 2500 {
			t.Errorf("step %d: width %d outside safe range", i, w)
		}
		if w < min {
			min = w
		}
		if w > max {
			max = w
		}
	}
	if min != 993 || max != 2006 {
		t.Errorf("width envelope [%d,%d], want [993,2006]", min, max)
	}
}

// One hand-computed cycle: quarter phase, full amplitude, centred
// offset.
func TestQuarterPhaseWidth(t *testing.T) {
	b := newFakeBoard()
	b.pots[1] = 512
	b.pots[2] = 0
	b.pots[3] = 1023
	s := newTestStand(b)
	s.SetPhase(64 << 8)
	if w := s.Step(); w != 1500+(127*255)>>6 {
		t.Errorf("width %d, want %d", w, 1500+(127*255)>>6)
	}
	if w := s.Step(); w != 2006 {
		t.Errorf("phase moved with speed 0: width %d", w)
	}
}

// n steps of increment k must land on k*n modulo the phase space.
func TestPhaseAccumulation(t *testing.T) {
	b := newFakeBoard()
	b.pots[1] = 512
	b.pots[2] = 700
	s := newTestStand(b)
	const n = 100
	for i := 0; i < n; i++ {
		s.Step()
	}
	inc := 700 << 2
	if got, want := s.Phase(), uint16(n*inc); got != want {
		t.Errorf("phase %d after %d steps, want %d", got, n, want)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		offset uint16
		phase  uint16
		width  int
	}{
		{1023, 64 << 8, 2500}, // 1500+1022+506 clipped
		{0, 192 << 8, 500},    // 1500-1024-507 clipped
	}
	for _, c := range tests {
		b := newFakeBoard()
		b.pots[1] = c.offset
		b.pots[3] = 1023
		s := newTestStand(b)
		s.SetPhase(c.phase)
		if w := s.Step(); w != c.width {
			t.Errorf("offset %d phase %d: width %d, want %d", c.offset, c.phase, w, c.width)
		}
	}
}

// Settings changed while running take effect on the next cycle.
func TestTune(t *testing.T) {
	b := newFakeBoard()
	b.pots[1] = 512
	s := newTestStand(b)
	if w := s.Step(); w != 1500 {
		t.Errorf("width %d, want 1500", w)
	}
	p := s.Params()
	p.Center = 1200
	s.Tune(p)
	if w := s.Step(); w != 1200 {
		t.Errorf("width %d after tune, want 1200", w)
	}
}

func TestSnapshot(t *testing.T) {
	b := newFakeBoard()
	b.pots[1] = 700
	b.pots[2] = 300
	b.pots[3] = 512
	s := newTestStand(b)
	s.Step()
	got := s.Get()
	want := Pots{Offset: 700, Speed: 300, Amp: 128, Width: 1876, Angle: 300 << 2}
	if got != want {
		t.Errorf("snapshot %+v, want %+v", got, want)
	}
}

// The test signal is exactly one pulse and one pause of half a
// millisecond each per cycle.
func TestSquareWave(t *testing.T) {
	b := newFakeBoard()
	SquareWave(b, 0, 5)
	if len(b.pulses) != 5 {
		t.Fatalf("%d pulses, want 5", len(b.pulses))
	}
	for i, w := range b.pulses {
		if w != 500 {
			t.Errorf("pulse %d: width %d, want 500", i, w)
		}
		if b.lines[i] != 0 {
			t.Errorf("pulse %d: line %d, want 0", i, b.lines[i])
		}
	}
	if b.slept != 5*500 {
		t.Errorf("pause time %d, want 2500", b.slept)
	}
}

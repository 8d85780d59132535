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

// Simulated rocking stand program

package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/wtarreau/rocking-stand/sine"
	"github.com/wtarreau/rocking-stand/stand"
)

var port = flag.Int("port", 8080, "Web server port number")
var cycles = flag.Int("cycles", 0, "Stop after this many cycles, 0 runs forever")
var kernel = flag.String("kernel", "multiply", "Sine kernel, multiply or shiftadd")
var realtime = flag.Bool("realtime", true, "Pace the loop at wall clock speed")

// conversion time of the reference converter
const convUs = 104

// SimBoard is an in-memory board. The pots are set from the
// terminal, pulses are recorded rather than emitted, and time is a
// counter advanced by whatever delays the control loop asks for, so
// a run is reproducible whether or not it is paced at wall speed.
type SimBoard struct {
	mu         sync.Mutex // guards pots, set from the command reader
	pots       [4]uint16
	selected   int
	convDone   int64 // virtual time the current conversion completes
	clock      int64 // virtual microseconds since start
	widths     int
	minW, maxW int
	lastW      int
}

func NewSimBoard() *SimBoard {
	b := new(SimBoard)
	b.minW = 1 << 30
	return b
}

// SetPot sets the simulated reading of one input channel.
func (b *SimBoard) SetPot(ch int, v int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch < 0 || ch >= len(b.pots) {
		return
	}
	if v < 0 {
		v = 0
	}
	if v > 1023 {
		v = 1023
	}
	b.pots[ch] = uint16(v)
}

func (b *SimBoard) Select(ch int) {
	b.selected = ch & 3
}

func (b *SimBoard) Start() {
	b.convDone = b.clock + convUs
}

// Ready models the conversion poll; each poll costs a microsecond
// of virtual time so a loop with no settling delay still finishes.
func (b *SimBoard) Ready() bool {
	b.clock++
	return b.clock >= b.convDone
}

func (b *SimBoard) Sample10() uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pots[b.selected]
}

func (b *SimBoard) Sample8() uint8 {
	return uint8(b.Sample10() >> 2)
}

func (b *SimBoard) Delay(us int) {
	b.clock += int64(us)
	if *realtime {
		time.Sleep(time.Duration(us) * time.Microsecond)
	}
}

func (b *SimBoard) Pulse(line, us int) {
	b.widths++
	b.lastW = us
	if us < b.minW {
		b.minW = us
	}
	if us > b.maxW {
		b.maxW = us
	}
	b.Delay(us)
}

// window returns and resets the pulse stats since the last call.
func (b *SimBoard) window() (n, min, max, last int) {
	n, min, max, last = b.widths, b.minW, b.maxW, b.lastW
	b.widths = 0
	b.minW = 1 << 30
	b.maxW = 0
	return
}

func main() {
	flag.Parse()
	var tbl *sine.Sine
	switch *kernel {
	case "multiply":
		tbl = sine.New()
	case "shiftadd":
		tbl = sine.NewShiftAdd()
	default:
		log.Fatalf("%s: unknown kernel", *kernel)
	}
	p := stand.Defaults()
	b := NewSimBoard()
	b.SetPot(p.OffsetChan, 512)
	b.SetPot(p.SpeedChan, 200)
	b.SetPot(p.AmpChan, 512)
	st := stand.NewStand(b, tbl, p)
	go stand.StandServer(*port, st)
	go commands(b, p)
	start := time.Now()
	for i := 0; *cycles <= 0 || i < *cycles; i++ {
		st.Step()
		if (i+1)%250 == 0 {
			report(b, st, start)
		}
	}
	report(b, st, start)
}

func report(b *SimBoard, st *stand.Stand, start time.Time) {
	n, min, max, last := b.window()
	if n == 0 {
		return
	}
	pots := st.Get()
	fmt.Printf("t=%.1fs (wall %.1fs) offset %d speed %d amp %d width %d..%d us (last %d) phase %d\n",
		float64(b.clock)/1e6, time.Since(start).Seconds(),
		pots.Offset, pots.Speed, pots.Amp, min, max, last, pots.Angle)
}

// commands reads pot settings from the terminal.
func commands(b *SimBoard, p stand.Params) {
	reader := bufio.NewReader(os.Stdin)
	for {
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		text = strings.TrimSuffix(text, "\n")
		var v int
		switch {
		case text == "help":
			fmt.Println("  help - print help")
			fmt.Println("  o NNN - set offset pot (0-1023)")
			fmt.Println("  s NNN - set speed pot (0-1023)")
			fmt.Println("  a NNN - set amplitude pot (0-1023)")
			fmt.Println("  q - quit")
		case text == "q":
			os.Exit(0)
		case scan(text, "o %d", &v):
			b.SetPot(p.OffsetChan, v)
		case scan(text, "s %d", &v):
			b.SetPot(p.SpeedChan, v)
		case scan(text, "a %d", &v):
			b.SetPot(p.AmpChan, v)
		case text == "":
		default:
			fmt.Printf("Unrecognised input\n")
		}
	}
}

func scan(text, format string, v *int) bool {
	n, err := fmt.Sscanf(text, format, v)
	return err == nil && n == 1
}

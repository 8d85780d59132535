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

// Program to demonstrate a servo sweep on a hardware PWM

package main

import (
	"flag"
	"log"
	"time"

	"github.com/wtarreau/rocking-stand/io"
	"github.com/wtarreau/rocking-stand/sine"
)

var chip = flag.Int("chip", 0, "PWM chip number")
var unit = flag.Int("unit", 0, "PWM channel on the chip")
var sweeps = flag.Int("sweeps", 10, "Number of full sweeps")

func main() {
	flag.Parse()
	pwm, err := io.NewHwPWM(*chip, *unit)
	if err != nil {
		log.Fatalf("PWM %d,%d: %v", *chip, *unit, err)
	}
	defer pwm.Close()
	tbl := sine.New()
	for i := 0; i < *sweeps; i++ {
		for a := 0; a < 256; a++ {
			set(pwm, tbl, uint8(a))
		}
	}
}

func set(pwm *io.HwPwm, tbl *sine.Sine, angle uint8) {
	w := 1500 + int(tbl.Sin(angle))*500/127
	if err := pwm.Pulse(w); err != nil {
		log.Fatalf("Pulse: width %d: %v", w, err)
	}
	time.Sleep(time.Duration(io.FrameUs-w) * time.Microsecond)
}

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
	"time"
)

type swMsg struct {
	width int
	stop  chan bool
}

// SwPwm refreshes a servo from a plain GPIO, a goroutine emitting
// one pulse per 20 ms frame. Timing rides on the scheduler, so the
// width jitters by the sleep granularity; good enough for bench work
// on hosts without a PWM device, not for a finely trimmed stand.
type SwPwm struct {
	pin Setter
	c   chan swMsg
}

// NewSwPwm creates a software timed servo output on the pin.
func NewSwPwm(pin Setter) *SwPwm {
	p := new(SwPwm)
	p.pin = pin
	p.c = make(chan swMsg, 1)
	go p.handler()
	return p
}

// Close stops the refresh and leaves the pin low.
func (p *SwPwm) Close() {
	sc := make(chan bool)
	p.c <- swMsg{0, sc}
	<-sc
	close(sc)
	close(p.c)
}

// Pulse sets the width emitted each frame. The change takes effect
// at the end of the current frame.
func (p *SwPwm) Pulse(us int) error {
	if us < 0 || us >= FrameUs {
		return fmt.Errorf("%d: pulse longer than frame", us)
	}
	p.c <- swMsg{us, nil}
	time.Sleep(time.Duration(us) * time.Microsecond)
	return nil
}

// goroutine handler
// Emits one pulse per frame and picks up new widths between frames.
func (p *SwPwm) handler() {
	var width int
	p.pin.Set(0)
	for {
		if width > 0 {
			p.pin.Set(1)
			time.Sleep(time.Duration(width) * time.Microsecond)
			p.pin.Set(0)
		}
		time.Sleep(time.Duration(FrameUs-width) * time.Microsecond)
		select {
		case m := <-p.c:
			if m.stop != nil {
				m.stop <- true
				return
			}
			width = m.width
		default:
		}
	}
}

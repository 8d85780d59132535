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

	"github.com/stianeikeland/go-rpio/v4"
)

// Rpio emits servo pulses from a Raspberry Pi hardware PWM pin
// through /dev/gpiomem, with no sysfs or device tree setup. Only the
// PWM capable BCM pins (12, 13, 18, 19) can be used.
type Rpio struct {
	pin rpio.Pin
}

// NewRpio opens the BCM pin as a hardware PWM output. The PWM clock
// is set to 1 MHz so one duty step is exactly one microsecond of a
// 20 ms frame.
func NewRpio(bcm int) (*Rpio, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("rpio: %v", err)
	}
	r := new(Rpio)
	r.pin = rpio.Pin(bcm)
	r.pin.Mode(rpio.Pwm)
	r.pin.Freq(50 * FrameUs)
	r.pin.DutyCycle(0, FrameUs)
	return r, nil
}

// Pulse sets the repeating pulse width and waits out one pulse time.
func (r *Rpio) Pulse(us int) error {
	if us < 0 || us >= FrameUs {
		return fmt.Errorf("%d: pulse longer than frame", us)
	}
	r.pin.DutyCycle(uint32(us), FrameUs)
	time.Sleep(time.Duration(us) * time.Microsecond)
	return nil
}

// Close idles the output and unmaps the GPIO memory.
func (r *Rpio) Close() {
	r.pin.DutyCycle(0, FrameUs)
	rpio.Close()
}

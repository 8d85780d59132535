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

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/pca9685"
)

// Pca9685 emits servo pulses from one channel of a PCA9685 16
// channel PWM controller on an I2C bus, for hosts with no usable
// PWM pin of their own. The controller runs a 50 Hz frame with 12
// bit resolution, so widths are quantised to steps of about 4.9 us.
type Pca9685 struct {
	bus     i2c.BusCloser
	dev     *pca9685.Dev
	channel int
	width   int
}

// NewPca9685 opens the controller at addr on the bus and sets up
// the servo frame. The same device can carry more than one stand,
// each on its own channel with its own Pca9685.
func NewPca9685(bus i2c.BusCloser, addr uint16, channel int) (*Pca9685, error) {
	dev, err := pca9685.NewI2C(bus, addr)
	if err != nil {
		return nil, fmt.Errorf("pca9685: %v", err)
	}
	if err := dev.SetPwmFreq(50 * physic.Hertz); err != nil {
		return nil, fmt.Errorf("pca9685: %v", err)
	}
	p := new(Pca9685)
	p.bus = bus
	p.dev = dev
	p.channel = channel
	p.width = -1
	return p, nil
}

// Pulse sets the repeating pulse width and waits out one pulse time.
func (p *Pca9685) Pulse(us int) error {
	if us < 0 || us >= FrameUs {
		return fmt.Errorf("%d: pulse longer than frame", us)
	}
	if us != p.width {
		if err := p.dev.SetPwm(p.channel, 0, servoDuty(us)); err != nil {
			return err
		}
		p.width = us
	}
	time.Sleep(time.Duration(us) * time.Microsecond)
	return nil
}

// Close idles the channel and releases the bus.
func (p *Pca9685) Close() {
	p.dev.SetPwm(p.channel, 0, 0)
	p.bus.Close()
}

// servoDuty converts a pulse width to the controller's 12 bit
// off-time count within the 20 ms frame.
func servoDuty(us int) gpio.Duty {
	return gpio.Duty(us * 4096 / FrameUs)
}

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
	"os"
	"os/user"
	"time"

	"golang.org/x/sys/unix"
)

// FrameUs is the servo frame time. Every emitter repeats or spaces
// pulses on a 20 ms frame, the 50 Hz refresh that analogue servos
// expect.
const FrameUs = 20000

const verifyTimeout = 2 * time.Second

// Verify enables waiting for exported sysfs files to become
// writable. This is necessary if the process is not running as root;
// systemd and udev change the group permissions on the exported
// files, but take some time to do it, so accessing the files too
// early gets a permission error.
var Verify = false

func init() {
	// If the user is not root, enable Verify mode.
	u, err := user.Current()
	if err == nil && u.Uid != "0" {
		Verify = true
	}
}

// HwPwm emits servo pulses from a kernel PWM device. The frame time
// is programmed once at setup, after which only the duty cycle file
// is rewritten, and only when the width actually changes.
type HwPwm struct {
	chip  int
	unit  int
	base  string
	dFile *os.File
	duty  int64
}

// NewHwPWM opens a channel of a sysfs PWM chip as a servo output.
// The channel is exported if needed, set to a 20 ms frame with the
// output initially idle, and enabled.
func NewHwPWM(chip, unit int) (*HwPwm, error) {
	p := new(HwPwm)
	p.chip = chip
	p.unit = unit
	p.base = fmt.Sprintf("/sys/class/pwm/pwmchip%d/pwm%d", chip, unit)
	p.duty = -1

	pName := p.base + "/period"
	err := export(pName, fmt.Sprintf("/sys/class/pwm/pwmchip%d/export", chip), unit)
	if err != nil {
		return nil, err
	}
	dName := p.base + "/duty_cycle"
	if err = verifyFile(dName); err != nil {
		p.unexport()
		return nil, err
	}
	p.dFile, err = os.OpenFile(dName, os.O_RDWR, 0600)
	if err != nil {
		p.unexport()
		return nil, err
	}
	// The duty cycle must never exceed the period, so clear it
	// before programming the frame time.
	if _, err = p.dFile.WriteAt([]byte("0"), 0); err != nil {
		p.dFile.Close()
		p.unexport()
		return nil, err
	}
	p.duty = 0
	if err = writeFile(pName, fmt.Sprintf("%d", int64(FrameUs)*1000)); err != nil {
		p.dFile.Close()
		p.unexport()
		return nil, err
	}
	if err = writeFile(p.base+"/enable", "1"); err != nil {
		p.dFile.Close()
		p.unexport()
		return nil, err
	}
	return p, nil
}

// Close idles the output and releases the PWM channel.
func (p *HwPwm) Close() {
	writeFile(p.base+"/enable", "0")
	p.dFile.Close()
	p.unexport()
}

// Pulse sets the repeating pulse width and waits out one pulse time.
func (p *HwPwm) Pulse(us int) error {
	if us < 0 || us >= FrameUs {
		return fmt.Errorf("%d: pulse longer than frame", us)
	}
	d := int64(us) * 1000
	if d != p.duty {
		_, err := p.dFile.WriteAt([]byte(fmt.Sprintf("%d", d)), 0)
		if err != nil {
			return err
		}
		p.duty = d
	}
	time.Sleep(time.Duration(us) * time.Microsecond)
	return nil
}

func (p *HwPwm) unexport() {
	writeFile(fmt.Sprintf("/sys/class/pwm/pwmchip%d/unexport", p.chip), fmt.Sprintf("%d", p.unit))
}

// export will check for the existence of a file, and if it is
// not writable, will write a unit number to an export file, and then
// optionally wait for the file to appear and become writable.
func export(f, expfile string, g int) error {
	// Check if directory and files already exist.
	err := unix.Access(f, unix.W_OK|unix.R_OK)
	if err == nil {
		return nil
	}
	err = writeFile(expfile, fmt.Sprintf("%d", g))
	if err == nil && Verify {
		return verifyFile(f)
	}
	return err
}

// Write a string to a file.
func writeFile(fname, s string) error {
	f, err := os.OpenFile(fname, os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write([]byte(s))
	return err
}

// Wait for file to become writable.
func verifyFile(f string) error {
	var tout time.Duration
	sl := time.Millisecond
	for tout = 0; tout < verifyTimeout; tout += sl {
		err := unix.Access(f, unix.W_OK)
		if err == nil {
			return nil
		}
		time.Sleep(sl)
	}
	return fmt.Errorf("%s: not writable", f)
}

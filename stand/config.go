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

//go:build !tinygo

package stand

import (
	"fmt"

	"github.com/aamcrae/config"
	gpio "github.com/aamcrae/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/wtarreau/rocking-stand/io"
	"github.com/wtarreau/rocking-stand/sine"
)

// Configuration data for a stand, read from a configuration file.
type StandConfig struct {
	Params Params
	Kernel string
}

// Config reads and validates the stand tuning from a config file.
// Every key is optional and defaults to the reference stand values.
// Sample config:
//  [stand]
//  line=0              # output line carrying the servo pulse
//  center=1500         # pulse width at mid travel, microseconds
//  range=500,2500      # servo safe limits, microseconds
//  settle=6000         # conversion settling delay, microseconds
//  channels=1,2,3      # input channels: offset, speed, amplitude
//  gains=1,2,6         # offset shift, speed shift, amplitude shift
//  kernel=multiply     # sine kernel: multiply or shiftadd
func Config(conf *config.Config) (*StandConfig, error) {
	c := new(StandConfig)
	c.Params = Defaults()
	c.Kernel = "multiply"
	s := conf.GetSection("stand")
	if s == nil {
		return c, nil
	}
	p := &c.Params
	if arg, err := s.GetArg("line"); err == nil {
		n, err := fmt.Sscanf(arg, "%d", &p.Line)
		if err != nil {
			return nil, fmt.Errorf("line: %v", err)
		}
		if n != 1 {
			return nil, fmt.Errorf("line: argument count")
		}
	}
	if arg, err := s.GetArg("center"); err == nil {
		n, err := fmt.Sscanf(arg, "%d", &p.Center)
		if err != nil {
			return nil, fmt.Errorf("center: %v", err)
		}
		if n != 1 {
			return nil, fmt.Errorf("center: argument count")
		}
	}
	if arg, err := s.GetArg("range"); err == nil {
		n, err := fmt.Sscanf(arg, "%d,%d", &p.Min, &p.Max)
		if err != nil {
			return nil, fmt.Errorf("range: %v", err)
		}
		if n != 2 {
			return nil, fmt.Errorf("range: argument count")
		}
	}
	if arg, err := s.GetArg("settle"); err == nil {
		n, err := fmt.Sscanf(arg, "%d", &p.SettleUs)
		if err != nil {
			return nil, fmt.Errorf("settle: %v", err)
		}
		if n != 1 {
			return nil, fmt.Errorf("settle: argument count")
		}
	}
	if arg, err := s.GetArg("channels"); err == nil {
		n, err := fmt.Sscanf(arg, "%d,%d,%d", &p.OffsetChan, &p.SpeedChan, &p.AmpChan)
		if err != nil {
			return nil, fmt.Errorf("channels: %v", err)
		}
		if n != 3 {
			return nil, fmt.Errorf("channels: argument count")
		}
	}
	if arg, err := s.GetArg("gains"); err == nil {
		n, err := fmt.Sscanf(arg, "%d,%d,%d", &p.OffsetGain, &p.SpeedGain, &p.AmpDivisor)
		if err != nil {
			return nil, fmt.Errorf("gains: %v", err)
		}
		if n != 3 {
			return nil, fmt.Errorf("gains: argument count")
		}
	}
	if arg, err := s.GetArg("kernel"); err == nil {
		if arg != "multiply" && arg != "shiftadd" {
			return nil, fmt.Errorf("%s: unknown kernel", arg)
		}
		c.Kernel = arg
	}
	if p.Min > p.Max || p.Center < p.Min || p.Center > p.Max {
		return nil, fmt.Errorf("center %d outside range %d,%d", p.Center, p.Min, p.Max)
	}
	if p.Min < 0 || p.Max >= io.FrameUs {
		return nil, fmt.Errorf("range %d,%d: pulse longer than frame", p.Min, p.Max)
	}
	if p.SettleUs < 0 {
		return nil, fmt.Errorf("settle: negative delay")
	}
	return c, nil
}

// Table returns the sine table selected by the config.
func (c *StandConfig) Table() *sine.Sine {
	if c.Kernel == "shiftadd" {
		return sine.NewShiftAdd()
	}
	return sine.New()
}

// NewBoard builds the hardware interface from the input and output
// sections of the config file. One backend key must be present in
// each section.
// Sample config:
//  [input]
//  ads1x15=3300        # ADS1115 converter, full scale in millivolts
//  #fixed=512,200,1023 # no converter, preset offset, speed, amplitude
//  #bus=1              # I2C bus, first available if not set
//  [output]
//  hwpwm=0,0           # kernel PWM chip and channel
//  #rpio=18            # Pi hardware PWM on a BCM pin
//  #pca9685=64,0       # PCA9685 at I2C address 64, channel 0
//  #gpio=18            # plain GPIO, one software timed pulse per cycle
//  #swpwm=18           # plain GPIO, software timed 50 Hz refresh
func NewBoard(conf *config.Config, sc *StandConfig) (*io.Board, error) {
	in, err := inputBackend(conf, sc)
	if err != nil {
		return nil, err
	}
	e, err := outputBackend(conf)
	if err != nil {
		in.Close()
		return nil, err
	}
	b := io.NewBoard(in)
	b.AddLine(sc.Params.Line, e)
	return b, nil
}

func inputBackend(conf *config.Config, sc *StandConfig) (io.Analog, error) {
	s := conf.GetSection("input")
	if s == nil {
		return nil, fmt.Errorf("no input section")
	}
	if arg, err := s.GetArg("ads1x15"); err == nil {
		var mv int
		n, err := fmt.Sscanf(arg, "%d", &mv)
		if err != nil {
			return nil, fmt.Errorf("ads1x15: %v", err)
		}
		if n != 1 {
			return nil, fmt.Errorf("ads1x15: argument count")
		}
		bus, err := openBus(s)
		if err != nil {
			return nil, err
		}
		in, err := io.NewAds1x15(bus, mv)
		if err != nil {
			bus.Close()
			return nil, err
		}
		return in, nil
	}
	if arg, err := s.GetArg("fixed"); err == nil {
		var o, sp, a int
		n, err := fmt.Sscanf(arg, "%d,%d,%d", &o, &sp, &a)
		if err != nil {
			return nil, fmt.Errorf("fixed: %v", err)
		}
		if n != 3 {
			return nil, fmt.Errorf("fixed: argument count")
		}
		return io.NewFixed(map[int]uint16{
			sc.Params.OffsetChan: uint16(o),
			sc.Params.SpeedChan:  uint16(sp),
			sc.Params.AmpChan:    uint16(a),
		}), nil
	}
	return nil, fmt.Errorf("input: no backend configured")
}

func outputBackend(conf *config.Config) (io.Emitter, error) {
	s := conf.GetSection("output")
	if s == nil {
		return nil, fmt.Errorf("no output section")
	}
	if arg, err := s.GetArg("hwpwm"); err == nil {
		var chip, unit int
		n, err := fmt.Sscanf(arg, "%d,%d", &chip, &unit)
		if err != nil {
			return nil, fmt.Errorf("hwpwm: %v", err)
		}
		if n != 2 {
			return nil, fmt.Errorf("hwpwm: argument count")
		}
		return io.NewHwPWM(chip, unit)
	}
	if arg, err := s.GetArg("rpio"); err == nil {
		var bcm int
		n, err := fmt.Sscanf(arg, "%d", &bcm)
		if err != nil {
			return nil, fmt.Errorf("rpio: %v", err)
		}
		if n != 1 {
			return nil, fmt.Errorf("rpio: argument count")
		}
		return io.NewRpio(bcm)
	}
	if arg, err := s.GetArg("pca9685"); err == nil {
		var addr, channel int
		n, err := fmt.Sscanf(arg, "%d,%d", &addr, &channel)
		if err != nil {
			return nil, fmt.Errorf("pca9685: %v", err)
		}
		if n != 2 {
			return nil, fmt.Errorf("pca9685: argument count")
		}
		bus, err := openBus(s)
		if err != nil {
			return nil, err
		}
		e, err := io.NewPca9685(bus, uint16(addr), channel)
		if err != nil {
			bus.Close()
			return nil, err
		}
		return e, nil
	}
	if arg, err := s.GetArg("gpio"); err == nil {
		pin, err := outputPin(arg, "gpio")
		if err != nil {
			return nil, err
		}
		return io.NewLine(pin), nil
	}
	if arg, err := s.GetArg("swpwm"); err == nil {
		pin, err := outputPin(arg, "swpwm")
		if err != nil {
			return nil, err
		}
		return io.NewSwPwm(pin), nil
	}
	return nil, fmt.Errorf("output: no backend configured")
}

// openBus initialises the host drivers and opens the I2C bus named
// by the section's bus key, or the first available bus.
func openBus(s *config.Section) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph: %v", err)
	}
	name := ""
	if arg, err := s.GetArg("bus"); err == nil {
		name = arg
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("i2c %q: %v", name, err)
	}
	return bus, nil
}

func outputPin(arg, key string) (*gpio.Gpio, error) {
	var bcm int
	n, err := fmt.Sscanf(arg, "%d", &bcm)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", key, err)
	}
	if n != 1 {
		return nil, fmt.Errorf("%s: argument count", key)
	}
	pin, err := gpio.OutputPin(bcm)
	if err != nil {
		return nil, fmt.Errorf("pin %d: %v", bcm, err)
	}
	return pin, nil
}

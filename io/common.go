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

// Package io provides the hardware backends of the rocking stand:
// analogue sampling frontends on one side, servo pulse outputs on
// the other, glued together into the board the control loop drives.
package io

import (
	"log"
	"time"
)

// Setter is an interface for setting an output value on a GPIO.
type Setter interface {
	Set(int) error
}

// Analog is a multi channel sampling frontend. A conversion is
// started on the selected channel and polled for completion before
// either read is valid. Implementations are not safe for concurrent
// use; the control loop is the single caller.
type Analog interface {
	Select(ch int)
	Start()
	Ready() bool
	Sample8() uint8
	Sample10() uint16
	Close()
}

// Emitter produces servo control pulses on a single line. Pulse
// returns once the pulse time has passed so the caller's cycle
// timing matches a directly driven line. Hardware backed emitters
// keep repeating the last width until it is changed.
type Emitter interface {
	Pulse(us int) error
	Close()
}

// Board combines a sampling frontend and the pulse outputs into the
// one device the control loop runs against.
type Board struct {
	in    Analog
	lines map[int]Emitter
}

// NewBoard creates a board around the sampling frontend.
func NewBoard(in Analog) *Board {
	b := new(Board)
	b.in = in
	b.lines = make(map[int]Emitter)
	return b
}

// AddLine attaches a pulse output as the numbered line.
func (b *Board) AddLine(line int, e Emitter) {
	b.lines[line] = e
}

func (b *Board) Select(ch int) {
	b.in.Select(ch)
}

func (b *Board) Start() {
	b.in.Start()
}

func (b *Board) Ready() bool {
	return b.in.Ready()
}

func (b *Board) Sample8() uint8 {
	return b.in.Sample8()
}

func (b *Board) Sample10() uint16 {
	return b.in.Sample10()
}

// Delay pauses for the given number of microseconds.
func (b *Board) Delay(us int) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// Pulse emits one pulse on the numbered line. Pulses for lines that
// were never attached are dropped.
func (b *Board) Pulse(line, us int) {
	e, ok := b.lines[line]
	if !ok {
		return
	}
	if err := e.Pulse(us); err != nil {
		log.Printf("line %d: pulse %d us: %v", line, us, err)
	}
}

// Close shuts down the frontend and every output line.
func (b *Board) Close() {
	b.in.Close()
	for _, e := range b.lines {
		e.Close()
	}
}

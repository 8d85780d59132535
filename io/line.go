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

// Line drives a GPIO line directly, one pulse per call with the
// width timed in software. Nothing refreshes the servo between
// calls, so the caller supplies the frame rate; a control loop
// cycling at 50 Hz does exactly that.
type Line struct {
	out Setter
}

// NewLine creates a directly driven pulse output on the pin.
func NewLine(out Setter) *Line {
	l := new(Line)
	l.out = out
	return l
}

// Pulse drives the line high for the given width.
func (l *Line) Pulse(us int) error {
	if us < 0 || us >= FrameUs {
		return fmt.Errorf("%d: pulse longer than frame", us)
	}
	if err := l.out.Set(1); err != nil {
		return err
	}
	time.Sleep(time.Duration(us) * time.Microsecond)
	return l.out.Set(0)
}

// Close leaves the line low.
func (l *Line) Close() {
	l.out.Set(0)
}

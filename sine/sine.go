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

// Package sine approximates a sine wave in 8 bit fixed point.
// The wave is built from two parabolic humps, since sin(x) tracks
// x^2 and 1-x^2 on each quarter period to within about 6%. Only
// integer adds, shifts and at most one widening 8x8 multiply are
// used, so the same code runs on hosts with no floating point and,
// through the shift-add kernel, on hosts with no multiplier at all.

package sine

// Square maps a signed 8 bit value onto one parabolic hump.
// The input is recentred by adding 128 (wrapping), squared as a
// signed quantity through a single widening 8x8 to 16 bit multiply,
// scaled back down by 7 bits and complemented. The result is 128 at
// x = 0, rising to 255 at both ends of the input range. The single
// saturating value (the square of -128 scales to exactly 128) is
// folded down one step so the result always fits the same 7 bit span.
func Square(x int8) uint8 {
	u := uint8(x) + 128
	s := int16(int8(u))
	v := uint8((s * s) >> 7)
	v -= v >> 7
	return ^v
}

// SquareShiftAdd computes the identical result to Square for every
// input, using only shifts, adds and compares. The widening multiply
// is replaced by 8 rounds of a shift-add multiplier that keeps only
// the high byte of the product, with the carry out of each add folded
// back in at the top of the next round. Intended for hosts where a
// hardware multiply is missing or slow.
func SquareShiftAdd(x int8) uint8 {
	m := uint8(x) + 128
	if m&0x80 != 0 {
		m = -m // magnitude of the recentred value; 128 stays put
	}
	var out, cf uint8
	mult := m
	for count := 8; count > 0; count-- {
		out = cf<<7 | out>>1
		cf = 0
		if mult&1 != 0 {
			out += m
			if out < m {
				cf = 1
			}
		}
		mult >>= 1
	}
	out -= out >> 7
	return ^out
}

// Sine evaluates the wave through a selectable squaring kernel.
type Sine struct {
	square func(int8) uint8
}

// New returns a Sine using the widening-multiply kernel.
func New() *Sine {
	return &Sine{square: Square}
}

// NewShiftAdd returns a Sine using the multiply-free kernel.
func NewShiftAdd() *Sine {
	return &Sine{square: SquareShiftAdd}
}

// Sin returns sin(angle*pi/128)*127, centred on zero.
// The kernel covers half a period; doubling the angle folds the two
// humps onto it, and the top bit of the angle selects the sign of
// the second half. Exact zero crossings at 0 and 128, peaks of 127
// at 64 and -127 at 192.
func (s *Sine) Sin(angle uint8) int8 {
	v := int8(s.square(int8(angle<<1)) + 128)
	if angle&0x80 != 0 {
		return -v
	}
	return v
}

// Unsigned returns the same wave centred on 128 (range 1 to 255),
// for outputs that need an always positive magnitude.
// Unsigned(a) == uint8(Sin(a)) + 128 for every angle.
func (s *Sine) Unsigned(angle uint8) uint8 {
	v := s.square(int8(angle << 1))
	if angle&0x80 != 0 {
		return -v
	}
	return v
}

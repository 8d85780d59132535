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

package sine

import (
	"math"
	"testing"
)

// The shift-add kernel must match the multiply kernel exactly on
// every input, not approximately.
func TestKernelEquivalence(t *testing.T) {
	for i := 0; i < 256; i++ {
		x := int8(i)
		m := Square(x)
		b := SquareShiftAdd(x)
		if m != b {
			t.Errorf("input %d: multiply kernel %d, shift-add kernel %d", x, m, b)
		}
	}
}

func TestLandmarks(t *testing.T) {
	landmarks := []struct {
		angle    uint8
		signed   int8
		unsigned uint8
	}{
		{0, 0, 128},
		{64, 127, 255},
		{128, 0, 128},
		{192, -127, 1},
	}
	for _, s := range []*Sine{New(), NewShiftAdd()} {
		for _, l := range landmarks {
			if v := s.Sin(l.angle); v != l.signed {
				t.Errorf("Sin(%d) = %d, want %d", l.angle, v, l.signed)
			}
			if v := s.Unsigned(l.angle); v != l.unsigned {
				t.Errorf("Unsigned(%d) = %d, want %d", l.angle, v, l.unsigned)
			}
		}
	}
}

// The parabolic approximation stays within 8 counts of a true sine
// scaled to 127 (about 6%) at every one of the 256 angles.
func TestAccuracy(t *testing.T) {
	s := New()
	worst := 0.0
	for a := 0; a < 256; a++ {
		got := float64(s.Sin(uint8(a)))
		want := 127 * math.Sin(float64(a)*math.Pi/128)
		err := math.Abs(got - want)
		if err > worst {
			worst = err
		}
		if err > 8 {
			t.Errorf("Sin(%d) = %.0f, true sine %.2f, error %.2f", a, got, want, err)
		}
	}
	t.Logf("worst error %.2f counts", worst)
}

func TestUnsignedMatchesSin(t *testing.T) {
	s := New()
	for a := 0; a < 256; a++ {
		angle := uint8(a)
		if u, v := s.Unsigned(angle), uint8(s.Sin(angle))+128; u != v {
			t.Errorf("Unsigned(%d) = %d, Sin+128 = %d", a, u, v)
		}
	}
}

// The second half of the wave is the exact negation of the first.
func TestHalfWaveSymmetry(t *testing.T) {
	s := NewShiftAdd()
	for a := 0; a < 128; a++ {
		angle := uint8(a)
		if u, v := s.Unsigned(angle+128), -s.Unsigned(angle); u != v {
			t.Errorf("Unsigned(%d) = %d, want %d", a+128, u, v)
		}
		if u, v := s.Sin(angle+128), s.Sin(angle); u != -v {
			t.Errorf("Sin(%d) = %d, Sin(%d) = %d, not negated", a+128, u, a, v)
		}
	}
}

// Each quarter period mirrors about its peak.
func TestQuarterSymmetry(t *testing.T) {
	s := New()
	for a := uint8(0); a <= 64; a++ {
		if l, r := s.Sin(64-a), s.Sin(64+a); l != r {
			t.Errorf("Sin(%d) = %d, Sin(%d) = %d", 64-a, l, 64+a, r)
		}
	}
}

func TestSquareRange(t *testing.T) {
	for i := 0; i < 256; i++ {
		v := Square(int8(i))
		if v < 128 {
			t.Errorf("Square(%d) = %d, below midline", int8(i), v)
		}
	}
	if v := Square(0); v != 128 {
		t.Errorf("Square(0) = %d, want 128", v)
	}
	if v := Square(-128); v != 255 {
		t.Errorf("Square(-128) = %d, want 255", v)
	}
}

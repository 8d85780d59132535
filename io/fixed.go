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

// Fixed is a sampling frontend that returns preset values, for
// stands run at one fixed motion with no physical controls fitted.
// Values are the raw 10 bit readings a real pot would give; a
// channel read at 8 bits sees the top 8 of them.
type Fixed struct {
	values   map[int]uint16
	selected int
}

// NewFixed creates a frontend from a channel to value map.
func NewFixed(values map[int]uint16) *Fixed {
	f := new(Fixed)
	f.values = values
	return f
}

func (f *Fixed) Select(ch int) {
	f.selected = ch
}

func (f *Fixed) Start() {}

func (f *Fixed) Ready() bool {
	return true
}

func (f *Fixed) Sample10() uint16 {
	return f.values[f.selected]
}

func (f *Fixed) Sample8() uint8 {
	return uint8(f.values[f.selected] >> 2)
}

func (f *Fixed) Close() {}

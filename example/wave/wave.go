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

// Program to print the sine approximation as a text graph

package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/wtarreau/rocking-stand/sine"
)

var kernel = flag.String("kernel", "multiply", "Sine kernel (multiply or shiftadd)")
var step = flag.Int("step", 4, "Angle increment between rows")

func main() {
	flag.Parse()
	var tbl *sine.Sine
	switch *kernel {
	case "multiply":
		tbl = sine.New()
	case "shiftadd":
		tbl = sine.NewShiftAdd()
	default:
		log.Fatalf("%s: unknown kernel", *kernel)
	}
	if *step < 1 {
		log.Fatalf("step %d: must be at least 1", *step)
	}
	for a := 0; a < 256; a += *step {
		u := tbl.Unsigned(uint8(a))
		fmt.Printf("%3d %4d %s\n", a, tbl.Sin(uint8(a)), strings.Repeat("#", int(u)/4))
	}
}

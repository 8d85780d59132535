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

// Telemetry monitor for a stand running the Pico firmware

package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"

	"go.bug.st/serial"
)

var port = flag.String("port", "/dev/ttyACM0", "Serial port of the stand")
var baud = flag.Int("baud", 115200, "Baud rate")

func main() {
	flag.Parse()
	mode := &serial.Mode{
		BaudRate: *baud,
	}
	p, err := serial.Open(*port, mode)
	if err != nil {
		log.Fatalf("%s: %v", *port, err)
	}
	defer p.Close()
	scanner := bufio.NewScanner(p)
	minW := 1 << 30
	maxW := 0
	for scanner.Scan() {
		text := scanner.Text()
		var o, s, a, w int
		n, err := fmt.Sscanf(text, "o= %d s= %d a= %d pw= %d", &o, &s, &a, &w)
		if err != nil || n != 4 {
			// Anything that is not telemetry, such as a panic, is
			// worth seeing as is.
			fmt.Println(text)
			continue
		}
		if w < minW {
			minW = w
		}
		if w > maxW {
			maxW = w
		}
		fmt.Printf("offset %4d speed %4d amp %3d width %4d us (seen %d..%d)\n",
			o, s, a, w, minW, maxW)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("%s: %v", *port, err)
	}
}

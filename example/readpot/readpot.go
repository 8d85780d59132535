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

// Program to display the pot readings from an ADS1115

package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/wtarreau/rocking-stand/io"
)

var bus = flag.String("bus", "", "I2C bus name (empty for the first bus)")
var scale = flag.Int("scale", 3300, "Full scale voltage in millivolts")

func main() {
	flag.Parse()
	if _, err := host.Init(); err != nil {
		log.Fatalf("host init: %v", err)
	}
	b, err := i2creg.Open(*bus)
	if err != nil {
		log.Fatalf("I2C %s: %v", *bus, err)
	}
	adc, err := io.NewAds1x15(b, *scale)
	if err != nil {
		log.Fatalf("ADS1115: %v", err)
	}
	defer adc.Close()
	for {
		var line strings.Builder
		for ch := 0; ch < 4; ch++ {
			adc.Select(ch)
			adc.Start()
			for !adc.Ready() {
				time.Sleep(time.Millisecond)
			}
			fmt.Fprintf(&line, " ch%d=%4d", ch, adc.Sample10())
		}
		log.Printf("%s", line.String())
		time.Sleep(500 * time.Millisecond)
	}
}

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

// Trimming utility to find a servo's center and travel limits

package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aamcrae/config"

	"github.com/wtarreau/rocking-stand/io"
	"github.com/wtarreau/rocking-stand/stand"
)

var configFile = flag.String("config", "", "Configuration file")

func main() {
	flag.Parse()
	conf, err := config.ParseFile(*configFile)
	if err != nil {
		log.Fatalf("%s: %v", *configFile, err)
	}
	sc, err := stand.Config(conf)
	if err != nil {
		log.Fatalf("%s: %v", *configFile, err)
	}
	b, err := stand.NewBoard(conf, sc)
	if err != nil {
		log.Fatalf("board: %v", err)
	}
	defer b.Close()
	p := sc.Params
	width := p.Center
	center := p.Center
	lo := p.Min
	hi := p.Max
	reader := bufio.NewReader(os.Stdin)
	hold(b, p.Line, width)
	for {
		fmt.Printf("Width %d us (center %d, range %d,%d)\n", width, center, lo, hi)
		fmt.Print("Enter width or command ('help' for help) ")
		text, _ := reader.ReadString('\n')
		text = strings.TrimSuffix(text, "\n")
		switch text {
		case "help":
			fmt.Println("  help - print help")
			fmt.Println("  NNN - move to pulse width NNN microseconds")
			fmt.Println("  c - mark current width as the center")
			fmt.Println("  n - mark current width as the low limit")
			fmt.Println("  x - mark current width as the high limit")
			fmt.Println("  q - print config values and quit")
		case "q":
			fmt.Printf("[stand]\ncenter=%d\nrange=%d,%d\n", center, lo, hi)
			return
		case "c":
			center = width
		case "n":
			lo = width
		case "x":
			hi = width
		default:
			var w int
			n, err := fmt.Sscanf(text, "%d", &w)
			if err != nil || n != 1 {
				fmt.Printf("Unrecognised input\n")
			} else if w <= 0 || w >= io.FrameUs {
				fmt.Printf("Width out of range\n")
			} else {
				width = w
			}
		}
		hold(b, p.Line, width)
	}
}

// hold refreshes the pulse long enough for the servo to reach
// and settle on the requested width.
func hold(b *io.Board, line, width int) {
	for i := 0; i < 25; i++ {
		b.Pulse(line, width)
		b.Delay(io.FrameUs - width)
	}
}

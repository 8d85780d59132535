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

// Rocking stand program

package main

import (
	"flag"
	"log"

	"github.com/aamcrae/config"

	"github.com/wtarreau/rocking-stand/stand"
)

var configFile = flag.String("config", "/etc/rocking-stand.conf", "Configuration file")
var port = flag.Int("port", 0, "Port number for web monitor (0 to disable)")
var squarewave = flag.Bool("squarewave", false, "Emit a 1 kHz test signal instead of rocking")

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
		log.Fatalf("%s: %v", *configFile, err)
	}
	defer b.Close()
	if *squarewave {
		log.Printf("Sending test signal on line %d", sc.Params.Line)
		stand.SquareWave(b, sc.Params.Line, 0)
		return
	}
	st := stand.NewStand(b, sc.Table(), sc.Params)
	if *port != 0 {
		go stand.StandServer(*port, st)
	}
	log.Printf("Rocking on line %d, center %d us, range %d,%d us",
		sc.Params.Line, sc.Params.Center, sc.Params.Min, sc.Params.Max)
	st.Run()
}

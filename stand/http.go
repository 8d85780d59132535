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

//go:build !tinygo

// HTTP monitor for the stand
package stand

import (
	"fmt"
	"log"
	"net/http"

	"github.com/fogleman/gg"

	"github.com/wtarreau/rocking-stand/io"
)

// StandServer runs a web monitor for the stand. The motion profile
// for the current control settings is rendered at /wave.png, a text
// summary is at /status, and /set changes the tuning while running,
// e.g. /set?center=1450&amp=7.
func StandServer(port int, s *Stand) {
	http.Handle("/wave.png", http.HandlerFunc(waveHandler(s)))
	http.Handle("/status", http.HandlerFunc(statusHandler(s)))
	http.Handle("/set", http.HandlerFunc(setHandler(s)))
	url := fmt.Sprintf(":%d", port)
	log.Printf("Starting monitor on %s", url)
	server := &http.Server{Addr: url}
	log.Fatal(server.ListenAndServe())
}

// waveHandler draws the pulse width over one full revolution at the
// last sampled offset and amplitude, with a marker at the current
// phase.
func waveHandler(s *Stand) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		const width = 512
		const height = 300
		p := s.Params()
		pots := s.Get()
		span := p.Max - p.Min
		if span <= 0 {
			http.Error(w, "bad servo range", http.StatusInternalServerError)
			return
		}
		yOf := func(us int) float64 {
			return float64(height) - float64(us-p.Min)*float64(height)/float64(span)
		}
		c := gg.NewContext(width, height)
		c.SetRGB(1, 1, 1)
		c.Clear()
		c.SetRGB(0.8, 0.8, 0.8)
		c.SetLineWidth(1)
		c.DrawLine(0, yOf(p.Center), width, yOf(p.Center))
		c.Stroke()
		c.SetRGB(1, 0, 0)
		x := float64(pots.Angle>>8) * width / 256
		c.DrawLine(x, 0, x, height)
		c.Stroke()
		c.SetRGB(0, 0, 1)
		c.SetLineWidth(2)
		for a := 0; a <= 256; a++ {
			us := s.width(uint8(a), pots.Offset, pots.Amp, p)
			px := float64(a) * width / 256
			if a == 0 {
				c.MoveTo(px, yOf(us))
			} else {
				c.LineTo(px, yOf(us))
			}
		}
		c.Stroke()
		w.Header().Set("Content-Type", "image/png")
		if err := c.EncodePNG(w); err != nil {
			log.Printf("Error writing image: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
}

func statusHandler(s *Stand) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		p := s.Params()
		pots := s.Get()
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "offset %d\n", pots.Offset)
		fmt.Fprintf(w, "speed %d\n", pots.Speed)
		fmt.Fprintf(w, "amplitude %d\n", pots.Amp)
		fmt.Fprintf(w, "width %d us\n", pots.Width)
		fmt.Fprintf(w, "phase %d\n", pots.Angle)
		fmt.Fprintf(w, "line %d\n", p.Line)
		fmt.Fprintf(w, "center %d us\n", p.Center)
		fmt.Fprintf(w, "range %d,%d us\n", p.Min, p.Max)
		fmt.Fprintf(w, "settle %d us\n", p.SettleUs)
		fmt.Fprintf(w, "channels %d,%d,%d\n", p.OffsetChan, p.SpeedChan, p.AmpChan)
		fmt.Fprintf(w, "gains %d,%d,%d\n", p.OffsetGain, p.SpeedGain, p.AmpDivisor)
	}
}

// setHandler adjusts the tuning from query parameters. Unknown or
// missing parameters are left as they are, so a single setting can
// be poked from a browser or curl.
func setHandler(s *Stand) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		p := s.Params()
		changed := false
		for _, f := range []struct {
			key string
			v   *int
		}{
			{"center", &p.Center},
			{"min", &p.Min},
			{"max", &p.Max},
			{"settle", &p.SettleUs},
			{"offset", &p.OffsetGain},
			{"speed", &p.SpeedGain},
			{"amp", &p.AmpDivisor},
		} {
			ok, err := formInt(r, f.key, f.v)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			changed = changed || ok
		}
		if changed {
			if p.Min >= p.Max || p.Center < p.Min || p.Center > p.Max {
				http.Error(w, fmt.Sprintf("center %d outside range %d,%d", p.Center, p.Min, p.Max),
					http.StatusBadRequest)
				return
			}
			if p.Min < 0 || p.Max >= io.FrameUs {
				http.Error(w, fmt.Sprintf("range %d,%d: pulse longer than frame", p.Min, p.Max),
					http.StatusBadRequest)
				return
			}
			s.Tune(p)
		}
		var phase int
		ok, err := formInt(r, "phase", &phase)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if ok {
			s.SetPhase(uint16(phase))
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "center %d range %d,%d settle %d gains %d,%d,%d\n",
			p.Center, p.Min, p.Max, p.SettleUs, p.OffsetGain, p.SpeedGain, p.AmpDivisor)
	}
}

func formInt(r *http.Request, key string, v *int) (bool, error) {
	val := r.FormValue(key)
	if val == "" {
		return false, nil
	}
	n, err := fmt.Sscanf(val, "%d", v)
	if err != nil {
		return false, fmt.Errorf("%s: %v", key, err)
	}
	if n != 1 {
		return false, fmt.Errorf("%s: argument count", key)
	}
	return true, nil
}

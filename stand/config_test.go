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

package stand

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aamcrae/config"
)

func parseConf(t *testing.T, text string) *config.Config {
	t.Helper()
	f := filepath.Join(t.TempDir(), "stand.conf")
	if err := os.WriteFile(f, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	conf, err := config.ParseFile(f)
	if err != nil {
		t.Fatalf("%s: %v", f, err)
	}
	return conf
}

func TestConfigDefaults(t *testing.T) {
	c, err := Config(parseConf(t, ""))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if c.Params != Defaults() {
		t.Errorf("params %+v, want defaults", c.Params)
	}
	if c.Kernel != "multiply" {
		t.Errorf("kernel %q, want multiply", c.Kernel)
	}
	if c.Table().Sin(64) != 127 {
		t.Errorf("default table broken")
	}
}

func TestConfigFull(t *testing.T) {
	c, err := Config(parseConf(t, `[stand]
line=2
center=1400
range=600,2400
settle=5000
channels=0,1,2
gains=2,3,5
kernel=shiftadd
`))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	want := Params{
		Line:       2,
		Center:     1400,
		Min:        600,
		Max:        2400,
		SettleUs:   5000,
		OffsetChan: 0,
		SpeedChan:  1,
		AmpChan:    2,
		OffsetGain: 2,
		SpeedGain:  3,
		AmpDivisor: 5,
	}
	if c.Params != want {
		t.Errorf("params %+v, want %+v", c.Params, want)
	}
	if c.Kernel != "shiftadd" {
		t.Errorf("kernel %q, want shiftadd", c.Kernel)
	}
	if c.Table().Sin(64) != 127 {
		t.Errorf("shiftadd table broken")
	}
}

func TestConfigPartial(t *testing.T) {
	c, err := Config(parseConf(t, `[stand]
center=1450
`))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	want := Defaults()
	want.Center = 1450
	if c.Params != want {
		t.Errorf("params %+v, want %+v", c.Params, want)
	}
}

func TestConfigErrors(t *testing.T) {
	bad := []string{
		"[stand]\nrange=500\n",
		"[stand]\nkernel=fast\n",
		"[stand]\ncenter=3000\n",
		"[stand]\nrange=2500,500\n",
		"[stand]\nrange=500,25000\n",
		"[stand]\nsettle=-5\n",
		"[stand]\ngains=1,2\n",
	}
	for _, text := range bad {
		if _, err := Config(parseConf(t, text)); err == nil {
			t.Errorf("no error for %q", text)
		}
	}
}

func TestNewBoardErrors(t *testing.T) {
	sc := &StandConfig{Params: Defaults()}
	bad := []string{
		"",
		"[input]\nfixed=512,200,1023\n",
		"[input]\n[output]\ngpio=18\n",
		"[input]\nfixed=512,200,1023\n[output]\n",
		"[input]\nfixed=512,200\n[output]\ngpio=18\n",
	}
	for _, text := range bad {
		if _, err := NewBoard(parseConf(t, text), sc); err == nil {
			t.Errorf("no error for %q", text)
		}
	}
}

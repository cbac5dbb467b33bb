// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2025  the Archivekit Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package backend

import (
	"testing"

	"github.com/archivekit/pdfcore/graphics"
)

// BaseDevice must implement the full Device interface.
var _ Device = BaseDevice{}

// countingDevice overrides a single method of BaseDevice.
type countingDevice struct {
	BaseDevice
	fills int
}

func (d *countingDevice) Fill(path *Path, evenOdd bool, state *graphics.State) error {
	d.fills++
	return nil
}

func TestOverride(t *testing.T) {
	var dev Device = &countingDevice{}

	state := graphics.NewState()
	err := dev.Fill(&Path{}, false, &state)
	if err != nil {
		t.Fatal(err)
	}
	err = dev.Stroke(&Path{}, &state)
	if err != nil {
		t.Fatal(err)
	}

	if dev.(*countingDevice).fills != 1 {
		t.Errorf("Fill not dispatched to override")
	}
}

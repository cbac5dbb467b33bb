// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2024  the Archivekit Authors
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

package font

import (
	"errors"

	"seehuhn.de/go/postscript/type1/names"

	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/graphics/matrix"
)

// Extract reads a font dictionary from a PDF file.
func Extract(r pdf.Getter, obj pdf.Object, defName pdf.Name) (*Font, error) {
	dict, err := pdf.GetDictTyped(r, obj, "Font")
	if err != nil {
		return nil, err
	}
	if dict == nil {
		return nil, &pdf.MalformedFileError{
			Err: errors.New("missing font dictionary"),
		}
	}

	subtype, err := pdf.GetName(r, dict["Subtype"])
	if err != nil {
		return nil, err
	}

	f := &Font{
		Name:       defName,
		Ref:        obj,
		Subtype:    subtype,
		FontMatrix: matrix.Matrix{0.001, 0, 0, 0.001, 0, 0},
		missing:    500,
	}

	if tuObj := dict["ToUnicode"]; tuObj != nil {
		if stm, err := pdf.GetStream(r, tuObj); err == nil && stm != nil {
			if data, err := pdf.ReadAll(r, stm); err == nil {
				if tu, err := ParseToUnicode(data); err == nil {
					f.toUnicode = tu
				}
			}
		}
	}

	if subtype == "Type0" {
		return extractComposite(r, dict, f)
	}
	return extractSimple(r, dict, f)
}

func extractSimple(r pdf.Getter, dict pdf.Dict, f *Font) (*Font, error) {
	firstChar, err := pdf.GetInteger(r, dict["FirstChar"])
	if err != nil {
		return nil, err
	}
	widths, err := pdf.GetArray(r, dict["Widths"])
	if err != nil {
		return nil, err
	}
	if len(widths) > 0 {
		f.widths = make(map[uint32]float64, len(widths))
		for i, wObj := range widths {
			w, err := pdf.GetNumber(r, wObj)
			if err != nil {
				continue
			}
			code := int(firstChar) + i
			if code >= 0 && code < 256 {
				f.widths[uint32(code)] = float64(w)
			}
		}
	}

	if fd, err := pdf.GetDict(r, dict["FontDescriptor"]); err == nil && fd != nil {
		if mw, err := pdf.GetNumber(r, fd["MissingWidth"]); err == nil && fd["MissingWidth"] != nil {
			f.missing = float64(mw)
		} else {
			f.missing = 0
		}
	}

	// The base encoding together with the /Differences array maps codes
	// to glyph names; glyph names in turn map to text.
	encObj, err := pdf.Resolve(r, dict["Encoding"])
	if err != nil {
		return nil, err
	}
	if encDict, ok := encObj.(pdf.Dict); ok {
		diffs, err := pdf.GetArray(r, encDict["Differences"])
		if err == nil && len(diffs) > 0 {
			f.diffNames = map[uint32]string{}
			code := uint32(0)
			for _, elem := range diffs {
				elem, err := pdf.Resolve(r, elem)
				if err != nil {
					return nil, err
				}
				switch x := elem.(type) {
				case pdf.Integer:
					code = uint32(x)
				case pdf.Name:
					f.diffNames[code] = string(x)
					code++
				}
			}
		}
	}
	if len(f.diffNames) > 0 {
		f.simpleText = make(map[uint32]string, len(f.diffNames))
		for code, glyphName := range f.diffNames {
			rr := names.ToUnicode(glyphName, false)
			if len(rr) > 0 {
				f.simpleText[code] = string(rr)
			}
		}
	}

	if f.Subtype == "Type3" {
		fm, err := pdf.GetMatrix(r, dict["FontMatrix"])
		if err == nil {
			f.FontMatrix = matrix.Matrix(fm)
		}
		f.CharProcs, _ = pdf.GetDict(r, dict["CharProcs"])
		f.Resources = dict["Resources"]
		f.missing = 0
	}

	return f, nil
}

func extractComposite(r pdf.Getter, dict pdf.Dict, f *Font) (*Font, error) {
	f.Composite = true
	f.missing = 1000

	if enc, err := pdf.GetName(r, dict["Encoding"]); err == nil {
		if enc == "Identity-V" {
			f.Vertical = true
		}
	}

	descFonts, err := pdf.GetArray(r, dict["DescendantFonts"])
	if err != nil || len(descFonts) == 0 {
		return f, nil
	}
	desc, err := pdf.GetDict(r, descFonts[0])
	if err != nil || desc == nil {
		return f, nil
	}

	if dw, err := pdf.GetNumber(r, desc["DW"]); err == nil && desc["DW"] != nil {
		f.missing = float64(dw)
	}

	// The /W array gives the widths of individual CIDs, either as
	// "start [w1 w2 ...]" or as "first last w".
	wArr, err := pdf.GetArray(r, desc["W"])
	if err != nil {
		return f, nil
	}
	f.widths = map[uint32]float64{}
	for i := 0; i < len(wArr); {
		first, err := pdf.GetInteger(r, wArr[i])
		if err != nil || i+1 >= len(wArr) {
			break
		}
		next, err := pdf.Resolve(r, wArr[i+1])
		if err != nil {
			break
		}
		if block, ok := next.(pdf.Array); ok {
			for j, wObj := range block {
				if w, ok := asNumber(wObj); ok {
					f.widths[uint32(int(first)+j)] = w
				}
			}
			i += 2
		} else if i+2 < len(wArr) {
			last, err1 := pdf.GetInteger(r, wArr[i+1])
			w, ok := asNumber(wArr[i+2])
			if err1 == nil && ok && last >= first && last-first < 65536 {
				for cid := first; cid <= last; cid++ {
					f.widths[uint32(cid)] = w
				}
			}
			i += 3
		} else {
			break
		}
	}

	return f, nil
}

func asNumber(obj pdf.Object) (float64, bool) {
	switch x := obj.(type) {
	case pdf.Integer:
		return float64(x), true
	case pdf.Real:
		return float64(x), true
	case pdf.Number:
		return float64(x), true
	default:
		return 0, false
	}
}

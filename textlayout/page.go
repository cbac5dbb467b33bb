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

package textlayout

import (
	"github.com/archivekit/pdfcore"
	"github.com/archivekit/pdfcore/graphics"
	"github.com/archivekit/pdfcore/reader"
)

// FromPage interprets the content streams of a page and collects the
// glyphs shown on it.
func FromPage(r pdf.Getter, pageDict pdf.Object, opt *Options) (*Extractor, error) {
	e := New(opt)

	interp := reader.New(r, nil)
	interp.DrawGlyph = func(g reader.Glyph) error {
		// invisible text is still extracted; it carries the OCR layer
		// of scanned documents
		e.Add(Char{
			XMin:      g.XMin,
			YMin:      g.YMin,
			XMax:      g.XMax,
			YMax:      g.YMax,
			Text:      g.Text,
			Size:      g.Size,
			Rotation:  g.Rotation,
			Invisible: g.Invisible,
			StreamPos: g.StreamPos,
			NBytes:    g.NBytes,
			Font:      g.FontRef,
		})
		return nil
	}
	interp.MarkedContent = func(event reader.MarkedContentEvent, mc *graphics.MarkedContent) error {
		switch event {
		case reader.MarkedContentBegin:
			if mc.Properties != nil {
				if obj, err := mc.Properties.Get("ActualText"); err == nil {
					if s, ok := obj.(pdf.String); ok {
						e.BeginActualText(string(s.AsTextString()))
					}
				}
			}
		case reader.MarkedContentEnd:
			if mc.Properties != nil {
				if obj, err := mc.Properties.Get("ActualText"); err == nil {
					if _, ok := obj.(pdf.String); ok {
						e.EndActualText()
					}
				}
			}
		}
		return nil
	}

	err := interp.ParsePage(pageDict)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ExtractText returns the text of a page in reading order.
func ExtractText(r pdf.Getter, pageDict pdf.Object) (string, error) {
	e, err := FromPage(r, pageDict, nil)
	if err != nil {
		return "", err
	}
	return e.Text(), nil
}

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
	"regexp"
	"strings"
)

// SearchOptions modifies the behavior of Find.
type SearchOptions struct {
	// CaseSensitive enables case-sensitive matching.
	CaseSensitive bool

	// WholeWords restricts matches to whole words.
	WholeWords bool
}

// Hit is one search result.
type Hit struct {
	// XMin, YMin, XMax, YMax is the bounding box of the matched text.
	XMin, YMin, XMax, YMax float64

	// Text is the matched text.
	Text string
}

// Find searches the page text in reading order for the given query
// string.
func (e *Extractor) Find(query string, opt *SearchOptions) []Hit {
	if opt == nil {
		opt = &SearchOptions{}
	}
	if query == "" {
		return nil
	}

	pattern := regexp.QuoteMeta(query)
	if opt.WholeWords {
		pattern = `\b` + pattern + `\b`
	}
	if !opt.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}

	// flatten the glyphs in reading order, remembering which rune
	// belongs to which glyph
	page := e.Layout()
	var sb strings.Builder
	var owner []*Char
	for i := range page.Columns {
		col := &page.Columns[i]
		for j := range col.Paragraphs {
			par := &col.Paragraphs[j]
			for k := range par.Lines {
				line := &par.Lines[k]
				for w := range line.Words {
					if w > 0 {
						sb.WriteString(" ")
						owner = append(owner, nil)
					}
					word := &line.Words[w]
					for c := range word.Chars {
						char := &word.Chars[c]
						sb.WriteString(char.Text)
						for i := 0; i < len(char.Text); i++ {
							owner = append(owner, char)
						}
					}
				}
				sb.WriteString("\n")
				owner = append(owner, nil)
			}
		}
	}
	text := sb.String()

	var hits []Hit
	for _, loc := range re.FindAllStringIndex(text, -1) {
		hit := Hit{Text: text[loc[0]:loc[1]]}
		first := true
		for pos := loc[0]; pos < loc[1] && pos < len(owner); pos++ {
			char := owner[pos]
			if char == nil {
				continue
			}
			if first {
				hit.XMin, hit.YMin = char.XMin, char.YMin
				hit.XMax, hit.YMax = char.XMax, char.YMax
				first = false
			} else {
				hit.XMin = minF(hit.XMin, char.XMin)
				hit.YMin = minF(hit.YMin, char.YMin)
				hit.XMax = maxF(hit.XMax, char.XMax)
				hit.YMax = maxF(hit.YMax, char.YMax)
			}
		}
		hits = append(hits, hit)
	}
	return hits
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

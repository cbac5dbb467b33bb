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

package function

import (
	"errors"
	"fmt"

	"github.com/archivekit/pdfcore"
)

// Extract reads a PDF function from a PDF file.
func Extract(x *pdf.Extractor, obj pdf.Object) (pdf.Function, error) {
	if ref, isRef := obj.(pdf.Reference); isRef {
		err := x.Visit(ref)
		if err != nil {
			return nil, err
		}
		defer x.Done(ref)
	}

	resolved, err := pdf.Resolve(x.R, obj)
	if err != nil {
		return nil, err
	}

	var dict pdf.Dict
	var stream *pdf.Stream
	switch v := resolved.(type) {
	case pdf.Dict:
		dict = v
	case *pdf.Stream:
		stream = v
		dict = v.Dict
	default:
		return nil, &pdf.MalformedFileError{
			Err: fmt.Errorf("expected function but got %T", resolved),
		}
	}

	functionType, err := pdf.GetInteger(x.R, dict["FunctionType"])
	if err != nil {
		return nil, err
	}

	switch functionType {
	case 0:
		if stream == nil {
			return nil, &pdf.MalformedFileError{
				Err: errors.New("sampled function must be a stream"),
			}
		}
		return extractType0(x, stream)
	case 2:
		return extractType2(x, dict)
	case 3:
		return extractType3(x, dict)
	case 4:
		if stream == nil {
			return nil, &pdf.MalformedFileError{
				Err: errors.New("calculator function must be a stream"),
			}
		}
		return extractType4(x, stream)
	default:
		return nil, &pdf.MalformedFileError{
			Err: fmt.Errorf("invalid function type %d", functionType),
		}
	}
}

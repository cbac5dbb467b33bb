// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2021  the Archivekit Authors
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

package pdf

import (
	"compress/zlib"
	"errors"
	"fmt"
	"io"

	"github.com/archivekit/pdfcore/ascii85"
	"github.com/archivekit/pdfcore/internal/filter/asciihex"
	"github.com/archivekit/pdfcore/internal/filter/ccittfax"
	"github.com/archivekit/pdfcore/internal/filter/dct"
	"github.com/archivekit/pdfcore/internal/filter/predict"
	"github.com/archivekit/pdfcore/internal/filter/runlength"
	"github.com/archivekit/pdfcore/lzw"
)

// Filter represents a PDF stream filter.
//
// Filters are used to encode and decode stream data.  The Decode method
// is used when reading data from a PDF file, the Encode method when
// writing.
type Filter interface {
	// Info returns the name and parameters of the filter, as they are
	// stored in the /Filter and /DecodeParms entries of the stream
	// dictionary.
	Info(v Version) (Name, Dict, error)

	// Encode wraps a writer so that data written is encoded using the
	// filter.
	Encode(v Version, w io.WriteCloser) (io.WriteCloser, error)

	// Decode wraps a reader so that data read is decoded using the
	// filter.
	Decode(v Version, r io.Reader) (io.ReadCloser, error)
}

// makeFilter creates a Filter from a filter name and parameter
// dictionary, as found in a stream dictionary.  Both the full filter
// names and the abbreviations allowed for inline images are recognized.
// An unknown filter name yields a filter which decodes to an empty
// stream, so that malformed files fail closed instead of exposing raw
// data.
func makeFilter(name Name, parms Dict) Filter {
	switch name {
	case "ASCIIHexDecode", "AHx":
		return &FilterASCIIHex{}
	case "ASCII85Decode", "A85":
		return &FilterASCII85{}
	case "LZWDecode", "LZW":
		return FilterLZW(parms)
	case "FlateDecode", "Fl":
		return FilterFlate(parms)
	case "RunLengthDecode", "RL":
		return &FilterRunLength{}
	case "CCITTFaxDecode", "CCF":
		return FilterCCITTFax(parms)
	case "DCTDecode", "DCT":
		return FilterDCT(parms)
	default:
		return &unsupportedFilter{name: name, parms: parms}
	}
}

// appendFilter records a filter in the /Filter and /DecodeParms entries
// of a stream dictionary.
func appendFilter(dict Dict, name Name, parms Dict) {
	if name == "" {
		return
	}
	if len(parms) == 0 {
		parms = nil
	}

	switch f := dict["Filter"].(type) {
	case nil:
		dict["Filter"] = name
		if parms != nil {
			dict["DecodeParms"] = parms
		}
	case Name:
		dict["Filter"] = Array{f, name}
		oldParms, _ := dict["DecodeParms"].(Dict)
		if oldParms != nil || parms != nil {
			var p0 Object
			if oldParms != nil {
				p0 = oldParms
			}
			var p1 Object
			if parms != nil {
				p1 = parms
			}
			dict["DecodeParms"] = Array{p0, p1}
		}
	case Array:
		dict["Filter"] = append(f, name)
		oldParms, _ := dict["DecodeParms"].(Array)
		if oldParms == nil && parms == nil {
			return
		}
		for len(oldParms) < len(f) {
			oldParms = append(oldParms, nil)
		}
		var p1 Object
		if parms != nil {
			p1 = parms
		}
		dict["DecodeParms"] = append(oldParms, p1)
	}
}

// unsupportedFilter is used for unknown filter names.  Decoding yields
// no data, so that raw stream data is never exposed by accident.
type unsupportedFilter struct {
	name  Name
	parms Dict
}

func (f *unsupportedFilter) Info(Version) (Name, Dict, error) {
	return f.name, f.parms, nil
}

func (f *unsupportedFilter) Encode(Version, io.WriteCloser) (io.WriteCloser, error) {
	return nil, fmt.Errorf("unsupported filter %q", string(f.name))
}

func (f *unsupportedFilter) Decode(Version, io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(eofReader{}), nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) {
	return 0, io.EOF
}

// FilterASCIIHex is the ASCIIHexDecode filter.
type FilterASCIIHex struct{}

// Info implements the [Filter] interface.
func (f *FilterASCIIHex) Info(Version) (Name, Dict, error) {
	return "ASCIIHexDecode", nil, nil
}

// Encode implements the [Filter] interface.
func (f *FilterASCIIHex) Encode(_ Version, w io.WriteCloser) (io.WriteCloser, error) {
	return asciihex.Encode(w, 64), nil
}

// Decode implements the [Filter] interface.
func (f *FilterASCIIHex) Decode(_ Version, r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(asciihex.Decode(r)), nil
}

// FilterASCII85 is the ASCII85Decode filter.
type FilterASCII85 struct{}

// Info implements the [Filter] interface.
func (f *FilterASCII85) Info(Version) (Name, Dict, error) {
	return "ASCII85Decode", nil, nil
}

// Encode implements the [Filter] interface.
func (f *FilterASCII85) Encode(_ Version, w io.WriteCloser) (io.WriteCloser, error) {
	return ascii85.Encode(w, 64)
}

// Decode implements the [Filter] interface.
func (f *FilterASCII85) Decode(_ Version, r io.Reader) (io.ReadCloser, error) {
	res, err := ascii85.Decode(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(res), nil
}

// FilterRunLength is the RunLengthDecode filter.
type FilterRunLength struct{}

// Info implements the [Filter] interface.
func (f *FilterRunLength) Info(Version) (Name, Dict, error) {
	return "RunLengthDecode", nil, nil
}

// Encode implements the [Filter] interface.
func (f *FilterRunLength) Encode(_ Version, w io.WriteCloser) (io.WriteCloser, error) {
	return runlength.Encode(w), nil
}

// Decode implements the [Filter] interface.
func (f *FilterRunLength) Decode(_ Version, r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(runlength.Decode(r)), nil
}

// FilterFlate is the FlateDecode filter.  The Dict holds the decode
// parameters, e.g. "Predictor", "Colors", "BitsPerComponent", and
// "Columns".
type FilterFlate Dict

// Info implements the [Filter] interface.
func (f FilterFlate) Info(Version) (Name, Dict, error) {
	parms := Dict(f)
	if len(parms) == 0 {
		parms = nil
	}
	return "FlateDecode", parms, nil
}

// Encode implements the [Filter] interface.
func (f FilterFlate) Encode(_ Version, w io.WriteCloser) (io.WriteCloser, error) {
	zw := zlib.NewWriter(w)
	var res io.WriteCloser = &closeChain{zw, w}

	pp, err := predictorParams(Dict(f))
	if err != nil {
		return nil, err
	}
	if pp != nil {
		res, err = predict.NewWriter(res, pp)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Decode implements the [Filter] interface.
func (f FilterFlate) Decode(_ Version, r io.Reader) (io.ReadCloser, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, err
	}

	pp, err := predictorParams(Dict(f))
	if err != nil {
		return nil, err
	}
	if pp == nil {
		return zr, nil
	}
	pr, err := predict.NewReader(zr, pp)
	if err != nil {
		return nil, err
	}
	return &readCloseChain{pr, zr}, nil
}

// FilterCompress is the FlateDecode filter.  All methods forward to
// FilterFlate with the same parameters; no parameters are chosen
// automatically.
type FilterCompress Dict

// Info implements the [Filter] interface.
func (f FilterCompress) Info(v Version) (Name, Dict, error) {
	return FilterFlate(f).Info(v)
}

// Encode implements the [Filter] interface.
func (f FilterCompress) Encode(v Version, w io.WriteCloser) (io.WriteCloser, error) {
	return FilterFlate(f).Encode(v, w)
}

// Decode implements the [Filter] interface.
func (f FilterCompress) Decode(v Version, r io.Reader) (io.ReadCloser, error) {
	return FilterFlate(f).Decode(v, r)
}

// FilterLZW is the LZWDecode filter.  The Dict holds the decode
// parameters, e.g. "Predictor" and "EarlyChange".
type FilterLZW Dict

// Info implements the [Filter] interface.
func (f FilterLZW) Info(Version) (Name, Dict, error) {
	parms := Dict(f)
	if len(parms) == 0 {
		parms = nil
	}
	return "LZWDecode", parms, nil
}

func (f FilterLZW) earlyChange() bool {
	val, ok := Dict(f)["EarlyChange"].(Integer)
	return !ok || val != 0
}

// Encode implements the [Filter] interface.
func (f FilterLZW) Encode(_ Version, w io.WriteCloser) (io.WriteCloser, error) {
	lw, err := lzw.NewWriter(w, f.earlyChange())
	if err != nil {
		return nil, err
	}
	var res io.WriteCloser = &closeChain{lw, w}

	pp, err := predictorParams(Dict(f))
	if err != nil {
		return nil, err
	}
	if pp != nil {
		res, err = predict.NewWriter(res, pp)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Decode implements the [Filter] interface.
func (f FilterLZW) Decode(_ Version, r io.Reader) (io.ReadCloser, error) {
	lr := lzw.NewReader(r, f.earlyChange())

	pp, err := predictorParams(Dict(f))
	if err != nil {
		return nil, err
	}
	if pp == nil {
		return lr, nil
	}
	pr, err := predict.NewReader(lr, pp)
	if err != nil {
		return nil, err
	}
	return &readCloseChain{pr, lr}, nil
}

// FilterCCITTFax is the CCITTFaxDecode filter.  The Dict holds the
// decode parameters, e.g. "K", "Columns", and "BlackIs1".
type FilterCCITTFax Dict

// Info implements the [Filter] interface.
func (f FilterCCITTFax) Info(Version) (Name, Dict, error) {
	parms := Dict(f)
	if len(parms) == 0 {
		parms = nil
	}
	return "CCITTFaxDecode", parms, nil
}

func (f FilterCCITTFax) params() *ccittfax.Params {
	d := Dict(f)
	p := &ccittfax.Params{
		K:          intOrDefault(d["K"], 0),
		Columns:    intOrDefault(d["Columns"], 1728),
		Rows:       intOrDefault(d["Rows"], 0),
		EndOfBlock: boolOrDefault(d["EndOfBlock"], true),
	}
	p.EndOfLine = boolOrDefault(d["EndOfLine"], false)
	p.EncodedByteAlign = boolOrDefault(d["EncodedByteAlign"], false)
	p.BlackIs1 = boolOrDefault(d["BlackIs1"], false)
	p.IgnoreEndOfBlock = !p.EndOfBlock
	p.DamagedRowsBeforeError = intOrDefault(d["DamagedRowsBeforeError"], 0)
	return p
}

// Encode implements the [Filter] interface.
func (f FilterCCITTFax) Encode(_ Version, w io.WriteCloser) (io.WriteCloser, error) {
	cw, err := ccittfax.NewWriter(w, f.params())
	if err != nil {
		return nil, err
	}
	return &closeChain{cw, w}, nil
}

// Decode implements the [Filter] interface.
func (f FilterCCITTFax) Decode(_ Version, r io.Reader) (io.ReadCloser, error) {
	cr, err := ccittfax.NewReader(r, f.params())
	if err != nil {
		return nil, err
	}
	return io.NopCloser(cr), nil
}

// FilterDCT is the DCTDecode filter.  Streams encoded with this filter
// hold JPEG images; decoding yields the raw component samples.
type FilterDCT Dict

// Info implements the [Filter] interface.
func (f FilterDCT) Info(Version) (Name, Dict, error) {
	parms := Dict(f)
	if len(parms) == 0 {
		parms = nil
	}
	return "DCTDecode", parms, nil
}

// Encode implements the [Filter] interface.
//
// Encoding to JPEG is not supported.
func (f FilterDCT) Encode(Version, io.WriteCloser) (io.WriteCloser, error) {
	return nil, errors.New("DCTDecode: encoding not supported")
}

// Decode implements the [Filter] interface.
func (f FilterDCT) Decode(_ Version, r io.Reader) (io.ReadCloser, error) {
	colorTransform := intOrDefault(Dict(f)["ColorTransform"], -1)
	return dct.DecodeWithParams(r, dct.ColorTransform(colorTransform))
}

// predictorParams extracts the predictor parameters from a filter
// parameter dictionary.  If no predictor is used, nil is returned.
func predictorParams(d Dict) (*predict.Params, error) {
	predictor := intOrDefault(d["Predictor"], 1)
	if predictor == 1 {
		return nil, nil
	}
	p := &predict.Params{
		Predictor:        predictor,
		Colors:           intOrDefault(d["Colors"], 1),
		BitsPerComponent: intOrDefault(d["BitsPerComponent"], 8),
		Columns:          intOrDefault(d["Columns"], 1),
	}
	err := p.Validate()
	if err != nil {
		return nil, err
	}
	return p, nil
}

func intOrDefault(obj Object, def int) int {
	if val, ok := obj.(Integer); ok {
		return int(val)
	}
	return def
}

func boolOrDefault(obj Object, def bool) bool {
	if val, ok := obj.(Boolean); ok {
		return bool(val)
	}
	return def
}

// closeChain closes a filter writer and then the underlying writer.
type closeChain struct {
	io.WriteCloser
	next io.Closer
}

func (c *closeChain) Close() error {
	err := c.WriteCloser.Close()
	if err != nil {
		return err
	}
	return c.next.Close()
}

// readCloseChain combines a decoded reader with the closer of the
// underlying filter stage.
type readCloseChain struct {
	io.Reader
	closer io.Closer
}

func (c *readCloseChain) Close() error {
	return c.closer.Close()
}

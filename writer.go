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
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
)

// Putter represents a PDF file opened for writing.  The main
// implementation of this interface is [Writer].
type Putter interface {
	// Alloc allocates an object number for an indirect object.
	Alloc() Reference

	// Put writes an object to the file as an indirect object.
	Put(ref Reference, obj Object) error

	// OpenStream begins a new stream object.
	OpenStream(ref Reference, dict Dict, filters ...Filter) (io.WriteCloser, error)

	// WriteCompressed writes objects into a compressed object stream.
	WriteCompressed(refs []Reference, objects ...Object) error

	GetMeta() *MetaInfo
	GetOptions() OutputOptions
}

// Writer writes a PDF file, one object at a time.
type Writer struct {
	meta MetaInfo

	w       *posWriter
	origW   io.Writer
	nextRef uint32
	xref    map[uint32]*xRefEntry

	// objects keeps the objects written so far, so that the Writer can
	// also be used as a [Getter].  Streams are stored with their plain
	// (unfiltered) contents.
	objects map[Reference]Native

	enc      *encryptInfo
	opt      *WriterOptions
	inStream bool
	closed   bool
	closeFn  func() error
}

// WriterOptions allows to influence the way a PDF file is generated.
type WriterOptions struct {
	// ID is the PDF file identifier, consisting of two byte slices.
	// If this is nil, a random identifier is generated where needed.
	ID [][]byte

	// UserPassword, if non-empty, encrypts the document contents.
	// Opening the document with the user password gives the permissions
	// described by UserPermissions.
	UserPassword string

	// OwnerPassword gives full access to an encrypted document.
	OwnerPassword string

	// UserPermissions describes the operations permitted for users who
	// open the document with the user password.
	UserPermissions Perm

	// HumanReadable formats the output so that it is easier to inspect
	// manually.
	HumanReadable bool
}

// NewWriter prepares a PDF file for writing.
func NewWriter(w io.Writer, v Version, opt *WriterOptions) (*Writer, error) {
	if opt == nil {
		opt = &WriterOptions{}
	}
	versionString, err := v.ToString()
	if err != nil {
		return nil, err
	}

	pdf := &Writer{
		meta: MetaInfo{
			Version: v,
			Catalog: &Catalog{},
		},
		w:       &posWriter{w: w},
		origW:   w,
		xref:    map[uint32]*xRefEntry{},
		objects: map[Reference]Native{},
		opt:     opt,
	}
	pdf.xref[0] = &xRefEntry{Pos: -1, Generation: 0xFFFF}

	needID := len(opt.ID) > 0 ||
		opt.UserPassword != "" || opt.OwnerPassword != "" ||
		v >= V2_0
	if needID {
		id := opt.ID
		for len(id) < 2 {
			id = append(id, randomID())
		}
		pdf.meta.ID = [][]byte{id[0], id[1]}
	}

	if opt.UserPassword != "" || opt.OwnerPassword != "" {
		if err := pdf.setupEncryption(); err != nil {
			return nil, err
		}
	}

	_, err = fmt.Fprintf(pdf.w, "%%PDF-%s\n%%\x80\x80\x80\x80\n", versionString)
	if err != nil {
		return nil, err
	}

	return pdf, nil
}

// Create creates a PDF file with the given name.  After use,
// [Writer.Close] must be called to write the trailer and to close the
// underlying file.
func Create(fname string, v Version, opt *WriterOptions) (*Writer, error) {
	fd, err := os.Create(fname)
	if err != nil {
		return nil, err
	}
	pdf, err := NewWriter(fd, v, opt)
	if err != nil {
		fd.Close()
		return nil, err
	}
	pdf.closeFn = fd.Close
	return pdf, nil
}

func randomID() []byte {
	id := make([]byte, 16)
	_, err := rand.Read(id)
	if err != nil {
		panic(err)
	}
	return id
}

func (pdf *Writer) setupEncryption() error {
	opt := pdf.opt
	var cf *cryptFilter
	var V int
	switch {
	case pdf.meta.Version >= V2_0:
		cf = &cryptFilter{Cipher: cipherAES, Length: 256}
		V = 5
	case pdf.meta.Version >= V1_6:
		cf = &cryptFilter{Cipher: cipherAES, Length: 128}
		V = 4
	case pdf.meta.Version >= V1_4:
		cf = &cryptFilter{Cipher: cipherRC4, Length: 128}
		V = 2
	default:
		cf = &cryptFilter{Cipher: cipherRC4, Length: 40}
		V = 1
	}
	sec, err := createStdSecHandler(pdf.meta.ID[0],
		opt.UserPassword, opt.OwnerPassword,
		opt.UserPermissions, cf.Length, V)
	if err != nil {
		return err
	}
	pdf.enc = &encryptInfo{
		sec:  sec,
		strF: cf,
		stmF: cf,
		efF:  cf,

		UserPermissions: opt.UserPermissions,
	}
	return nil
}

// GetMeta returns the meta information of the PDF file.
func (pdf *Writer) GetMeta() *MetaInfo {
	return &pdf.meta
}

// GetOptions returns the output options for the writer.
func (pdf *Writer) GetOptions() OutputOptions {
	var opt OutputOptions
	if pdf.opt.HumanReadable {
		opt |= OptPretty
	}
	if pdf.meta.Version >= V2_0 {
		opt |= OptTextStringUtf8
	}
	if pdf.meta.Version >= V1_5 {
		opt |= OptDictTypes
	}
	return opt
}

// CheckVersion checks whether the PDF file being written has version
// minVersion or later.  If the version is new enough, nil is returned.
// Otherwise a [VersionError] for the given operation is returned.
func (pdf *Writer) CheckVersion(operation string, minVersion Version) error {
	if pdf.meta.Version >= minVersion {
		return nil
	}
	return &VersionError{
		Earliest:  minVersion,
		Operation: operation,
	}
}

// Alloc allocates an object number for an indirect object.
func (pdf *Writer) Alloc() Reference {
	pdf.nextRef++
	return NewReference(pdf.nextRef, 0)
}

// Get implements the [Getter] interface.  Objects written to the file
// can be read back.
func (pdf *Writer) Get(ref Reference, canObjStm bool) (Native, error) {
	obj := pdf.objects[ref]
	if stm, isStream := obj.(*Stream); isStream {
		if ss, ok := stm.R.(io.Seeker); ok {
			_, err := ss.Seek(0, io.SeekStart)
			if err != nil {
				return nil, err
			}
		}
	}
	return obj, nil
}

// Put writes an object to the PDF file, as an indirect object using the
// given reference.
func (pdf *Writer) Put(ref Reference, obj Object) error {
	if pdf.inStream {
		return errors.New("Put() while stream is open")
	}
	if pdf.closed {
		return errors.New("Put() after Close()")
	}
	err := pdf.checkRef(ref)
	if err != nil {
		return err
	}

	var native Native
	if obj != nil {
		native = obj.AsPDF(pdf.GetOptions())
	}
	pdf.objects[ref] = native

	if stm, isStream := native.(*Stream); isStream {
		return pdf.putStream(ref, stm)
	}

	pdf.xref[ref.Number()] = &xRefEntry{
		Pos:        pdf.w.pos,
		Generation: ref.Generation(),
	}

	_, err = fmt.Fprintf(pdf.w, "%d %d obj\n", ref.Number(), ref.Generation())
	if err != nil {
		return err
	}
	err = Format(pdf.w, pdf.GetOptions(), pdf.encryptObject(ref, native))
	if err != nil {
		return err
	}
	_, err = pdf.w.Write([]byte("\nendobj\n"))
	return err
}

// putStream writes a complete [Stream] object to the file.
func (pdf *Writer) putStream(ref Reference, stm *Stream) error {
	if ss, ok := stm.R.(io.Seeker); ok {
		_, err := ss.Seek(0, io.SeekStart)
		if err != nil {
			return err
		}
	}
	var data []byte
	var err error
	if stm.R != nil {
		data, err = io.ReadAll(stm.R)
		if err != nil {
			return err
		}
	}

	dict := stm.Dict.Clone()
	if dict == nil {
		dict = Dict{}
	}
	if _, ok := dict["Length"].(Reference); !ok {
		dict["Length"] = Integer(len(data))
	}

	if pdf.enc != nil {
		data, err = pdf.enc.EncryptBytes(ref, data)
		if err != nil {
			return err
		}
		dict["Length"] = Integer(len(data))
	}

	pdf.xref[ref.Number()] = &xRefEntry{
		Pos:        pdf.w.pos,
		Generation: ref.Generation(),
	}
	_, err = fmt.Fprintf(pdf.w, "%d %d obj\n", ref.Number(), ref.Generation())
	if err != nil {
		return err
	}
	err = Format(pdf.w, pdf.GetOptions(), pdf.encryptObject(ref, dict))
	if err != nil {
		return err
	}
	_, err = pdf.w.Write([]byte("\nstream\n"))
	if err != nil {
		return err
	}
	_, err = pdf.w.Write(data)
	if err != nil {
		return err
	}
	_, err = pdf.w.Write([]byte("\nendstream\nendobj\n"))
	return err
}

func (pdf *Writer) checkRef(ref Reference) error {
	if ref.IsInternal() || ref.Number() == 0 {
		return &InternalError{
			Err: fmt.Errorf("invalid object reference %s", ref),
		}
	}
	if _, exists := pdf.xref[ref.Number()]; exists {
		return errDuplicateRef
	}
	if ref.Number() > pdf.nextRef {
		pdf.nextRef = ref.Number()
	}
	return nil
}

// encryptObject returns a copy of obj with all strings encrypted using
// the key for the given object reference.  If the file is not encrypted,
// obj is returned unchanged.
func (pdf *Writer) encryptObject(ref Reference, obj Native) Native {
	if pdf.enc == nil || obj == nil {
		return obj
	}
	switch x := obj.(type) {
	case String:
		enc, err := pdf.enc.EncryptBytes(ref, []byte(x))
		if err != nil {
			return x
		}
		return String(enc)
	case Array:
		res := make(Array, len(x))
		for i, elem := range x {
			if elem == nil {
				continue
			}
			res[i] = pdf.encryptObject(ref, elem.AsPDF(pdf.GetOptions()))
		}
		return res
	case Dict:
		res := make(Dict, len(x))
		for key, elem := range x {
			if elem == nil {
				res[key] = nil
				continue
			}
			res[key] = pdf.encryptObject(ref, elem.AsPDF(pdf.GetOptions()))
		}
		return res
	default:
		return obj
	}
}

// OpenStream adds a PDF Stream to the file and returns a writer which
// can be used to add the contents of the stream.  The stream dictionary
// is extended to describe the given filters, which are applied to the
// data in reverse order.
func (pdf *Writer) OpenStream(ref Reference, dict Dict, filters ...Filter) (io.WriteCloser, error) {
	if pdf.inStream {
		return nil, errors.New("OpenStream() while stream is open")
	}
	if pdf.closed {
		return nil, errors.New("OpenStream() after Close()")
	}
	err := pdf.checkRef(ref)
	if err != nil {
		return nil, err
	}

	// Copy dict, dict["Filter"] and dict["DecodeParms"], so that we
	// don't modify the caller's data.
	streamDict := dict.Clone()
	if streamDict == nil {
		streamDict = Dict{}
	}
	if filter, ok := streamDict["Filter"].(Array); ok {
		streamDict["Filter"] = filter.Clone()
	}
	if decodeParms, ok := streamDict["DecodeParms"].(Array); ok {
		streamDict["DecodeParms"] = decodeParms.Clone()
	}

	length, isPlaceholder := streamDict["Length"].(*Placeholder)
	if !isPlaceholder && streamDict["Length"] == nil {
		length = NewPlaceholder(pdf, 12)
		streamDict["Length"] = length
	}

	for _, filter := range filters {
		name, parms, err := filter.Info(pdf.meta.Version)
		if err != nil {
			return nil, err
		}
		appendFilter(streamDict, name, parms)
	}

	pdf.xref[ref.Number()] = &xRefEntry{
		Pos:        pdf.w.pos,
		Generation: ref.Generation(),
	}
	_, err = fmt.Fprintf(pdf.w, "%d %d obj\n", ref.Number(), ref.Generation())
	if err != nil {
		return nil, err
	}
	err = Format(pdf.w, pdf.GetOptions(), pdf.encryptObject(ref, streamDict))
	if err != nil {
		return nil, err
	}
	_, err = pdf.w.Write([]byte("\nstream\n"))
	if err != nil {
		return nil, err
	}

	sink := &streamSink{
		pdf:    pdf,
		ref:    ref,
		dict:   streamDict,
		length: length,
		start:  pdf.w.pos,
	}
	var w io.WriteCloser = sink
	if pdf.enc != nil {
		w, err = pdf.enc.EncryptStream(ref, w)
		if err != nil {
			return nil, err
		}
	}
	for _, filter := range filters {
		w, err = filter.Encode(pdf.meta.Version, w)
		if err != nil {
			return nil, err
		}
	}

	pdf.inStream = true
	return &teeStreamWriter{w: w, sink: sink}, nil
}

// streamSink receives the final (filtered and encrypted) stream data and
// writes it to the file.  Closing the sink finishes the stream object.
type streamSink struct {
	pdf    *Writer
	ref    Reference
	dict   Dict
	length *Placeholder
	start  int64
	closed bool
}

func (s *streamSink) Write(p []byte) (int, error) {
	return s.pdf.w.Write(p)
}

func (s *streamSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	pdf := s.pdf
	if s.length != nil {
		err := s.length.Set(Integer(pdf.w.pos - s.start))
		if err != nil {
			return err
		}
	}
	_, err := pdf.w.Write([]byte("\nendstream\nendobj\n"))
	if err != nil {
		return err
	}
	pdf.inStream = false
	return nil
}

// teeStreamWriter passes stream data into the filter chain and also
// keeps a plain copy, so that the Writer can be used as a [Getter].
type teeStreamWriter struct {
	w     io.WriteCloser
	sink  *streamSink
	plain bytes.Buffer
}

func (w *teeStreamWriter) Write(p []byte) (int, error) {
	w.plain.Write(p)
	return w.w.Write(p)
}

func (w *teeStreamWriter) Close() error {
	err := w.w.Close()
	if err != nil {
		return err
	}
	err = w.sink.Close()
	if err != nil {
		return err
	}

	// store the plain data for read-back
	dict := w.sink.dict.Clone()
	delete(dict, "Filter")
	delete(dict, "DecodeParms")
	dict["Length"] = Integer(w.plain.Len())
	w.sink.pdf.objects[w.sink.ref] = &Stream{
		Dict: dict,
		R:    bytes.NewReader(w.plain.Bytes()),
	}
	return nil
}

// WriteCompressed writes a number of objects to the file as a compressed
// object stream.
//
// Object streams are only supported for PDF version 1.5 and newer; for
// older versions the objects are written individually.
func (pdf *Writer) WriteCompressed(refs []Reference, objects ...Object) error {
	err := checkCompressed(refs, objects)
	if err != nil {
		return err
	}

	if pdf.meta.Version < V1_5 || pdf.enc != nil {
		// Object streams cannot be used.  Fall back to writing the
		// objects individually.
		for i, obj := range objects {
			err := pdf.Put(refs[i], obj)
			if err != nil {
				return err
			}
		}
		return nil
	}

	sRef := pdf.Alloc()

	head := &bytes.Buffer{}
	body := &bytes.Buffer{}
	for i, obj := range objects {
		if i > 0 {
			body.WriteByte('\n')
		}
		fmt.Fprintf(head, "%d %d\n", refs[i].Number(), body.Len())
		err = Format(body, pdf.GetOptions(), obj)
		if err != nil {
			return err
		}

		pdf.objects[refs[i]] = obj.AsPDF(pdf.GetOptions())
	}

	dict := Dict{
		"Type":  Name("ObjStm"),
		"N":     Integer(len(objects)),
		"First": Integer(head.Len()),
	}
	w, err := pdf.OpenStream(sRef, dict, &FilterCompress{})
	if err != nil {
		return err
	}
	_, err = w.Write(head.Bytes())
	if err != nil {
		return err
	}
	_, err = w.Write(body.Bytes())
	if err != nil {
		return err
	}
	err = w.Close()
	if err != nil {
		return err
	}

	// The xref entries must be set after the stream has been written, so
	// that the entry for the container is not overwritten.
	for i, ref := range refs {
		pdf.xref[ref.Number()] = &xRefEntry{
			Pos:      int64(i),
			InStream: sRef,
		}
	}
	return nil
}

func checkCompressed(refs []Reference, objects []Object) error {
	if len(refs) != len(objects) {
		return errors.New("lengths of refs and objects differ")
	}
	for i, obj := range objects {
		if _, isStream := obj.(*Stream); isStream {
			return errors.New("streams cannot be stored in object streams")
		}
		if refs[i].Generation() != 0 {
			return errors.New("non-zero generation inside object stream")
		}
	}
	return nil
}

// Close writes the trailer and closes the file.
func (pdf *Writer) Close() error {
	if pdf.closed {
		return errors.New("Close() after Close()")
	}
	if pdf.inStream {
		return errors.New("Close() while stream is open")
	}

	if pdf.meta.Catalog.Pages == 0 {
		return errors.New("no pages in PDF document")
	}

	root := pdf.Alloc()
	err := pdf.Put(root, AsDict(pdf.meta.Catalog))
	if err != nil {
		return err
	}

	var info Reference
	if pdf.meta.Info != nil {
		info = pdf.Alloc()
		err = pdf.Put(info, AsDict(pdf.meta.Info))
		if err != nil {
			return err
		}
	}

	var encRef Reference
	if pdf.enc != nil {
		encDict, err := pdf.enc.AsDict(pdf.meta.Version)
		if err != nil {
			return err
		}
		encRef = pdf.Alloc()
		// the encryption dictionary is not encrypted
		enc := pdf.enc
		pdf.enc = nil
		err = pdf.Put(encRef, encDict)
		pdf.enc = enc
		if err != nil {
			return err
		}
	}

	trailer := Dict{
		"Size": Integer(pdf.nextRef + 1),
		"Root": root,
	}
	if info != 0 {
		trailer["Info"] = info
	}
	if encRef != 0 {
		trailer["Encrypt"] = encRef
	}
	if len(pdf.meta.ID) == 2 {
		trailer["ID"] = Array{String(pdf.meta.ID[0]), String(pdf.meta.ID[1])}
	}

	xRefPos := pdf.w.pos
	if pdf.meta.Version < V1_5 {
		err = pdf.writeXRefTable(trailer)
	} else {
		err = pdf.writeXRefStream(trailer)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(pdf.w, "startxref\n%d\n%%%%EOF\n", xRefPos)
	if err != nil {
		return err
	}

	pdf.closed = true
	if pdf.closeFn != nil {
		return pdf.closeFn()
	}
	return nil
}

// writeXRefTable writes a classic cross-reference table followed by the
// trailer dictionary.
func (pdf *Writer) writeXRefTable(trailer Dict) error {
	numbers := sortedObjectNumbers(pdf.xref)

	_, err := pdf.w.Write([]byte("xref\n"))
	if err != nil {
		return err
	}

	for i := 0; i < len(numbers); {
		// find a contiguous run of object numbers
		j := i + 1
		for j < len(numbers) && numbers[j] == numbers[j-1]+1 {
			j++
		}
		_, err = fmt.Fprintf(pdf.w, "%d %d\n", numbers[i], j-i)
		if err != nil {
			return err
		}
		for _, number := range numbers[i:j] {
			entry := pdf.xref[number]
			if entry.IsFree() {
				_, err = fmt.Fprintf(pdf.w, "%010d %05d f\r\n", 0, entry.Generation)
			} else {
				_, err = fmt.Fprintf(pdf.w, "%010d %05d n\r\n", entry.Pos, entry.Generation)
			}
			if err != nil {
				return err
			}
		}
		i = j
	}

	_, err = pdf.w.Write([]byte("trailer\n"))
	if err != nil {
		return err
	}
	err = trailer.PDF(pdf.w)
	if err != nil {
		return err
	}
	_, err = pdf.w.Write([]byte("\n"))
	return err
}

// writeXRefStream writes the cross-reference information as a compressed
// stream object (PDF 1.5 and later).
func (pdf *Writer) writeXRefStream(trailer Dict) error {
	sRef := pdf.Alloc()
	pdf.xref[sRef.Number()] = &xRefEntry{
		Pos:        pdf.w.pos,
		Generation: 0,
	}

	numbers := sortedObjectNumbers(pdf.xref)

	const w1 = 1
	const w2 = 8
	const w3 = 2
	var index Array
	body := &bytes.Buffer{}
	for i := 0; i < len(numbers); {
		j := i + 1
		for j < len(numbers) && numbers[j] == numbers[j-1]+1 {
			j++
		}
		index = append(index, Integer(numbers[i]), Integer(j-i))
		for _, number := range numbers[i:j] {
			entry := pdf.xref[number]
			var tp byte
			var f2 int64
			var f3 uint16
			switch {
			case entry.IsFree():
				tp, f2, f3 = 0, 0, entry.Generation
			case entry.InStream != 0:
				tp = 2
				f2 = int64(entry.InStream.Number())
				f3 = uint16(entry.Pos)
			default:
				tp, f2, f3 = 1, entry.Pos, entry.Generation
			}
			body.WriteByte(tp)
			for shift := (w2 - 1) * 8; shift >= 0; shift -= 8 {
				body.WriteByte(byte(f2 >> shift))
			}
			body.WriteByte(byte(f3 >> 8))
			body.WriteByte(byte(f3))
		}
		i = j
	}

	dict := Dict{
		"Type":  Name("XRef"),
		"Size":  Integer(pdf.nextRef + 1),
		"W":     Array{Integer(w1), Integer(w2), Integer(w3)},
		"Index": index,
	}
	for key, val := range trailer {
		dict[key] = val
	}

	// The xref stream is never encrypted.
	enc := pdf.enc
	pdf.enc = nil
	defer func() { pdf.enc = enc }()

	// We cannot use OpenStream here, since the xref entry for the
	// stream itself has already been set.
	length := NewPlaceholder(pdf, 12)
	dict["Length"] = length
	zip := &FilterCompress{}
	name, parms, err := zip.Info(pdf.meta.Version)
	if err != nil {
		return err
	}
	appendFilter(dict, name, parms)

	_, err = fmt.Fprintf(pdf.w, "%d 0 obj\n", sRef.Number())
	if err != nil {
		return err
	}
	err = Format(pdf.w, pdf.GetOptions(), dict)
	if err != nil {
		return err
	}
	_, err = pdf.w.Write([]byte("\nstream\n"))
	if err != nil {
		return err
	}
	start := pdf.w.pos
	zw, err := zip.Encode(pdf.meta.Version, nopWriteCloser{pdf.w})
	if err != nil {
		return err
	}
	_, err = zw.Write(body.Bytes())
	if err != nil {
		return err
	}
	err = zw.Close()
	if err != nil {
		return err
	}
	err = length.Set(Integer(pdf.w.pos - start))
	if err != nil {
		return err
	}
	_, err = pdf.w.Write([]byte("\nendstream\nendobj\n"))
	return err
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Placeholder can be used to reserve space in a PDF file for a value
// which only becomes known later, e.g. the length of a stream.
type Placeholder struct {
	value []byte
	size  int

	pdf *Writer
	pos []int64
	ref Reference
}

// NewPlaceholder creates a new placeholder for a value which is not yet
// known.  The argument size must be an upper bound for the length of the
// textual representation of the final value.
func NewPlaceholder(pdf *Writer, size int) *Placeholder {
	return &Placeholder{
		size: size,
		pdf:  pdf,
	}
}

// AsPDF implements the [Object] interface.
func (x *Placeholder) AsPDF(OutputOptions) Native { return x }

// PDF implements the [Native] interface.
func (x *Placeholder) PDF(w io.Writer) error {
	// method 1: if the value is already known, write it directly
	if x.value != nil {
		_, err := w.Write(x.value)
		return err
	}

	// method 2: if the underlying writer is seekable, reserve space and
	// patch the value in later
	if _, isSeeker := x.pdf.origW.(io.WriteSeeker); isSeeker {
		x.pos = append(x.pos, x.pdf.w.pos)
		buf := bytes.Repeat([]byte{' '}, x.size)
		_, err := w.Write(buf)
		return err
	}

	// method 3: write the value as an indirect object later
	x.ref = x.pdf.Alloc()
	return x.ref.PDF(w)
}

// Set fills in the value of the placeholder.
func (x *Placeholder) Set(val Native) error {
	if x.ref != 0 {
		return x.pdf.Put(x.ref, val)
	}

	buf := &bytes.Buffer{}
	err := val.PDF(buf)
	if err != nil {
		return err
	}
	if buf.Len() > x.size {
		return &InternalError{
			Err: fmt.Errorf("placeholder value %q too long", buf.String()),
		}
	}
	x.value = buf.Bytes()

	if len(x.pos) == 0 {
		return nil
	}

	// patch the already written bytes
	seeker := x.pdf.origW.(io.WriteSeeker)
	endPos, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	for _, pos := range x.pos {
		_, err = seeker.Seek(pos, io.SeekStart)
		if err != nil {
			return err
		}
		_, err = seeker.Write(x.value)
		if err != nil {
			return err
		}
	}
	_, err = seeker.Seek(endPos, io.SeekStart)
	return err
}

// posWriter counts the number of bytes written.
type posWriter struct {
	w   io.Writer
	pos int64
}

func (w *posWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}

// MetaInfo collects the global information about a PDF file.
type MetaInfo struct {
	// Version is the PDF version used in the file.
	Version Version

	// Catalog is the document catalog of the file.
	Catalog *Catalog

	// Info is the document information dictionary, if present.
	Info *Info

	// ID is the PDF file identifier, if present.
	ID [][]byte

	// Trailer is the trailer dictionary of the file.  This is only used
	// when reading files.
	Trailer Dict
}


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
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// Reader represents a pdf file opened for reading.
type Reader struct {
	// ID holds the two byte strings from the /ID entry of the trailer
	// dictionary, if present.
	ID [][]byte

	// Errors contains problems found in the file, if the reader was
	// opened with ErrorHandlingReport.
	Errors []error

	r    io.ReadSeeker
	size int64

	meta    MetaInfo
	xref    map[uint32]*xRefEntry
	enc     *encryptInfo
	opt     *ReaderOptions
	cache   *lruCache
	level   map[Reference]bool
	closeFn func() error
}

// ReaderOptions provides additional information for opening a PDF file.
type ReaderOptions struct {
	// ReadPassword is called to query passwords for encrypted files.
	// The function is called with the document ID and the number of
	// previous attempts.  An empty return value aborts authentication.
	ReadPassword func(ID []byte, try int) string

	// ErrorHandling determines how the reader deals with malformed
	// files.
	ErrorHandling ErrorHandling
}

// ErrorHandling describes how the reader deals with malformed files.
type ErrorHandling int

// The possible values of ErrorHandling.
const (
	// ErrorHandlingStrict aborts reading on the first problem found.
	ErrorHandlingStrict ErrorHandling = iota

	// ErrorHandlingReport records problems in Reader.Errors but keeps
	// reading where possible.
	ErrorHandlingReport

	// ErrorHandlingRecover silently ignores recoverable problems.
	ErrorHandlingRecover
)

// xRefEntry represents one entry in the cross-reference information of a
// PDF file.
type xRefEntry struct {
	// Pos is the position of the object in the file, or the index of the
	// object within an object stream if InStream is non-zero.  Free
	// objects use Pos == -1.
	Pos int64

	Generation uint16

	// InStream is the object stream containing the object, or 0.
	InStream Reference
}

// IsFree returns true if the entry describes a free object.
func (e *xRefEntry) IsFree() bool {
	return e == nil || e.Pos < 0 && e.InStream == 0
}

// NewReader creates a new Reader for a PDF file.
func NewReader(data io.ReadSeeker, opt *ReaderOptions) (*Reader, error) {
	if opt == nil {
		opt = &ReaderOptions{}
	}

	size, err := data.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		r:     data,
		size:  size,
		opt:   opt,
		cache: newCache(127),
		level: map[Reference]bool{},
	}

	s, err := r.scannerAt(0)
	if err != nil {
		return nil, err
	}
	version, err := s.readHeaderVersion()
	if err != nil {
		return nil, err
	}
	r.meta.Version = version

	xrefPos, err := r.findXRef()
	if err != nil {
		return nil, err
	}
	trailer, err := r.readXRefChain(xrefPos)
	if err != nil {
		return nil, err
	}
	r.meta.Trailer = trailer

	if idObj, ok := trailer["ID"].(Array); ok && len(idObj) >= 2 {
		var id [][]byte
		for _, obj := range idObj[:2] {
			s, ok := obj.(String)
			if !ok {
				id = nil
				break
			}
			id = append(id, []byte(s))
		}
		r.ID = id
		r.meta.ID = id
	}

	// The encryption dictionary must be read before r.enc is set, since
	// its own strings are not encrypted.
	if encObj, present := trailer["Encrypt"]; present && encObj != nil {
		enc, err := r.parseEncryptDict(encObj, opt.ReadPassword)
		if err != nil {
			return nil, err
		}
		r.enc = enc
	}

	catalogDict, err := GetDictTyped(r, trailer["Root"], "Catalog")
	if err != nil {
		return nil, Wrap(err, "document catalog")
	}
	if catalogDict == nil {
		return nil, &MalformedFileError{
			Err: errors.New("missing document catalog"),
		}
	}
	catalog := &Catalog{}
	err = DecodeDict(r, catalog, catalogDict)
	if err != nil && !r.report(err) {
		return nil, Wrap(err, "document catalog")
	}
	r.meta.Catalog = catalog

	if infoDict, err := GetDict(r, trailer["Info"]); err == nil && infoDict != nil {
		info := &Info{}
		if err := DecodeDict(r, info, infoDict); err == nil {
			r.meta.Info = info
		}
	}

	return r, nil
}

// Open opens the named PDF file for reading.  After use, [Reader.Close]
// must be called to close the underlying file.
func Open(fname string, opt *ReaderOptions) (*Reader, error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(fd, opt)
	if err != nil {
		fd.Close()
		return nil, err
	}
	r.closeFn = fd.Close
	return r, nil
}

// Close closes the file underlying the reader, if any.
func (r *Reader) Close() error {
	if r.closeFn != nil {
		return r.closeFn()
	}
	return nil
}

// report deals with a recoverable error, depending on the error handling
// mode.  It returns true if reading should continue.
func (r *Reader) report(err error) bool {
	switch r.opt.ErrorHandling {
	case ErrorHandlingReport:
		r.Errors = append(r.Errors, err)
		return true
	case ErrorHandlingRecover:
		return true
	default:
		return false
	}
}

// GetMeta implements the [Getter] interface.
func (r *Reader) GetMeta() *MetaInfo {
	return &r.meta
}

// AuthenticateOwner tries to authenticate the owner of a document. If a
// password is required, this calls the ReadPassword function specified in
// the [ReaderOptions] struct.
func (r *Reader) AuthenticateOwner() error {
	if r.enc == nil || r.enc.sec.ownerAuthenticated {
		return nil
	}
	_, err := r.enc.sec.GetKey(true)
	return err
}

// OwnerAuthenticated reports whether the owner password has been
// verified.
func (r *Reader) OwnerAuthenticated() bool {
	return r.enc != nil && r.enc.sec.ownerAuthenticated
}

// UserPermissions returns the operations permitted when accessing the
// document with user access.
func (r *Reader) UserPermissions() Perm {
	if r.enc == nil {
		return PermAll
	}
	return r.enc.UserPermissions
}

// scannerAt returns a scanner which reads from the given position in the
// file.
func (r *Reader) scannerAt(pos int64) (*scanner, error) {
	_, err := r.r.Seek(pos, io.SeekStart)
	if err != nil {
		return nil, err
	}
	s := newScanner(r.r, r.safeGetInt, r.enc)
	s.filePos = pos
	return s, nil
}

// safeGetInt resolves indirect references to integers, for use while
// scanning objects.  Objects inside object streams are not available at
// this point, to avoid unbounded recursion.
func (r *Reader) safeGetInt(obj Object) (Integer, error) {
	return getIntegerNoObjStm(r, obj)
}

// Get reads an indirect object from the PDF file.
//
// If the object is not present, nil is returned without an error.
func (r *Reader) Get(ref Reference, canObjStm bool) (Native, error) {
	if r.level[ref] {
		return nil, &MalformedFileError{
			Err: errors.New("loop in indirect references"),
			Loc: []string{"object " + ref.String()},
		}
	}
	r.level[ref] = true
	defer delete(r.level, ref)

	if obj, hit := r.cache.Get(ref); hit {
		native, _ := obj.(Native)
		return native, nil
	}

	entry := r.xref[ref.Number()]
	if entry.IsFree() || entry.Generation != ref.Generation() {
		return nil, nil
	}

	var obj Native
	var err error
	if entry.InStream != 0 {
		if !canObjStm {
			return nil, &MalformedFileError{
				Err: errors.New("object in object stream not allowed here"),
				Loc: []string{"object " + ref.String()},
			}
		}
		obj, err = r.getFromObjectStream(ref.Number(), entry.InStream, entry.Pos)
	} else {
		obj, err = r.getFromFile(ref, entry.Pos)
	}
	if err != nil {
		return nil, err
	}

	if _, isStream := obj.(*Stream); !isStream {
		r.cache.Put(ref, obj)
	}
	return obj, nil
}

func (r *Reader) getFromFile(ref Reference, pos int64) (Native, error) {
	s, err := r.scannerAt(pos)
	if err != nil {
		return nil, err
	}

	number, err := s.ReadInteger()
	if err != nil {
		return nil, err
	}
	generation, err := s.ReadInteger()
	if err != nil {
		return nil, err
	}
	err = s.expectKeyword("obj")
	if err != nil {
		return nil, err
	}
	if uint32(number) != ref.Number() || uint16(generation) != ref.Generation() {
		return nil, &MalformedFileError{
			Err: fmt.Errorf("expected object %s but found %d.%d",
				ref, number, generation),
			Pos: pos,
		}
	}

	s.encRef = ref
	obj, err := s.ReadObject()
	if err != nil {
		return nil, err
	}

	if stm, isStream := obj.(*Stream); isStream {
		if r.enc != nil && !isXRefStream(stm.Dict) {
			stm.crypt = &filterCrypt{enc: r.enc, ref: ref}
		}
	}
	return obj, nil
}

func isXRefStream(dict Dict) bool {
	tp, _ := dict["Type"].(Name)
	return tp == "XRef"
}

func (r *Reader) getFromObjectStream(number uint32, container Reference, idx int64) (Native, error) {
	stm, err := GetStream(r, container)
	if err != nil {
		return nil, err
	}
	if stm == nil {
		return nil, &MalformedFileError{
			Err: errors.New("missing object stream " + container.String()),
		}
	}
	err = CheckDictType(r, stm.Dict, "ObjStm")
	if err != nil {
		return nil, err
	}

	n, err := GetInteger(r, stm.Dict["N"])
	if err != nil {
		return nil, err
	}
	first, err := GetInteger(r, stm.Dict["First"])
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= int64(n) || first < 0 {
		return nil, &MalformedFileError{
			Err: errors.New("invalid object stream index"),
		}
	}

	data, err := ReadAll(r, stm)
	if err != nil {
		return nil, err
	}

	s := newScanner(bytes.NewReader(data), r.safeGetInt, nil)
	var offset Integer
	found := false
	for i := int64(0); i < int64(n); i++ {
		num, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		off, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		if i == idx {
			if uint32(num) != number {
				return nil, &MalformedFileError{
					Err: fmt.Errorf("object stream entry mismatch: expected %d, got %d",
						number, num),
				}
			}
			offset = off
			found = true
			break
		}
	}
	if !found {
		return nil, &MalformedFileError{
			Err: errors.New("object not found in object stream"),
		}
	}

	start := int64(first) + int64(offset)
	if start < 0 || start > int64(len(data)) {
		return nil, &MalformedFileError{
			Err: errors.New("invalid offset in object stream"),
		}
	}
	s = newScanner(bytes.NewReader(data[start:]), r.safeGetInt, nil)
	return s.ReadObject()
}

// findXRef locates the most recent cross-reference section of the file
// and returns its position.
func (r *Reader) findXRef() (int64, error) {
	pos, err := r.lastOccurence("startxref")
	if err != nil {
		return 0, err
	}
	s, err := r.scannerAt(pos)
	if err != nil {
		return 0, err
	}
	err = s.expectKeyword("startxref")
	if err != nil {
		return 0, err
	}
	start, err := s.ReadInteger()
	if err != nil {
		return 0, err
	}
	if start < 0 || int64(start) >= r.size {
		return 0, &MalformedFileError{
			Err: errors.New("invalid startxref position"),
		}
	}
	return int64(start), nil
}

// lastOccurence returns the position of the last occurence of pat in the
// file.
func (r *Reader) lastOccurence(pat string) (int64, error) {
	// read the file backwards in overlapping blocks
	const blockSize = 1024

	buf := make([]byte, blockSize+len(pat)-1)
	for end := r.size; end > 0; {
		start := end - blockSize
		if start < 0 {
			start = 0
		}
		stop := start + int64(len(buf))
		if stop > r.size {
			stop = r.size
		}

		_, err := r.r.Seek(start, io.SeekStart)
		if err != nil {
			return 0, err
		}
		_, err = io.ReadFull(r.r, buf[:stop-start])
		if err != nil {
			return 0, err
		}

		idx := bytes.LastIndex(buf[:stop-start], []byte(pat))
		if idx >= 0 {
			return start + int64(idx), nil
		}

		end = start
	}
	return 0, &MalformedFileError{
		Err: errors.New(pat + " not found"),
	}
}

// readXRefChain reads the chain of cross-reference sections, following
// /Prev entries, and returns the merged trailer dictionary.
func (r *Reader) readXRefChain(start int64) (Dict, error) {
	r.xref = map[uint32]*xRefEntry{}
	trailer := Dict{}

	seen := map[int64]bool{}
	todo := []int64{start}
	for len(todo) > 0 && len(seen) < 100 {
		pos := todo[0]
		todo = todo[1:]
		if seen[pos] || pos < 0 || pos >= r.size {
			continue
		}
		seen[pos] = true

		sectionTrailer, err := r.readXRefSection(pos)
		if err != nil {
			return nil, err
		}

		for key, val := range sectionTrailer {
			if _, exists := trailer[key]; !exists {
				trailer[key] = val
			}
		}

		// hybrid files point to an additional xref stream
		if x, ok := sectionTrailer["XRefStm"].(Integer); ok {
			todo = append(todo, int64(x))
		}
		if prev, ok := sectionTrailer["Prev"].(Integer); ok {
			todo = append(todo, int64(prev))
		}
	}
	return trailer, nil
}

// readXRefSection reads one cross-reference section (either a classic
// table or an xref stream) and returns the associated trailer dictionary.
// Entries are only added for object numbers not yet seen, so that updates
// take precedence over the original data.
func (r *Reader) readXRefSection(pos int64) (Dict, error) {
	s, err := r.scannerAt(pos)
	if err != nil {
		return nil, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}

	head, err := s.peekN(4)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if bytes.Equal(head, []byte("xref")) {
		s.skip(4)
		return r.readXRefTable(s)
	}
	return r.readXRefStream(s)
}

func (r *Reader) readXRefTable(s *scanner) (Dict, error) {
	for {
		err := s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}

		c, err := s.peek()
		if err != nil {
			return nil, err
		}
		if c < '0' || c > '9' {
			break
		}

		start, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		count, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		if start < 0 || count < 0 || count > 1<<24 {
			return nil, s.malformed("invalid xref subsection")
		}

		for i := int64(0); i < int64(count); i++ {
			number := uint32(start + Integer(i))

			offset, err := s.ReadInteger()
			if err != nil {
				return nil, err
			}
			generation, err := s.ReadInteger()
			if err != nil {
				return nil, err
			}
			err = s.SkipWhiteSpace()
			if err != nil {
				return nil, err
			}
			c, err := s.next()
			if err != nil {
				return nil, err
			}

			if _, exists := r.xref[number]; exists {
				continue
			}
			switch c {
			case 'n':
				r.xref[number] = &xRefEntry{
					Pos:        int64(offset),
					Generation: uint16(generation),
				}
			case 'f':
				r.xref[number] = &xRefEntry{Pos: -1}
			default:
				return nil, s.malformed("invalid xref entry")
			}
		}
	}

	err := s.expectKeyword("trailer")
	if err != nil {
		return nil, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}
	return s.readDict()
}

func (r *Reader) readXRefStream(s *scanner) (Dict, error) {
	// skip over "num gen obj"
	if _, err := s.ReadInteger(); err != nil {
		return nil, err
	}
	if _, err := s.ReadInteger(); err != nil {
		return nil, err
	}
	err := s.expectKeyword("obj")
	if err != nil {
		return nil, err
	}

	obj, err := s.ReadObject()
	if err != nil {
		return nil, err
	}
	stm, ok := obj.(*Stream)
	if !ok {
		return nil, s.malformed("xref stream expected")
	}
	err = CheckDictType(nil, stm.Dict, "XRef")
	if err != nil {
		return nil, err
	}

	size, err := GetInteger(nil, stm.Dict["Size"])
	if err != nil {
		return nil, err
	}

	wObj, _ := stm.Dict["W"].(Array)
	if len(wObj) < 3 {
		return nil, s.malformed("invalid /W entry in xref stream")
	}
	var w [3]int
	for i := range w {
		wi, ok := wObj[i].(Integer)
		if !ok || wi < 0 || wi > 8 {
			return nil, s.malformed("invalid /W entry in xref stream")
		}
		w[i] = int(wi)
	}

	var index []Integer
	if idxObj, ok := stm.Dict["Index"].(Array); ok {
		for _, x := range idxObj {
			xi, ok := x.(Integer)
			if !ok {
				return nil, s.malformed("invalid /Index entry in xref stream")
			}
			index = append(index, xi)
		}
	} else {
		index = []Integer{0, size}
	}
	if len(index)%2 != 0 {
		return nil, s.malformed("invalid /Index entry in xref stream")
	}

	data, err := ReadAll(nil, stm)
	if err != nil {
		return nil, err
	}

	entrySize := w[0] + w[1] + w[2]
	if entrySize == 0 {
		return nil, s.malformed("invalid /W entry in xref stream")
	}
	readField := func(buf []byte, width int, def int64) ([]byte, int64) {
		if width == 0 {
			return buf, def
		}
		var val int64
		for i := 0; i < width; i++ {
			val = val<<8 | int64(buf[i])
		}
		return buf[width:], val
	}

	buf := data
	for k := 0; k+1 < len(index); k += 2 {
		start := index[k]
		count := index[k+1]
		for i := int64(0); i < int64(count); i++ {
			if len(buf) < entrySize {
				return nil, s.malformed("truncated xref stream")
			}
			var tp, f2, f3 int64
			buf, tp = readField(buf, w[0], 1)
			buf, f2 = readField(buf, w[1], 0)
			buf, f3 = readField(buf, w[2], 0)

			num := uint32(int64(start) + i)
			if _, exists := r.xref[num]; exists {
				continue
			}
			switch tp {
			case 0:
				r.xref[num] = &xRefEntry{Pos: -1}
			case 1:
				r.xref[num] = &xRefEntry{
					Pos:        f2,
					Generation: uint16(f3),
				}
			case 2:
				r.xref[num] = &xRefEntry{
					Pos:      f3,
					InStream: NewReference(uint32(f2), 0),
				}
			}
		}
	}

	return stm.Dict, nil
}

// getSize determines the size of the data available from r.
func getSize(r io.ReaderAt) (int64, error) {
	switch x := r.(type) {
	case interface{ Size() int64 }:
		return x.Size(), nil
	case interface{ Stat() (os.FileInfo, error) }:
		fi, err := x.Stat()
		if err != nil {
			return 0, err
		}
		return fi.Size(), nil
	}

	// Find the size using bisection.
	probe := func(pos int64) bool {
		// check whether the byte at position pos exists
		var buf [1]byte
		n, _ := r.ReadAt(buf[:], pos)
		return n > 0
	}

	if !probe(0) {
		return 0, nil
	}
	lo := int64(1) // size > lo-1, i.e. size >= lo
	hi := int64(1024)
	for probe(hi - 1) {
		lo = hi
		hi *= 2
	}
	// now size >= lo and size < hi
	for lo < hi {
		mid := (lo + hi) / 2
		if probe(mid) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}

// sortedObjectNumbers returns the allocated object numbers in increasing
// order.
func sortedObjectNumbers(xref map[uint32]*xRefEntry) []uint32 {
	numbers := make([]uint32, 0, len(xref))
	for n := range xref {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool {
		return numbers[i] < numbers[j]
	})
	return numbers
}

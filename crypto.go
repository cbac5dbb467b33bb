// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2023  the Archivekit Authors
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

// This file implements the encryption and decryption of strings and
// streams.  The key derivation lives in security.go; here the keys are
// applied using RC4 or AES-CBC, depending on the crypt filter in use.

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rc4"
	"errors"
	"fmt"
	"io"
)

// encryptInfo describes how the contents of a PDF file are encrypted:
// the security handler holding the keys, and one crypt filter each for
// strings, streams, and embedded files.
type encryptInfo struct {
	sec *stdSecHandler

	strF *cryptFilter // strings
	stmF *cryptFilter // streams
	efF  *cryptFilter // embedded files

	UserPermissions Perm
}

// parseEncryptDict reads the /Encrypt dictionary of a PDF file.
func (r *Reader) parseEncryptDict(encObj Object, readPwd func([]byte, int) string) (*encryptInfo, error) {
	enc, err := GetDict(r, encObj)
	if err != nil {
		return nil, err
	}
	if len(r.ID) != 2 {
		return nil, &MalformedFileError{Err: errors.New("found Encrypt but no ID")}
	}

	res := &encryptInfo{}

	filter, err := GetName(r, enc["Filter"])
	if err != nil {
		return nil, err
	}
	V, err := GetInteger(r, enc["V"])
	if err != nil {
		return nil, err
	}

	var keyBytes int
	switch V {
	case 1:
		cf := &cryptFilter{Cipher: cipherRC4, Length: 40}
		res.stmF = cf
		res.strF = cf
		res.efF = cf
		keyBytes = 5
	case 2:
		cf := &cryptFilter{Cipher: cipherRC4, Length: 40}
		if obj, ok := enc["Length"].(Integer); ok {
			cf.Length = int(obj)
			if cf.Length < 40 || cf.Length > 128 || cf.Length%8 != 0 {
				return nil, &MalformedFileError{
					Err: fmt.Errorf("invalid Length=%d", cf.Length),
				}
			}
		}
		res.stmF = cf
		res.strF = cf
		res.efF = cf
		keyBytes = cf.Length / 8
	case 4, 5:
		CF, _ := enc["CF"].(Dict)
		if obj, ok := enc["StmF"].(Name); ok {
			res.stmF, err = getCryptFilter(obj, CF)
			if err != nil {
				return nil, Wrap(err, "StmF")
			}
		}
		if obj, ok := enc["StrF"].(Name); ok {
			res.strF, err = getCryptFilter(obj, CF)
			if err != nil {
				return nil, Wrap(err, "StrF")
			}
		}
		res.efF = res.stmF // default
		if obj, ok := enc["EFF"].(Name); ok {
			res.efF, err = getCryptFilter(obj, CF)
			if err != nil {
				return nil, Wrap(err, "EFF")
			}
		}
		keyBytes = 16
		if V == 5 {
			keyBytes = 32
		}
	default:
		return nil, &MalformedFileError{
			Err: fmt.Errorf("invalid V=%d", V),
		}
	}

	if filter != "Standard" {
		return nil, &MalformedFileError{
			Err: fmt.Errorf("unsupported Filter=%s", filter),
		}
	}
	sec, err := openStdSecHandler(enc, keyBytes, r.ID[0], readPwd)
	if err != nil {
		return nil, Wrap(err, "standard security handler")
	}
	res.sec = sec
	res.UserPermissions = stdSecPToPerm(sec.R, sec.P)

	return res, nil
}

// AsDict builds the /Encrypt dictionary for writing.
func (enc *encryptInfo) AsDict(version Version) (Dict, error) {
	// All three crypt filters must agree; mixed schemes are not
	// supported when writing.
	length := -1
	var cipher cipherType
	for _, cf := range []*cryptFilter{enc.stmF, enc.strF, enc.efF} {
		if cf.Length%8 != 0 {
			return nil, errors.New("invalid key length")
		}
		if length < 0 {
			length = cf.Length
			cipher = cf.Cipher
			continue
		}
		if length != cf.Length {
			return nil, errors.New("not implemented: mixed key length")
		}
		if cipher != cf.Cipher {
			return nil, errors.New("not implemented: mixed key ciphers")
		}
	}

	dict := Dict{
		"Filter": Name("Standard"),
	}
	switch {
	case cipher == cipherAES && length == 256 && version >= V2_0:
		dict["V"] = Integer(5)
		dict["StmF"] = Name("StdCF")
		dict["StrF"] = Name("StdCF")
		dict["Length"] = Integer(256)
		dict["CF"] = Dict{
			"StdCF": Dict{"Length": Integer(256), "CFM": Name("AESV3")},
		}
	case cipher == cipherAES && length == 128 && version >= V1_6:
		dict["V"] = Integer(4)
		dict["StmF"] = Name("StdCF")
		dict["StrF"] = Name("StdCF")
		dict["CF"] = Dict{
			"StdCF": Dict{"Length": Integer(128), "CFM": Name("AESV2")},
		}
	case cipher == cipherRC4 && length == 40 && version >= V1_1:
		dict["V"] = Integer(1)
	case cipher == cipherRC4 && version >= V1_4:
		dict["V"] = Integer(2)
		dict["Length"] = Integer(length)
	default:
		return nil, errors.New("no supported encryption scheme found")
	}

	sec := enc.sec
	dict["R"] = Integer(sec.R)
	dict["O"] = String(sec.O)
	dict["U"] = String(sec.U)
	dict["P"] = Integer(int32(sec.P))
	if sec.unencryptedMetaData {
		dict["EncryptMetadata"] = Boolean(false)
	}
	if sec.R == 6 {
		dict["OE"] = String(sec.OE)
		dict["UE"] = String(sec.UE)
		dict["Perms"] = String(sec.Perms)
	}

	return dict, nil
}

// EncryptBytes encrypts a string (Algorithm 1).  The contents of buf
// may be modified, and buf may be returned.
func (enc *encryptInfo) EncryptBytes(ref Reference, buf []byte) ([]byte, error) {
	cf := enc.strF
	if cf == nil {
		return buf, nil
	}
	key, err := enc.sec.KeyForRef(cf, ref)
	if err != nil {
		return nil, err
	}

	switch cf.Cipher {
	case cipherAES:
		// layout: iv | ciphertext of (data | padding)
		n := len(buf)
		nPad := 16 - n%16
		out := make([]byte, 16+n+nPad)

		iv := out[:16]
		_, err = io.ReadFull(rand.Reader, iv)
		if err != nil {
			return nil, err
		}
		c, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		cbc := cipher.NewCBCEncrypter(c, iv)
		cbc.CryptBlocks(out[16:], buf[:n+nPad-16])
		// the final block contains the padding
		copy(out[n+nPad:], buf[n+nPad-16:])
		for i := 16 + n; i < len(out); i++ {
			out[i] = byte(nPad)
		}
		cbc.CryptBlocks(out[n+nPad:], out[n+nPad:])
		return out, nil
	case cipherRC4:
		c, err := rc4.NewCipher(key)
		if err != nil {
			return nil, err
		}
		c.XORKeyStream(buf, buf)
		return buf, nil
	default:
		panic("unknown cipher")
	}
}

// DecryptBytes decrypts a string (Algorithm 1).  The contents of buf
// may be modified, and buf may be returned.
func (enc *encryptInfo) DecryptBytes(ref Reference, buf []byte) ([]byte, error) {
	cf := enc.strF
	if cf == nil {
		return buf, nil
	}
	key, err := enc.sec.KeyForRef(cf, ref)
	if err != nil {
		return nil, err
	}

	switch cf.Cipher {
	case cipherAES:
		if len(buf) < 32 {
			return nil, errCorrupted
		}
		c, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		iv := buf[:16]
		cipher.NewCBCDecrypter(c, iv).CryptBlocks(buf[16:], buf[16:])
		nPad := int(buf[len(buf)-1])
		if nPad < 1 || nPad > 16 {
			return nil, errCorrupted
		}
		return buf[16 : len(buf)-nPad], nil
	case cipherRC4:
		c, _ := rc4.NewCipher(key)
		c.XORKeyStream(buf, buf)
		return buf, nil
	default:
		panic("unknown cipher")
	}
}

// EncryptStream wraps w so that data written is encrypted.
func (enc *encryptInfo) EncryptStream(ref Reference, w io.WriteCloser) (io.WriteCloser, error) {
	cf := enc.stmF
	if cf == nil {
		return w, nil
	}
	key, err := enc.sec.KeyForRef(cf, ref)
	if err != nil {
		return nil, err
	}

	switch cf.Cipher {
	case cipherAES:
		c, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		iv := make([]byte, 16)
		_, err = io.ReadFull(rand.Reader, iv)
		if err != nil {
			return nil, err
		}
		_, err = w.Write(iv)
		if err != nil {
			return nil, err
		}
		return &encryptWriter{
			w:   w,
			cbc: cipher.NewCBCEncrypter(c, iv),
			buf: iv,
		}, nil
	case cipherRC4:
		c, _ := rc4.NewCipher(key)
		return &cipher.StreamWriter{S: c, W: w}, nil
	default:
		panic("unknown cipher")
	}
}

// DecryptStream wraps r so that data read is decrypted.
func (enc *encryptInfo) DecryptStream(ref Reference, r io.Reader) (io.Reader, error) {
	cf := enc.stmF
	if cf == nil {
		return r, nil
	}
	key, err := enc.sec.KeyForRef(cf, ref)
	if err != nil {
		return nil, err
	}

	switch cf.Cipher {
	case cipherRC4:
		c, _ := rc4.NewCipher(key)
		return &cipher.StreamReader{S: c, R: r}, nil
	case cipherAES:
		buf := make([]byte, 32)
		iv := buf[:16]
		_, err := io.ReadFull(r, iv)
		if err != nil {
			return nil, err
		}
		c, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return &decryptReader{
			cbc: cipher.NewCBCDecrypter(c, iv),
			r:   r,
			buf: buf,
		}, nil
	default:
		panic("unknown cipher")
	}
}

// encryptWriter encrypts stream data block by block in CBC mode.  The
// padding block is appended on Close.
type encryptWriter struct {
	w   io.WriteCloser
	cbc cipher.BlockMode
	buf []byte // length cbc.BlockSize()
	pos int
}

func (w *encryptWriter) Write(p []byte) (int, error) {
	n := 0
	for len(p) > 0 {
		k := copy(w.buf[w.pos:], p)
		n += k
		w.pos += k
		p = p[k:]

		if w.pos >= len(w.buf) {
			w.cbc.CryptBlocks(w.buf, w.buf)
			_, err := w.w.Write(w.buf)
			if err != nil {
				return n, err
			}
			w.pos = 0
		}
	}
	return n, nil
}

func (w *encryptWriter) Close() error {
	kPad := 16 - w.pos
	for i := w.pos; i < len(w.buf); i++ {
		w.buf[i] = byte(kPad)
	}
	w.cbc.CryptBlocks(w.buf, w.buf)
	_, err := w.w.Write(w.buf)
	if err != nil {
		return err
	}
	return w.w.Close()
}

// decryptReader decrypts stream data in CBC mode.  The final block is
// held back until EOF, since it may contain the padding.
type decryptReader struct {
	cbc      cipher.BlockMode
	r        io.Reader
	buf      []byte
	ready    []byte
	reserved []byte
}

func (r *decryptReader) Read(p []byte) (int, error) {
	if len(r.ready) == 0 {
		k := copy(r.buf, r.reserved)
		for k <= 16 && r.r != nil {
			n, err := r.r.Read(r.buf[k:])
			k += n
			if err == io.EOF {
				r.r = nil
				if k%16 != 0 {
					return 0, errCorrupted
				}
			} else if err != nil {
				return 0, err
			}
		}

		if k < 16 {
			if k > 0 {
				panic("inconsistent buffer state")
			}
			return 0, io.EOF
		}

		l := k
		if r.r != nil {
			// hold back the last block, it may contain the padding
			l--
		}
		l -= l % 16
		r.ready = r.buf[:l]
		r.reserved = r.buf[l:k]
		r.cbc.CryptBlocks(r.ready, r.ready)

		if r.r == nil {
			if l != k {
				panic("inconsistent buffer state")
			}
			nPad := int(r.buf[l-1])
			if nPad < 1 || nPad > 16 || nPad > l {
				return 0, errCorrupted
			}
			r.ready = r.ready[:l-nPad]
		}
	}

	n := copy(p, r.ready)
	r.ready = r.ready[n:]
	return n, nil
}

// cryptFilter describes one crypt filter from the /CF dictionary.
type cryptFilter struct {
	Cipher cipherType

	// Length is the key length in bits.
	Length int
}

func (cf *cryptFilter) String() string {
	return fmt.Sprintf("%s-%d", cf.Cipher, cf.Length)
}

func getCryptFilter(name Name, CF Dict) (*cryptFilter, error) {
	if name == "Identity" {
		return nil, nil
	}
	if name != "StdCF" {
		return nil, errors.New("unknown crypt filter " + string(name))
	}
	cfDict, ok := CF[name].(Dict)
	if !ok {
		return nil, errors.New("missing " + string(name) + " entry in CF dict")
	}

	switch cfDict["CFM"] {
	case Name("V2"):
		return &cryptFilter{Cipher: cipherRC4, Length: 128}, nil
	case Name("AESV2"):
		return &cryptFilter{Cipher: cipherAES, Length: 128}, nil
	case Name("AESV3"):
		return &cryptFilter{Cipher: cipherAES, Length: 256}, nil
	default:
		return nil, errors.New("unknown cipher")
	}
}

// cipherType denotes the cipher used in (parts of) a PDF file.
type cipherType int

const (
	// cipherUnknown indicates that the encryption scheme has not yet
	// been determined.
	cipherUnknown cipherType = iota

	// cipherRC4 denotes RC4 encryption (CFM value V2).
	cipherRC4

	// cipherAES denotes AES encryption in CBC mode (CFM values AESV2
	// and AESV3).
	cipherAES
)

func (c cipherType) String() string {
	switch c {
	case cipherUnknown:
		return "unknown"
	case cipherRC4:
		return "RC4"
	case cipherAES:
		return "AES"
	default:
		return fmt.Sprintf("cipher#%d", c)
	}
}

// filterCrypt applies the document encryption as a transparent stream
// filter.  It never appears in a stream dictionary: [DecodeStream]
// inserts it before the regular filters, so that Stream.R can stay the
// raw, seekable data from the file and streams can be decoded more
// than once.
type filterCrypt struct {
	enc *encryptInfo
	ref Reference
}

// Info implements the [Filter] interface.
func (f *filterCrypt) Info(Version) (Name, Dict, error) {
	return "", nil, nil
}

// Encode implements the [Filter] interface.
func (f *filterCrypt) Encode(_ Version, w io.WriteCloser) (io.WriteCloser, error) {
	return f.enc.EncryptStream(f.ref, w)
}

// Decode implements the [Filter] interface.
func (f *filterCrypt) Decode(_ Version, r io.Reader) (io.ReadCloser, error) {
	decrypted, err := f.enc.DecryptStream(f.ref, r)
	if err != nil {
		return nil, err
	}
	if rc, ok := decrypted.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(decrypted), nil
}

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

// This file implements the PDF standard security handler (section
// 7.6.3 of ISO 32000-1:2008 for revisions up to 4, section 7.6.4 of
// ISO 32000-2:2020 for revision 6).  The handler derives the file
// encryption key from a pair of passwords: the user password grants
// access to the document contents, the owner password additionally
// lifts the usage restrictions recorded in the P flags.

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"crypto/rc4"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"hash"

	"github.com/xdg-go/stringprep"
)

type stdSecHandler struct {
	// R is the revision of the standard security handler in use.
	// Supported values are 2, 3, 4, and 6.
	R int

	// ID is the first element of the file identifier.
	ID []byte

	// O and U are derived from the owner and user passwords; they
	// allow to verify entered passwords and, for R <= 4, to derive the
	// file encryption key.
	O []byte
	U []byte

	// OE, UE and Perms are only used for revision 6, where the file
	// encryption key is random and stored in encrypted form.
	OE    []byte
	UE    []byte
	Perms []byte

	// P records which operations are permitted with user access.
	P uint32

	keyBytes int

	readPwd func([]byte, int) string
	key     []byte

	// unencryptedMetaData is the negation of /EncryptMetadata, so that
	// the Go zero value matches the PDF default of true.
	unencryptedMetaData bool

	ownerAuthenticated bool
}

// openStdSecHandler initializes the security handler from the
// encryption dictionary of an existing file.
func openStdSecHandler(enc Dict, keyBytes int, ID []byte, readPwd func([]byte, int) string) (*stdSecHandler, error) {
	R, ok := enc["R"].(Integer)
	if !ok || R < 2 || R == 5 || R > 6 {
		return nil, errors.New("invalid Encrypt.R")
	}
	ouLength := 32
	if R == 6 {
		ouLength = 48
	}

	// V has been validated by the caller
	V := enc["V"].(Integer)

	O, ok := enc["O"].(String)
	if !ok || len(O) != ouLength {
		return nil, errors.New("invalid Encrypt.O")
	}
	U, ok := enc["U"].(String)
	if !ok || len(U) != ouLength {
		return nil, errors.New("invalid Encrypt.U")
	}
	P, ok := enc["P"].(Integer)
	if !ok {
		return nil, errors.New("invalid Encrypt.P")
	}

	emd := true
	if obj, ok := enc["EncryptMetaData"].(Boolean); ok && V >= 4 {
		emd = bool(obj)
	}

	sec := &stdSecHandler{
		ID:       ID,
		keyBytes: keyBytes,
		readPwd:  readPwd,

		R: int(R),
		O: []byte(O),
		U: []byte(U),
		P: uint32(P),

		unencryptedMetaData: !emd,
	}

	if R == 6 {
		OE, ok := enc["OE"].(String)
		if !ok || len(OE) != 32 {
			return nil, errors.New("invalid Encrypt.OE")
		}
		UE, ok := enc["UE"].(String)
		if !ok || len(UE) != 32 {
			return nil, errors.New("invalid Encrypt.UE")
		}
		Perms, ok := enc["Perms"].(String)
		if !ok || len(Perms) != 16 {
			return nil, errors.New("invalid Encrypt.Perms")
		}
		sec.OE = []byte(OE)
		sec.UE = []byte(UE)
		sec.Perms = []byte(Perms)
	}

	return sec, nil
}

// createStdSecHandler sets up a pre-authenticated security handler for
// writing a new file.
func createStdSecHandler(id []byte, userPwd, ownerPwd string, perm Perm, length, V int) (*stdSecHandler, error) {
	if ownerPwd == "" {
		ownerPwd = userPwd
	}

	var R int
	switch {
	case V < 2 && perm.canR2():
		R = 2
	case V <= 3:
		R = 3
	case V == 4:
		R = 4
	case V == 5:
		R = 6
	default:
		return nil, &MalformedFileError{
			Err: errors.New("invalid Encrypt.V"),
		}
	}

	sec := &stdSecHandler{
		ID:       id,
		keyBytes: length / 8,
		R:        R,
		P:        stdSecPermToP(perm),

		ownerAuthenticated: true,
	}

	if R <= 4 {
		paddedUserPwd, err := padPasswd(userPwd)
		if err != nil {
			return nil, err
		}
		paddedOwnerPwd, err := padPasswd(ownerPwd)
		if err != nil {
			return nil, err
		}
		sec.O, err = sec.computeO(paddedUserPwd, paddedOwnerPwd)
		if err != nil {
			return nil, err
		}
		key := sec.computeFileEncryptionKey(paddedUserPwd)
		sec.U = sec.computeU(key)
		sec.key = key
		return sec, nil
	}

	// revision 6: the file encryption key is random
	utf8UserPwd, err := utf8Passwd(userPwd)
	if err != nil {
		return nil, err
	}
	utf8OwnerPwd, err := utf8Passwd(ownerPwd)
	if err != nil {
		return nil, err
	}
	sec.key = make([]byte, 32)
	_, err = rand.Read(sec.key)
	if err != nil {
		return nil, err
	}
	sec.U, sec.UE, err = sec.computeUAndUE(utf8UserPwd)
	if err != nil {
		return nil, err
	}
	sec.O, sec.OE, err = sec.computeOAndOE(utf8OwnerPwd)
	if err != nil {
		return nil, err
	}
	sec.Perms = sec.computePerms(sec.key)
	return sec, nil
}

// KeyForRef returns the key used to encrypt the strings and streams of
// one indirect object (Algorithm 1).  For revision 6 all objects share
// the file encryption key.
func (sec *stdSecHandler) KeyForRef(cf *cryptFilter, ref Reference) ([]byte, error) {
	key, err := sec.GetKey(false)
	if err != nil {
		return nil, err
	}
	if sec.R == 6 {
		return key, nil
	}

	var extra [9]byte
	binary.LittleEndian.PutUint32(extra[0:], ref.Number())
	binary.LittleEndian.PutUint32(extra[4:], uint32(ref.Generation()))

	h := md5.New()
	h.Write(key)
	h.Write(extra[:3])
	h.Write(extra[4:6])
	if cf.Cipher == cipherAES {
		h.Write([]byte("sAlT"))
	}
	l := sec.keyBytes + 5
	if l > 16 {
		l = 16
	}
	return h.Sum(nil)[:l], nil
}

// GetKey returns the file encryption key, asking for passwords via the
// readPwd callback until one verifies.  If the owner password was
// supplied, ownerAuthenticated is set in addition to returning the
// key.
func (sec *stdSecHandler) GetKey(needOwner bool) ([]byte, error) {
	if sec.key != nil && (sec.ownerAuthenticated || !needOwner) {
		return sec.key, nil
	}

	passwd := ""
	try := 0
	for {
		err := sec.tryPasswd(passwd, needOwner)
		if err == nil {
			return sec.key, nil
		}

		if sec.readPwd != nil {
			passwd = sec.readPwd(sec.ID, try)
			try++
		} else {
			passwd = ""
		}
		if passwd == "" {
			return nil, &AuthenticationError{sec.ID}
		}
	}
}

// tryPasswd verifies one password candidate, first as the owner and
// then, unless owner access is required, as the user password.
func (sec *stdSecHandler) tryPasswd(passwd string, needOwner bool) error {
	if sec.R < 6 {
		padded, err := padPasswd(passwd)
		if err != nil {
			return err
		}
		err = sec.authenticateOwner(padded)
		if err == nil {
			return nil
		}
		if !needOwner {
			err = sec.authenticateUser(padded)
		}
		return err
	}

	prepared, err := utf8Passwd(passwd)
	if err != nil {
		return err
	}
	err = sec.authenticateOwner6(prepared)
	if err == nil {
		return nil
	}
	if !needOwner {
		err = sec.authenticateUser6(prepared)
	}
	return err
}

// md5x50 computes the 50-fold iterated MD5 hash used by revision 3 and
// later, truncating to the key length in each round.
func (sec *stdSecHandler) md5x50(sum []byte) []byte {
	h := md5.New()
	for i := 0; i < 50; i++ {
		h.Reset()
		h.Write(sum[:sec.keyBytes])
		sum = h.Sum(sum[:0])
	}
	return sum
}

// computeFileEncryptionKey derives the file encryption key from the
// padded user password (Algorithm 2, for R <= 4).
func (sec *stdSecHandler) computeFileEncryptionKey(paddedUserPwd []byte) []byte {
	var pBytes [4]byte
	binary.LittleEndian.PutUint32(pBytes[:], sec.P)

	h := md5.New()
	h.Write(paddedUserPwd)
	h.Write(sec.O)
	h.Write(pBytes[:])
	h.Write(sec.ID)
	if sec.unencryptedMetaData && sec.R >= 4 {
		h.Write([]byte{255, 255, 255, 255})
	}
	key := h.Sum(nil)

	if sec.R >= 3 {
		key = sec.md5x50(key)
	}
	return key[:sec.keyBytes]
}

// rc4SweepKeys applies RC4 to buf 19 times, with the key bytes XOR'ed
// with the round number i = from, ..., to (Algorithms 3 to 7).
func rc4SweepKeys(buf, baseKey []byte, from, to int) {
	step := 1
	if from > to {
		step = -1
	}
	key := make([]byte, len(baseKey))
	for i := from; ; i += step {
		for j := range key {
			key[j] = baseKey[j] ^ byte(i)
		}
		c, _ := rc4.NewCipher(key)
		c.XORKeyStream(buf, buf)
		if i == to {
			break
		}
	}
}

// computeO derives the owner entry from the two padded passwords
// (Algorithm 3).
func (sec *stdSecHandler) computeO(paddedUserPwd, paddedOwnerPwd []byte) ([]byte, error) {
	h := md5.New()
	h.Write(paddedOwnerPwd)
	sum := h.Sum(nil)
	if sec.R >= 3 {
		// the truncation to keyBytes is not in the spec, but files in
		// the wild require it
		sum = sec.md5x50(sum)
	}
	rc4key := sum[:sec.keyBytes]

	O := make([]byte, 32)
	c, _ := rc4.NewCipher(rc4key)
	c.XORKeyStream(O, paddedUserPwd)
	if sec.R >= 3 {
		rc4SweepKeys(O, rc4key, 1, 19)
	}
	return O, nil
}

// computeU derives the user entry from the file encryption key
// (Algorithms 4 and 5).
func (sec *stdSecHandler) computeU(fileEncryptionKey []byte) []byte {
	U := make([]byte, 32)
	switch sec.R {
	case 2:
		c, _ := rc4.NewCipher(fileEncryptionKey)
		c.XORKeyStream(U, passwdPad)
	case 3, 4:
		h := md5.New()
		h.Write(passwdPad)
		h.Write(sec.ID)
		U = h.Sum(U[:0])
		c, _ := rc4.NewCipher(fileEncryptionKey)
		c.XORKeyStream(U, U)
		rc4SweepKeys(U, fileEncryptionKey, 1, 19)

		// only the first 16 bytes are significant, the tail is
		// arbitrary padding
		U = append(U[:16], make([]byte, 16)...)
	default:
		panic("invalid security handler revision")
	}
	return U
}

// authenticateUser verifies the padded user password (Algorithm 6).
func (sec *stdSecHandler) authenticateUser(paddedUserPwd []byte) error {
	key := sec.computeFileEncryptionKey(paddedUserPwd)
	U := sec.computeU(key)

	significant := 32
	if sec.R >= 3 {
		significant = 16
	}
	if !bytes.Equal(U[:significant], sec.U[:significant]) {
		return &AuthenticationError{sec.ID}
	}
	sec.key = key
	return nil
}

// authenticateOwner verifies the padded owner password (Algorithm 7).
func (sec *stdSecHandler) authenticateOwner(paddedOwnerPwd []byte) error {
	h := md5.New()
	h.Write(paddedOwnerPwd)
	sum := h.Sum(nil)
	if sec.R >= 3 {
		sum = sec.md5x50(sum)
	}
	key := sum[:sec.keyBytes]

	// decrypting O with this key yields the padded user password
	buf := make([]byte, 32)
	copy(buf, sec.O)
	if sec.R == 2 {
		c, _ := rc4.NewCipher(key)
		c.XORKeyStream(buf, buf)
	} else {
		rc4SweepKeys(buf, key, 19, 0)
	}

	err := sec.authenticateUser(buf)
	if err != nil {
		return err
	}
	sec.ownerAuthenticated = true
	return nil
}

// slowHash is the iterated hash of Algorithm 2.B (revision 6).  For
// owner keys, U is the 48-byte user entry; for user keys it is nil.
func slowHash(passwd, salt, U []byte) []byte {
	h := sha256.New()
	h.Write(passwd)
	h.Write(salt)
	h.Write(U)
	K := h.Sum(nil)

	K1 := make([]byte, 0, 64*(len(passwd)+64+len(U)))
	for round := 0; round < 64 || K1[len(K1)-1] > byte(round-32); round++ {
		// K1 is 64 repetitions of password | K | U
		K1 = K1[:0]
		for j := 0; j < 64; j++ {
			K1 = append(K1, passwd...)
			K1 = append(K1, K...)
			K1 = append(K1, U...)
		}

		// encrypt K1 with AES-128-CBC, keyed by the first half of K
		c, _ := aes.NewCipher(K[:16])
		cbc := cipher.NewCBCEncrypter(c, K[16:32])
		cbc.CryptBlocks(K1, K1)

		// The first 16 bytes of the ciphertext, as a big-endian
		// number modulo 3, select the next hash.  Summing the bytes
		// gives the same remainder, since 256 = 1 (mod 3).
		rem := 0
		for _, b := range K1[:16] {
			rem += int(b)
		}
		var h hash.Hash
		switch rem % 3 {
		case 0:
			h = sha256.New()
		case 1:
			h = sha512.New384()
		default:
			h = sha512.New()
		}
		h.Write(K1)
		K = h.Sum(K[:0])
	}

	return K[:32]
}

// computeUAndUE derives the user entries for revision 6 (Algorithm 8).
func (sec *stdSecHandler) computeUAndUE(utf8UserPwd []byte) ([]byte, []byte, error) {
	var salts [16]byte
	_, err := rand.Read(salts[:])
	if err != nil {
		return nil, nil, err
	}

	U := make([]byte, 0, 48)
	U = append(U, slowHash(utf8UserPwd, salts[:8], nil)...)
	U = append(U, salts[:]...)

	key := slowHash(utf8UserPwd, salts[8:], nil)
	c, _ := aes.NewCipher(key)
	UE := make([]byte, 32)
	cipher.NewCBCEncrypter(c, zero16).CryptBlocks(UE, sec.key)

	return U, UE, nil
}

// computeOAndOE derives the owner entries for revision 6 (Algorithm 9).
func (sec *stdSecHandler) computeOAndOE(utf8OwnerPwd []byte) ([]byte, []byte, error) {
	var salts [16]byte
	_, err := rand.Read(salts[:])
	if err != nil {
		return nil, nil, err
	}

	O := make([]byte, 0, 48)
	O = append(O, slowHash(utf8OwnerPwd, salts[:8], sec.U)...)
	O = append(O, salts[:]...)

	key := slowHash(utf8OwnerPwd, salts[8:], sec.U)
	c, _ := aes.NewCipher(key)
	OE := make([]byte, 32)
	cipher.NewCBCEncrypter(c, zero16).CryptBlocks(OE, sec.key)

	return O, OE, nil
}

// computePerms encrypts the permission flags with the file encryption
// key for revision 6 (Algorithm 10).
func (sec *stdSecHandler) computePerms(fileEncryptionKey []byte) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf, sec.P)
	buf[4], buf[5], buf[6], buf[7] = 0xFF, 0xFF, 0xFF, 0xFF
	if sec.unencryptedMetaData {
		buf[8] = 'F'
	} else {
		buf[8] = 'T'
	}
	copy(buf[9:], "adb")

	c, _ := aes.NewCipher(fileEncryptionKey)
	c.Encrypt(buf, buf)
	return buf
}

// authenticateUser6 verifies the user password for revision 6
// (Algorithm 11).
func (sec *stdSecHandler) authenticateUser6(utf8Passwd []byte) error {
	if !bytes.Equal(slowHash(utf8Passwd, sec.U[32:40], nil), sec.U[:32]) {
		return &AuthenticationError{sec.ID}
	}

	key := slowHash(utf8Passwd, sec.U[40:48], nil)
	c, _ := aes.NewCipher(key)
	fileEncryptionKey := make([]byte, 32)
	cipher.NewCBCDecrypter(c, zero16).CryptBlocks(fileEncryptionKey, sec.UE)

	err := sec.checkPerms(fileEncryptionKey)
	if err != nil {
		return err
	}
	sec.key = fileEncryptionKey
	return nil
}

// authenticateOwner6 verifies the owner password for revision 6
// (Algorithm 12).
func (sec *stdSecHandler) authenticateOwner6(utf8Passwd []byte) error {
	if !bytes.Equal(slowHash(utf8Passwd, sec.O[32:40], sec.U), sec.O[:32]) {
		return &AuthenticationError{sec.ID}
	}

	key := slowHash(utf8Passwd, sec.O[40:48], sec.U)
	c, _ := aes.NewCipher(key)
	fileEncryptionKey := make([]byte, 32)
	cipher.NewCBCDecrypter(c, zero16).CryptBlocks(fileEncryptionKey, sec.OE)

	err := sec.checkPerms(fileEncryptionKey)
	if err != nil {
		return err
	}
	sec.key = fileEncryptionKey
	sec.ownerAuthenticated = true
	return nil
}

// checkPerms verifies the encrypted permission flags against the P
// entry, which guards against tampering with the permissions.
func (sec *stdSecHandler) checkPerms(fileEncryptionKey []byte) error {
	buf := make([]byte, 16)
	c, _ := aes.NewCipher(fileEncryptionKey)
	c.Decrypt(buf, sec.Perms)

	if !bytes.Equal(buf[9:12], []byte("adb")) {
		return &AuthenticationError{sec.ID}
	}
	if binary.LittleEndian.Uint32(buf[:4]) != sec.P {
		return &AuthenticationError{sec.ID}
	}
	emdCode := byte('T')
	if sec.unencryptedMetaData {
		emdCode = 'F'
	}
	if buf[8] != emdCode {
		return &AuthenticationError{sec.ID}
	}
	return nil
}

// utf8Passwd normalizes a password for revision 6 using SASLprep and
// truncates it to 127 bytes.
func utf8Passwd(passwd string) ([]byte, error) {
	prepped, err := stringprep.SASLprep.Prepare(passwd)
	if err != nil {
		return nil, errInvalidPassword
	}
	buf := []byte(prepped)
	if len(buf) > 127 {
		buf = buf[:127]
	}
	return buf, nil
}

// padPasswd encodes a password using PDFDocEncoding and pads it to 32
// bytes with the standard padding string.
func padPasswd(passwd string) ([]byte, error) {
	buf, ok := PDFDocEncode(passwd)
	if !ok {
		return nil, errInvalidPassword
	}

	padded := make([]byte, 32)
	n := copy(padded, buf)
	copy(padded[n:], passwdPad)
	return padded, nil
}

var passwdPad = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41,
	0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80,
	0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

var zero16 = make([]byte, 16)

// stdSecPToPerm translates the P flags of the encryption dictionary
// into a Perm value.  The implication bits added in revision 3 are
// normalized, so that e.g. PermPrint always implies PermPrintDegraded.
func stdSecPToPerm(R int, P uint32) Perm {
	bit := func(n int) bool { return P&(1<<(n-1)) != 0 }

	perm := PermAll
	if R == 2 {
		if !bit(3) {
			perm &= ^(PermPrint | PermPrintDegraded)
		}
	} else if R >= 3 {
		// bit 3 allows degraded printing, bit 12 full printing
		if !bit(3) && !bit(12) {
			perm &= ^(PermPrint | PermPrintDegraded)
		} else if bit(3) && !bit(12) {
			perm &= ^PermPrint
		}
	}

	// bit 4 allows modifications, bit 11 assembly
	if !bit(4) {
		perm &= ^PermModify
		if !bit(11) {
			perm &= ^PermAssemble
		}
	}

	if !bit(5) {
		perm &= ^PermCopy
	}

	// bit 6 allows annotations, bit 9 filling form fields
	if !bit(6) {
		perm &= ^PermAnnotate
		if !bit(9) {
			perm &= ^PermForms
		}
	}

	return perm
}

// stdSecPermToP is the inverse of stdSecPToPerm.
func stdSecPermToP(perm Perm) uint32 {
	forbidden := uint32(3)
	if perm&PermCopy == 0 {
		forbidden |= 1 << (5 - 1)
	}
	if perm&PermPrint == 0 {
		forbidden |= 1 << (12 - 1)
		if perm&PermPrintDegraded == 0 {
			forbidden |= 1 << (3 - 1)
		}
	}
	if perm&PermAnnotate == 0 {
		forbidden |= 1 << (6 - 1)
		if perm&PermForms == 0 {
			forbidden |= 1 << (9 - 1)
		}
	}
	if perm&PermAssemble == 0 {
		forbidden |= 1 << (11 - 1)
	}
	if perm&PermModify == 0 {
		forbidden |= 1 << (4 - 1)
	}
	return ^forbidden
}

// Perm describes which operations are permitted when accessing the
// document with User access (but not Owner access).  The user can
// always view the document.
//
// This library just reports the permissions as specified in the PDF
// file.  It is up to the caller to enforce the permissions.
type Perm int

// canR2 checks whether the permissions can be represented by revision 2
// of the standard security handler.
func (perm Perm) canR2() bool {
	if perm&PermPrint == 0 && perm&PermPrintDegraded != 0 {
		return false
	}
	if perm&PermAnnotate == 0 && perm&PermForms != 0 {
		return false
	}
	if perm&PermModify == 0 && perm&PermAssemble != 0 {
		return false
	}
	return true
}

const (
	// PermCopy allows to extract text and graphics.
	PermCopy Perm = 1 << iota

	// PermPrintDegraded allows printing of a low-level representation
	// of the appearance, possibly of degraded quality.
	PermPrintDegraded

	// PermPrint allows printing a representation from which a faithful
	// digital copy of the PDF content could be generated.  This
	// implies PermPrintDegraded.
	PermPrint

	// PermForms allows to fill in form fields, including signature
	// fields.
	PermForms

	// PermAnnotate allows to add or modify text annotations.  This
	// implies PermForms.
	PermAnnotate

	// PermAssemble allows to insert, rotate, or delete pages and to
	// create bookmarks or thumbnail images.
	PermAssemble

	// PermModify allows to modify the document.  This implies
	// PermAssemble.
	PermModify

	permNext

	// PermAll gives the user all permissions, making User access
	// equivalent to Owner access.
	PermAll = permNext - 1
)

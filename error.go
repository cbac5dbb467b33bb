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
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errVersion         = errors.New("unsupported PDF version")
	errCorrupted       = errors.New("corrupted ciphertext")
	errNoDate          = errors.New("not a valid date string")
	errNoRectangle     = errors.New("not a valid PDF rectangle")
	errDuplicateRef    = errors.New("object already written")
	errInvalidPassword = errors.New("password cannot be encoded")
	errShortID         = errors.New("PDF file identifier too short")

	// ErrKeyNotFound is returned by name tree and number tree lookups when
	// the key is not present.
	ErrKeyNotFound = errors.New("key not found")
)

// Error is a simple error type for errors of this library.
type Error string

func (err Error) Error() string {
	return string(err)
}

// Wrap adds context to an error.
func Wrap(err error, loc string) error {
	if err == nil {
		return nil
	}
	if e, isMalformed := err.(*MalformedFileError); isMalformed {
		e2 := &MalformedFileError{
			Err: e.Err,
			Pos: e.Pos,
			Loc: append([]string{loc}, e.Loc...),
		}
		return e2
	}
	return fmt.Errorf("%s: %w", loc, err)
}

// AuthenticationError indicates that authentication failed because the correct
// password has not been supplied.
type AuthenticationError struct {
	ID []byte
}

func (err *AuthenticationError) Error() string {
	if err.ID == nil {
		return "authentication failed"
	}
	return fmt.Sprintf("authentication failed for document ID %x", err.ID)
}

// MalformedFileError indicates that a PDF file could not be parsed.
type MalformedFileError struct {
	Err error
	Pos int64
	Loc []string
}

func (err *MalformedFileError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	tail := ""
	if len(err.Loc) > 0 {
		tail = " (" + strings.Join(err.Loc, ": ") + ")"
	} else if err.Pos > 0 {
		tail = " (at byte " + strconv.FormatInt(err.Pos, 10) + ")"
	}
	return "not a valid PDF file" + middle + tail
}

func (err *MalformedFileError) Unwrap() error {
	return err.Err
}

// InternalError indicates an invariant violation inside the library.
type InternalError struct {
	Err error
}

func (err *InternalError) Error() string {
	return "internal error: " + err.Err.Error()
}

func (err *InternalError) Unwrap() error {
	return err.Err
}

// VersionError is returned when trying to use a feature in a PDF file which is
// not supported by the PDF version used.  Use [Writer.CheckVersion] to create
// VersionError objects.
type VersionError struct {
	Operation string
	Earliest  Version
}

func (err *VersionError) Error() string {
	return (err.Operation + " requires PDF version " +
		err.Earliest.String() + " or later")
}

// IsWrongVersion reports whether an error is a [VersionError].
func IsWrongVersion(err error) bool {
	var versionError *VersionError
	return errors.As(err, &versionError)
}

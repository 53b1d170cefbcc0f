/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	textunicode "golang.org/x/text/encoding/unicode"
)

// NameTable represents the Naming table (name).
// The naming table allows multilingual strings to be associated with the font.
// These strings can represent copyright notices, font names, family names, style names, and so on.
// https://docs.microsoft.com/en-us/typography/opentype/spec/name
type NameTable struct {
	Format  uint16 // 0 or 1.
	Records []*NameRecord

	// Format 1 only: language tag strings (UTF-16BE) referenced by language IDs 0x8000 and up.
	LangTags [][]byte
}

// NameRecord is a string of the naming table with its identifiers. Data holds the encoded string.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
	Data       []byte
}

// Tag implements Table.
func (t *NameTable) Tag() Tag { return TagName }

// Name IDs of commonly used names.
const (
	NameIDCopyright      uint16 = 0
	NameIDFamily         uint16 = 1
	NameIDSubfamily      uint16 = 2
	NameIDUniqueID       uint16 = 3
	NameIDFull           uint16 = 4
	NameIDVersion        uint16 = 5
	NameIDPostScriptName uint16 = 6
)

var utf16be = textunicode.UTF16(textunicode.BigEndian, textunicode.IgnoreBOM)

// nameEncoding returns the text encoding of strings with the given platform and encoding IDs, or
// nil when the bytes are to be taken as is.
func nameEncoding(platformID, encodingID uint16) encoding.Encoding {
	switch platformID {
	case 0: // Unicode.
		return utf16be
	case 1: // Macintosh.
		if encodingID == 0 {
			return charmap.Macintosh
		}
	case 3: // Windows.
		// Symbol (0) and Unicode BMP (1) / full repertoire (10) strings are all UTF-16BE.
		return utf16be
	}
	return nil
}

// NewNameRecord returns a record for `s` encoded as appropriate for the platform and encoding.
func NewNameRecord(platformID, encodingID, languageID, nameID uint16, s string) (*NameRecord, error) {
	nr := &NameRecord{PlatformID: platformID, EncodingID: encodingID, LanguageID: languageID, NameID: nameID}
	enc := nameEncoding(platformID, encodingID)
	if enc == nil {
		nr.Data = []byte(s)
		return nr, nil
	}
	data, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		logrus.Debugf("Cannot encode name %q for platform %d/%d: %v", s, platformID, encodingID, err)
		return nil, err
	}
	nr.Data = data
	return nr, nil
}

// String returns the decoded string of `nr`.
func (nr *NameRecord) String() string {
	enc := nameEncoding(nr.PlatformID, nr.EncodingID)
	if enc == nil {
		return string(nr.Data)
	}
	decoded, err := enc.NewDecoder().Bytes(nr.Data)
	if err != nil {
		logrus.Debugf("Name %d decode error: %v", nr.NameID, err)
		return string(nr.Data)
	}
	return string(decoded)
}

// Decoded returns the decoded string of `nr` with unprintable runes quoted.
func (nr *NameRecord) Decoded() string {
	return makePrintable(nr.String())
}

// makePrintable replaces unprintable runes with quotes runes, returning printable string.
func makePrintable(str string) string {
	var buf bytes.Buffer
	for _, r := range str {
		if unicode.IsPrint(r) || r == '\n' {
			buf.WriteRune(r)
		} else {
			buf.WriteString(strconv.QuoteRune(r))
		}
	}
	return buf.String()
}

// NameByID returns the string with `nameID`, preferring Windows Unicode records, then any other
// record. An empty string is returned otherwise (nothing found).
func (t *NameTable) NameByID(nameID uint16) string {
	var fallback *NameRecord
	for _, nr := range t.Records {
		if nr.NameID != nameID {
			continue
		}
		if nr.PlatformID == 3 && nr.EncodingID == 1 {
			return nr.String()
		}
		if fallback == nil {
			fallback = nr
		}
	}
	if fallback == nil {
		return ""
	}
	return fallback.String()
}

// LangTag returns the language tag for a language ID of 0x8000 or above.
func (t *NameTable) LangTag(languageID uint16) (string, bool) {
	i := int(languageID) - 0x8000
	if i < 0 || i >= len(t.LangTags) {
		return "", false
	}
	decoded, err := utf16be.NewDecoder().Bytes(t.LangTags[i])
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

func decodeName(r *byteReader, ctx *decodeContext) (Table, error) {
	t := &NameTable{}
	var count uint16
	var stringOffset offset16
	err := r.read(&t.Format, &count, &stringOffset)
	if err != nil {
		return nil, err
	}
	if t.Format > 1 {
		logrus.Debugf("name format > 1 (%d)", t.Format)
		return nil, fmt.Errorf("%w: name format %d", ErrCorruptTable, t.Format)
	}

	type stringRef struct {
		length uint16
		offset offset16
	}
	refs := make([]stringRef, count)
	for i := range refs {
		nr := &NameRecord{}
		err = r.read(&nr.PlatformID, &nr.EncodingID, &nr.LanguageID, &nr.NameID, &refs[i].length, &refs[i].offset)
		if err != nil {
			return nil, err
		}
		t.Records = append(t.Records, nr)
	}

	var langRefs []stringRef
	if t.Format == 1 {
		var langTagCount uint16
		err = r.read(&langTagCount)
		if err != nil {
			return nil, err
		}
		langRefs = make([]stringRef, langTagCount)
		for i := range langRefs {
			err = r.read(&langRefs[i].length, &langRefs[i].offset)
			if err != nil {
				return nil, err
			}
		}
	}

	storage := func(ref stringRef) ([]byte, error) {
		sr, err := r.sub(int(stringOffset)+int(ref.offset), int(ref.length))
		if err != nil {
			return nil, err
		}
		return append([]byte(nil), sr.data...), nil
	}

	var records []*NameRecord
	for i, nr := range t.Records {
		nr.Data, err = storage(refs[i])
		if err != nil {
			ctx.report(fmt.Sprintf("record %d", i), SeverityMajor, int64(stringOffset)+int64(refs[i].offset),
				"string outside table: %v", err)
			continue
		}
		records = append(records, nr)
	}
	t.Records = records

	for i, ref := range langRefs {
		data, err := storage(ref)
		if err != nil {
			ctx.report(fmt.Sprintf("lang tag %d", i), SeverityMajor, int64(stringOffset)+int64(ref.offset),
				"string outside table: %v", err)
			data = nil
		}
		t.LangTags = append(t.LangTags, data)
	}

	logrus.Debugf("Name records: %d", len(t.Records))
	for _, nr := range t.Records {
		logrus.Tracef("%d %d %d - '%s' (%d)", nr.PlatformID, nr.EncodingID, nr.NameID, nr.Decoded(), len(nr.Data))
	}
	return t, nil
}

// encode writes the records in model order. Identical strings share storage.
func (t *NameTable) encode(w *byteWriter, ctx *encodeContext) error {
	format := t.Format
	if len(t.LangTags) > 0 {
		format = 1
	}

	headerLen := 6 + 12*len(t.Records)
	if format == 1 {
		headerLen += 2 + 4*len(t.LangTags)
	}

	if headerLen > 0xFFFF {
		return fmt.Errorf("%w: %d name records", ErrInconsistentModel, len(t.Records))
	}

	var storage []byte
	stored := map[string]int{}
	store := func(data []byte) (uint16, uint16, error) {
		off, ok := stored[string(data)]
		if !ok {
			off = len(storage)
			storage = append(storage, data...)
			stored[string(data)] = off
		}
		if off > 0xFFFF || len(data) > 0xFFFF {
			return 0, 0, fmt.Errorf("%w: name string offset exceeds 64K", ErrInconsistentModel)
		}
		return uint16(len(data)), uint16(off), nil
	}

	err := w.write(format, uint16(len(t.Records)), uint16(headerLen))
	if err != nil {
		return err
	}
	for _, nr := range t.Records {
		length, offset, err := store(nr.Data)
		if err != nil {
			return err
		}
		err = w.write(nr.PlatformID, nr.EncodingID, nr.LanguageID, nr.NameID, length, offset)
		if err != nil {
			return err
		}
	}
	if format == 1 {
		err = w.write(uint16(len(t.LangTags)))
		if err != nil {
			return err
		}
		for _, tag := range t.LangTags {
			length, offset, err := store(tag)
			if err != nil {
				return err
			}
			err = w.write(length, offset)
			if err != nil {
				return err
			}
		}
	}
	return w.writeBytes(storage)
}

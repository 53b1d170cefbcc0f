/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Validate checks the table records of the font in `data`: every table lies within the data and
// matches its recorded checksum. For single fonts the tables must follow the directory without
// gaps beyond padding, and the whole-file checksum against head.checkSumAdjustment is verified too.
// Collections are validated font by font.
func Validate(data []byte) error {
	format, err := detectFormat(data)
	if err != nil {
		return err
	}
	switch format {
	case formatSfnt:
		f, err := parseFont(data, 0)
		if err != nil {
			return err
		}
		if err := f.validateTables(); err != nil {
			return err
		}
		if err := f.validateTiling(); err != nil {
			return err
		}
		return f.validateFileChecksum()
	}

	c, err := parseContainer(data, format)
	if err != nil {
		return err
	}
	for i, f := range c.Fonts {
		if err := f.validateTables(); err != nil {
			return fmt.Errorf("font %d: %w", i, err)
		}
	}
	return nil
}

// validateTables checks the range and checksum of each table record.
func (f *Font) validateTables() error {
	if f.trec == nil || f.ot == nil {
		logrus.Debug("Table records missing")
		return errRequiredField
	}

	logrus.Debug("Validating font tables")
	var prev *tableRecord
	for _, tr := range f.trec.byOffset() {
		// Tables may share data but must not partially overlap.
		if prev != nil && tr.length > 0 && int64(tr.offset) < int64(prev.offset)+int64(prev.length) &&
			(tr.offset != prev.offset || tr.length != prev.length) {
			logrus.Debugf("Tables %s and %s overlap", prev.tableTag, tr.tableTag)
			return fmt.Errorf("%w: tables %s and %s overlap", ErrCorruptTable, prev.tableTag, tr.tableTag)
		}
		if tr.length > 0 {
			prev = tr
		}
	}

	for _, tr := range f.trec.list {
		start, end := int64(tr.offset), int64(tr.offset)+int64(tr.length)
		if end > int64(len(f.data)) {
			logrus.Debugf("Range check error (%s)", tr.tableTag)
			return fmt.Errorf("%w: table %s [%d,%d) outside data of %d bytes", ErrTruncatedInput,
				tr.tableTag, start, end, len(f.data))
		}

		b := f.data[start:end]
		if tr.tableTag == TagHead {
			// Set the checksumAdjustment to 0 so that head checksum is valid.
			if len(b) < headChecksumAdjustmentOffset+4 {
				return fmt.Errorf("%w: head too short", ErrCorruptTable)
			}
			b = append([]byte(nil), b...)
			binary.BigEndian.PutUint32(b[headChecksumAdjustmentOffset:], 0)
		}

		checksum := calcChecksum(b)
		if tr.checksum != checksum {
			logrus.Debugf("Invalid checksum of %s (0x%08X != 0x%08X)", tr.tableTag, checksum, tr.checksum)
			return fmt.Errorf("%w: %s checksum 0x%08X, recorded 0x%08X", ErrCorruptTable,
				tr.tableTag, checksum, tr.checksum)
		}
	}
	return nil
}

// validateTiling checks that the tables follow the table directory and each other with no more
// than 3 bytes of padding in between.
func (f *Font) validateTiling() error {
	pos := int64(offsetTableLen) + int64(tableRecordLen)*int64(f.ot.numTables)
	prevTag := Tag{}
	for _, tr := range f.trec.byOffset() {
		if tr.length == 0 {
			continue
		}
		start := int64(tr.offset)
		if start > pos+3 {
			logrus.Debugf("Gap of %d bytes before %s", start-pos, tr.tableTag)
			if prevTag == (Tag{}) {
				return fmt.Errorf("%w: %d bytes between directory and %s", ErrCorruptTable, start-pos, tr.tableTag)
			}
			return fmt.Errorf("%w: %d bytes between %s and %s", ErrCorruptTable, start-pos, prevTag, tr.tableTag)
		}
		if end := start + int64(tr.length); end > pos {
			pos = end
		}
		prevTag = tr.tableTag
	}
	return nil
}

// validateFileChecksum verifies head.checkSumAdjustment against the checksum of the whole file.
func (f *Font) validateFileChecksum() error {
	headRec, ok := f.trec.trMap[TagHead]
	if !ok {
		logrus.Debug("head not set")
		return fmt.Errorf("%w: head", ErrTableNotFound)
	}
	hoff := int(headRec.offset) + headChecksumAdjustmentOffset
	if hoff+4 > len(f.data) {
		return fmt.Errorf("%w: head outside data", ErrTruncatedInput)
	}
	adjustment := binary.BigEndian.Uint32(f.data[hoff:])

	// The sum over the file with the adjustment included equals the sum with it zeroed plus the
	// adjustment, assuming the adjustment is 4-byte aligned.
	total := calcChecksum(f.data) - adjustment
	if hoff%4 != 0 {
		data := append([]byte(nil), f.data...)
		binary.BigEndian.PutUint32(data[hoff:], 0)
		total = calcChecksum(data)
	}
	if want := uint32(checksumMagic) - total; adjustment != want {
		logrus.Debugf("File checksum mismatch (0x%08X != 0x%08X)", adjustment, want)
		return fmt.Errorf("%w: checkSumAdjustment 0x%08X, want 0x%08X", ErrCorruptTable, adjustment, want)
	}
	return nil
}

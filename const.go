/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import "errors"

var (
	errTypeCheck     = errors.New("type check error")
	errRangeCheck    = errors.New("range check error")
	errRequiredField = errors.New("required field missing")
	errNilReceiver   = errors.New("receiver pointer not initialized")
)

// Errors that callers can test for with errors.Is.
var (
	// ErrTruncatedInput is returned when a read goes past the end of the data region.
	ErrTruncatedInput = errors.New("truncated input")

	// ErrTableNotFound is returned when a required table is not present in the font.
	ErrTableNotFound = errors.New("table not found")

	// ErrUnsupportedFormat is returned for font container formats that are not recognized.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCorruptTable is returned when a table's internal structure is inconsistent.
	ErrCorruptTable = errors.New("corrupt table")

	// ErrInconsistentModel is returned by write operations when the tables of a font contradict
	// each other, e.g. the number of metrics in hmtx does not match hhea.
	ErrInconsistentModel = errors.New("inconsistent font model")
)

const (
	// headMagicNumber is the fixed value of head.magicNumber.
	headMagicNumber = 0x5F0F3CF5

	// checksumMagic is the value the whole-file checksum must equal once head.checkSumAdjustment
	// is included.
	checksumMagic = 0xB1B0AFBA

	// headChecksumAdjustmentOffset is the byte position of checkSumAdjustment within head.
	headChecksumAdjustmentOffset = 8

	// offsetTableLen and tableRecordLen are the sizes of the sfnt header and of one table record.
	offsetTableLen = 12
	tableRecordLen = 16

	// maxComponentDepth bounds the nesting of composite glyphs.
	maxComponentDepth = 16
)

/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/cryptobyte"
)

// Program is a sequence of TrueType instructions. It is kept as opaque bytecode.
type Program []byte

// readProgram reads a program prefixed by its uint16 length, as found in glyph descriptions.
func readProgram(r *byteReader) (Program, error) {
	s := cryptobyte.String(r.rest())
	var body cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&body) {
		logrus.Debug("Instructions exceed glyph data")
		return nil, fmt.Errorf("%w: instructions at offset %d", ErrTruncatedInput, r.Offset())
	}
	p := make(Program, len(body))
	copy(p, body)
	return p, r.Skip(2 + len(body))
}

// writeProgram writes `p` prefixed by its uint16 length.
func writeProgram(w *byteWriter, p Program) error {
	if len(p) > 0xFFFF {
		logrus.Debugf("Program too long (%d bytes)", len(p))
		return errRangeCheck
	}
	b := cryptobyte.NewBuilder(nil)
	b.AddUint16LengthPrefixed(func(c *cryptobyte.Builder) {
		c.AddBytes(p)
	})
	data, err := b.Bytes()
	if err != nil {
		return err
	}
	return w.writeBytes(data)
}

// ProgramTable represents the Font Program (fpgm) and Control Value Program (prep) tables.
// Both consist of instructions only, filling the size of the table.
// prep is executed whenever the font or point size or transformation matrix change and before
// each glyph is interpreted. fpgm is executed once, when the font is first used.
type ProgramTable struct {
	tag          Tag
	Instructions Program
}

// NewProgramTable returns an empty fpgm or prep table.
func NewProgramTable(tag Tag) *ProgramTable {
	return &ProgramTable{tag: tag}
}

// Tag implements Table.
func (t *ProgramTable) Tag() Tag { return t.tag }

func decodeFpgm(r *byteReader, ctx *decodeContext) (Table, error) {
	return decodeProgramTable(r, TagFpgm)
}

func decodePrep(r *byteReader, ctx *decodeContext) (Table, error) {
	return decodeProgramTable(r, TagPrep)
}

func decodeProgramTable(r *byteReader, tag Tag) (*ProgramTable, error) {
	t := &ProgramTable{tag: tag}
	if r.Len() == 0 {
		logrus.Debugf("%s is empty", tag)
	}
	err := r.readBytes((*[]byte)(&t.Instructions), r.Len())
	return t, err
}

func (t *ProgramTable) encode(w *byteWriter, ctx *encodeContext) error {
	return w.writeBytes(t.Instructions)
}

/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
)

// WriteOptions control which tables are written.
type WriteOptions struct {
	// KeepUnsupported copies tables without a decoder (UnsupportedTable) verbatim. By default only
	// tables that can encode themselves are written.
	KeepUnsupported bool

	// Include restricts the output to the listed tags when non-nil.
	Include map[Tag]bool
}

// encodeContext caches encoded table data during a write pass and carries the values that one
// table's encoding contributes to another (glyph offsets from glyf to loca and head).
type encodeContext struct {
	font *Font
	opts WriteOptions

	encoded    map[Tag][]byte
	inProgress map[Tag]bool

	glyphOffsets []uint32
	locaFormat   int16
	haveOffsets  bool
}

func newEncodeContext(f *Font, opts *WriteOptions) *encodeContext {
	ctx := &encodeContext{
		font:       f,
		encoded:    map[Tag][]byte{},
		inProgress: map[Tag]bool{},
	}
	if opts != nil {
		ctx.opts = *opts
	}
	return ctx
}

// outputTags returns the tags of the tables to write, ordered by their unsigned 32-bit value.
func (ctx *encodeContext) outputTags() []Tag {
	var tags []Tag
	for _, tag := range ctx.font.Tags() {
		if ctx.opts.Include != nil && !ctx.opts.Include[tag] {
			continue
		}
		t, ok := ctx.font.Table(tag)
		if !ok {
			logrus.Debugf("%s not available - omitted from output", tag)
			continue
		}
		switch t.(type) {
		case tableEncoder:
		case *UnsupportedTable:
			if !ctx.opts.KeepUnsupported {
				logrus.Debugf("%s unsupported - omitted from output", tag)
				continue
			}
		default:
			logrus.Debugf("%s cannot be written - omitted from output", tag)
			continue
		}
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Uint32() < tags[j].Uint32()
	})
	return tags
}

// siblingTables lists, per table, the tables that must be written along with it for the glyph
// offsets, counts and metrics it depends on to be recorded.
var siblingTables = map[Tag][]Tag{
	TagGlyf: {TagLoca, TagHead, TagMaxp},
	TagLoca: {TagGlyf, TagHead, TagMaxp},
	TagHmtx: {TagHhea, TagMaxp},
	TagVmtx: {TagVhea, TagMaxp},
}

// checkSiblings returns an error when a table in `tags` is written without a required sibling.
func checkSiblings(tags []Tag) error {
	written := make(map[Tag]bool, len(tags))
	for _, tag := range tags {
		written[tag] = true
	}
	for _, tag := range tags {
		for _, sib := range siblingTables[tag] {
			if !written[sib] {
				logrus.Debugf("%s written without %s", tag, sib)
				return fmt.Errorf("%w: %s requires %s", ErrInconsistentModel, tag, sib)
			}
		}
	}
	return nil
}

// tableBytes returns the encoded data of table `tag`, encoding it on first request.
func (ctx *encodeContext) tableBytes(tag Tag) ([]byte, error) {
	if b, ok := ctx.encoded[tag]; ok {
		return b, nil
	}
	if ctx.inProgress[tag] {
		return nil, fmt.Errorf("%w: circular encode dependency on %s", ErrInconsistentModel, tag)
	}
	t, ok := ctx.font.Table(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tag)
	}

	ctx.inProgress[tag] = true
	defer delete(ctx.inProgress, tag)

	w := &byteWriter{}
	switch tt := t.(type) {
	case tableEncoder:
		if err := tt.encode(w, ctx); err != nil {
			return nil, fmt.Errorf("writing %s: %w", tag, err)
		}
	case *UnsupportedTable:
		w.writeBytes(tt.Data)
	default:
		return nil, fmt.Errorf("%w: %s has no encoder", errTypeCheck, tag)
	}
	ctx.encoded[tag] = w.Bytes()
	return w.Bytes(), nil
}

// setGlyphOffsets records the glyph offsets produced by encoding glyf and decides the loca format.
func (ctx *encodeContext) setGlyphOffsets(offsets []uint32) {
	ctx.glyphOffsets = offsets
	ctx.haveOffsets = true
	ctx.locaFormat = 0
	for _, off := range offsets {
		if off%2 != 0 || off > 0x1FFFE {
			ctx.locaFormat = 1
			break
		}
	}
}

// glyphLocations returns the glyph offsets of the encoded glyf table, encoding glyf if needed.
func (ctx *encodeContext) glyphLocations() ([]uint32, int16, error) {
	if !ctx.haveOffsets {
		if ctx.font.Glyf() == nil {
			return nil, 0, fmt.Errorf("%w: loca requires glyf", ErrInconsistentModel)
		}
		if _, err := ctx.tableBytes(TagGlyf); err != nil {
			return nil, 0, err
		}
	}
	return ctx.glyphOffsets, ctx.locaFormat, nil
}

// indexToLocFormat returns the loca format to record in head: the format decided by the glyf
// encoding when the font has glyph outlines, otherwise `current`.
func (ctx *encodeContext) indexToLocFormat(current int16) (int16, error) {
	if ctx.font.Glyf() == nil {
		return current, nil
	}
	_, format, err := ctx.glyphLocations()
	return format, err
}

// numGlyphs returns maxp.numGlyphs of the font being written.
func (ctx *encodeContext) numGlyphs() (int, error) {
	maxp := ctx.font.Maxp()
	if maxp == nil {
		return 0, fmt.Errorf("%w: maxp required", ErrInconsistentModel)
	}
	return int(maxp.NumGlyphs), nil
}

// assembledTable is a table as laid out in a written font.
type assembledTable struct {
	tag      Tag
	checksum uint32
	data     []byte // Unpadded table data.
}

// Write writes the font to `w` as a single sfnt file.
func (f *Font) Write(w io.Writer, opts *WriteOptions) error {
	bw := newByteWriter(w)
	if _, err := f.assemble(bw, opts); err != nil {
		return err
	}
	return bw.flush()
}

// assemble lays out the font at the start of `bw`: offset table, records in tag order, table data
// padded to 4 bytes, record checksums and finally head.checkSumAdjustment.
func (f *Font) assemble(bw *byteWriter, opts *WriteOptions) ([]assembledTable, error) {
	f.DecodeAll()

	ctx := newEncodeContext(f, opts)
	tags := ctx.outputTags()
	if err := checkSiblings(tags); err != nil {
		return nil, err
	}
	tables := make([]assembledTable, len(tags))
	for i, tag := range tags {
		data, err := ctx.tableBytes(tag)
		if err != nil {
			return nil, err
		}
		tables[i] = assembledTable{tag: tag, data: data}
	}

	base := bw.Len()
	ot := newOffsetTable(f.SfntVersion(), len(tables))
	if err := ot.write(bw); err != nil {
		return nil, err
	}

	checksums := make([]reservation, len(tables))
	locations := make([]reservation, len(tables))
	for i, t := range tables {
		if err := bw.write(t.tag); err != nil {
			return nil, err
		}
		checksums[i] = bw.reserve(4)
		locations[i] = bw.reserve(8)
	}

	positions := make([]int, len(tables))
	headPos := -1
	for i, t := range tables {
		bw.pad(4)
		positions[i] = bw.Len()
		if t.tag == TagHead {
			headPos = positions[i]
		}
		bw.writeBytes(t.data)
		err := locations[i].fill(offset32(positions[i]-base), uint32(len(t.data)))
		if err != nil {
			return nil, err
		}
	}

	trec := newTableRecords()
	for i := range tables {
		start := positions[i]
		tables[i].checksum = bw.checksumRange(start, start+len(tables[i].data))
		if err := checksums[i].fill(tables[i].checksum); err != nil {
			return nil, err
		}
		trec.Set(tables[i].tag, int64(start-base), len(tables[i].data), tables[i].checksum)
	}
	bw.pad(4)

	if headPos >= 0 {
		total := bw.checksumRange(base, bw.Len())
		adjustment := checksumMagic - total
		if err := bw.writeUint32At(headPos+headChecksumAdjustmentOffset, adjustment); err != nil {
			return nil, err
		}
		if head := f.Head(); head != nil {
			head.CheckSumAdjustment = adjustment
		}
	} else {
		logrus.Debug("No head table - checkSumAdjustment not set")
	}
	for i := range tables {
		tables[i].data = bw.Bytes()[positions[i] : positions[i]+len(tables[i].data)]
	}

	if loca := f.Loca(); loca != nil && ctx.haveOffsets {
		loca.Offsets = append([]uint32(nil), ctx.glyphOffsets...)
	}
	if head := f.Head(); head != nil && ctx.haveOffsets {
		head.IndexToLocFormat = ctx.locaFormat
	}
	logrus.Tracef("Assembled %d tables:\n%s", len(tables), trec)

	return tables, nil
}

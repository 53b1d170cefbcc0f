/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Table tags of the supported tables.
var (
	TagHead = MakeTag("head")
	TagHhea = MakeTag("hhea")
	TagVhea = MakeTag("vhea")
	TagMaxp = MakeTag("maxp")
	TagHmtx = MakeTag("hmtx")
	TagVmtx = MakeTag("vmtx")
	TagLoca = MakeTag("loca")
	TagGlyf = MakeTag("glyf")
	TagCmap = MakeTag("cmap")
	TagName = MakeTag("name")
	TagOS2  = MakeTag("OS/2")
	TagPost = MakeTag("post")
	TagKern = MakeTag("kern")
	TagGasp = MakeTag("gasp")
	TagCOLR = MakeTag("COLR")
	TagCPAL = MakeTag("CPAL")
	TagSbix = MakeTag("sbix")
	TagHdmx = MakeTag("hdmx")
	TagVDMX = MakeTag("VDMX")
	TagDSIG = MakeTag("DSIG")
	TagPCLT = MakeTag("PCLT")
	TagLTSH = MakeTag("LTSH")
	TagFpgm = MakeTag("fpgm")
	TagPrep = MakeTag("prep")
	TagCvt  = MakeTag("cvt ")
)

// Table is implemented by every decoded table.
type Table interface {
	Tag() Tag
}

// tableEncoder is implemented by tables that can be written back out.
type tableEncoder interface {
	Table
	encode(w *byteWriter, ctx *encodeContext) error
}

// tableCodec describes how to decode a table and which sibling tables must be decoded first.
type tableCodec struct {
	deps   []Tag
	decode func(r *byteReader, ctx *decodeContext) (Table, error)
}

var tableCodecs map[Tag]tableCodec

func init() {
	tableCodecs = map[Tag]tableCodec{
		TagHead: {decode: decodeHead},
		TagMaxp: {decode: decodeMaxp},
		TagHhea: {decode: decodeHhea},
		TagVhea: {decode: decodeVhea},
		TagHmtx: {deps: []Tag{TagHhea, TagMaxp}, decode: decodeHmtx},
		TagVmtx: {deps: []Tag{TagVhea, TagMaxp}, decode: decodeVmtx},
		TagLoca: {deps: []Tag{TagHead, TagMaxp}, decode: decodeLoca},
		TagGlyf: {deps: []Tag{TagLoca, TagMaxp}, decode: decodeGlyf},
		TagCmap: {decode: decodeCmap},
		TagName: {decode: decodeName},
		TagOS2:  {decode: decodeOS2},
		TagPost: {deps: []Tag{TagMaxp}, decode: decodePost},
		TagKern: {decode: decodeKern},
		TagGasp: {decode: decodeGasp},
		TagCOLR: {decode: decodeCOLR},
		TagCPAL: {decode: decodeCPAL},
		TagSbix: {deps: []Tag{TagMaxp}, decode: decodeSbix},
		TagHdmx: {deps: []Tag{TagMaxp}, decode: decodeHdmx},
		TagVDMX: {decode: decodeVDMX},
		TagDSIG: {decode: decodeDSIG},
		TagPCLT: {decode: decodePCLT},
		TagLTSH: {decode: decodeLTSH},
		TagFpgm: {decode: decodeFpgm},
		TagPrep: {decode: decodePrep},
		TagCvt:  {decode: decodeCvt},
	}
}

// UnsupportedTable holds the raw data of a table the package cannot decode.
type UnsupportedTable struct {
	tag  Tag
	Data []byte
}

// Tag implements Table.
func (t *UnsupportedTable) Tag() Tag { return t.tag }

// Font is a data model for truetype fonts with lazy table decoding.
//
// Tables are decoded on first access. A table that fails to decode is reported as absent and the
// failure is recorded in Diagnostics.
type Font struct {
	data []byte // file data, table offsets are relative to it.
	ot   *offsetTable
	trec *tableRecords

	tables  map[Tag]Table
	failed  map[Tag]bool
	pending map[Tag]bool
	diags   diagnostics
}

// NewFont returns an empty font with the given sfnt version, to be populated with SetTable.
func NewFont(sfntVersion uint32) *Font {
	f := newFont(nil)
	f.ot = &offsetTable{sfntVersion: sfntVersion}
	return f
}

func newFont(data []byte) *Font {
	return &Font{
		data:    data,
		trec:    newTableRecords(),
		tables:  map[Tag]Table{},
		failed:  map[Tag]bool{},
		pending: map[Tag]bool{},
	}
}

// parseFont reads the table directory located at `headerOffset` in `data`. Tables are not decoded.
func parseFont(data []byte, headerOffset int) (*Font, error) {
	f := newFont(data)

	r := newByteReader(data)
	err := r.Seek(int64(headerOffset))
	if err != nil {
		return nil, err
	}

	f.ot, err = parseOffsetTable(r)
	if err != nil {
		return nil, err
	}

	f.trec, err = parseTableRecords(r, int(f.ot.numTables))
	if err != nil {
		return nil, err
	}

	return f, nil
}

// SfntVersion returns the version tag of the font's offset table.
func (f *Font) SfntVersion() uint32 {
	if f.ot == nil {
		return sfntVersionTrueType
	}
	return f.ot.sfntVersion
}

// Tags returns the tags of the font's tables in directory order.
func (f *Font) Tags() []Tag {
	var tags []Tag
	for _, tr := range f.trec.list {
		tags = append(tags, tr.tableTag)
	}
	return tags
}

// TableInfo is a table directory entry as read from the font file.
type TableInfo struct {
	Tag      Tag
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// Directory returns the table directory in directory order. Tables added with SetTable have zero
// offset, length and checksum until the font is written.
func (f *Font) Directory() []TableInfo {
	var infos []TableInfo
	for _, tr := range f.trec.list {
		infos = append(infos, TableInfo{
			Tag:      tr.tableTag,
			Checksum: tr.checksum,
			Offset:   uint32(tr.offset),
			Length:   tr.length,
		})
	}
	return infos
}

// HasTable returns true if the font's directory lists `tag`.
func (f *Font) HasTable(tag Tag) bool {
	_, has := f.trec.trMap[tag]
	return has
}

// Table returns the decoded table for `tag`, decoding it first if needed. The bool is false when
// the font has no such table or the table failed to decode. Tags without a decoder yield an
// *UnsupportedTable.
func (f *Font) Table(tag Tag) (Table, bool) {
	if t, ok := f.tables[tag]; ok {
		return t, true
	}
	if f.failed[tag] {
		return nil, false
	}
	tr, has := f.trec.trMap[tag]
	if !has || f.data == nil {
		return nil, false
	}
	if f.pending[tag] {
		f.diags.add(tag, "", SeverityCritical, -1, "circular table dependency")
		return nil, false
	}

	f.pending[tag] = true
	defer delete(f.pending, tag)

	t, err := f.decodeTable(tr)
	if err != nil {
		logrus.Debugf("%s: decode failed: %v", tag, err)
		f.diags.add(tag, "", SeverityCritical, -1, "%v", err)
		f.failed[tag] = true
		return nil, false
	}
	f.tables[tag] = t
	return t, true
}

func (f *Font) decodeTable(tr *tableRecord) (Table, error) {
	start := int64(tr.offset)
	end := start + int64(tr.length)
	if end > int64(len(f.data)) {
		return nil, fmt.Errorf("%w: table %s [%d,%d) outside file of %d bytes",
			ErrTruncatedInput, tr.tableTag, start, end, len(f.data))
	}
	data := f.data[start:end]

	codec, ok := tableCodecs[tr.tableTag]
	if !ok {
		logrus.Debugf("Unsupported table %s - kept as raw data", tr.tableTag)
		raw := make([]byte, len(data))
		copy(raw, data)
		return &UnsupportedTable{tag: tr.tableTag, Data: raw}, nil
	}

	for _, dep := range codec.deps {
		f.Table(dep)
	}

	ctx := &decodeContext{font: f, tag: tr.tableTag}
	return codec.decode(newByteReader(data), ctx)
}

// DecodeAll decodes every table of the directory, walking the records in reverse order.
func (f *Font) DecodeAll() {
	for i := len(f.trec.list) - 1; i >= 0; i-- {
		f.Table(f.trec.list[i].tableTag)
	}
}

// SetTable adds `t` to the font, replacing any table with the same tag.
func (f *Font) SetTable(t Table) {
	tag := t.Tag()
	f.tables[tag] = t
	delete(f.failed, tag)
	if _, has := f.trec.trMap[tag]; !has {
		f.trec.Set(tag, 0, 0, 0)
	}
}

// RemoveTable removes the table `tag` from the font.
func (f *Font) RemoveTable(tag Tag) {
	delete(f.tables, tag)
	delete(f.failed, tag)
	f.trec.Remove(tag)
}

// Diagnostics returns the problems found while decoding the tables accessed so far.
func (f *Font) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), f.diags.list...)
}

func tableAs[T Table](f *Font, tag Tag) T {
	t, _ := f.Table(tag)
	v, _ := t.(T)
	return v
}

// Head returns the head table or nil.
func (f *Font) Head() *HeadTable { return tableAs[*HeadTable](f, TagHead) }

// Maxp returns the maxp table or nil.
func (f *Font) Maxp() *MaxpTable { return tableAs[*MaxpTable](f, TagMaxp) }

// Hhea returns the hhea table or nil.
func (f *Font) Hhea() *HheaTable { return tableAs[*HheaTable](f, TagHhea) }

// Vhea returns the vhea table or nil.
func (f *Font) Vhea() *HheaTable { return tableAs[*HheaTable](f, TagVhea) }

// Hmtx returns the hmtx table or nil.
func (f *Font) Hmtx() *HmtxTable { return tableAs[*HmtxTable](f, TagHmtx) }

// Vmtx returns the vmtx table or nil.
func (f *Font) Vmtx() *HmtxTable { return tableAs[*HmtxTable](f, TagVmtx) }

// Loca returns the loca table or nil.
func (f *Font) Loca() *LocaTable { return tableAs[*LocaTable](f, TagLoca) }

// Glyf returns the glyf table or nil.
func (f *Font) Glyf() *GlyfTable { return tableAs[*GlyfTable](f, TagGlyf) }

// Cmap returns the cmap table or nil.
func (f *Font) Cmap() *CmapTable { return tableAs[*CmapTable](f, TagCmap) }

// Name returns the name table or nil.
func (f *Font) Name() *NameTable { return tableAs[*NameTable](f, TagName) }

// OS2 returns the OS/2 table or nil.
func (f *Font) OS2() *OS2Table { return tableAs[*OS2Table](f, TagOS2) }

// Post returns the post table or nil.
func (f *Font) Post() *PostTable { return tableAs[*PostTable](f, TagPost) }

// NumGlyphs returns the number of glyphs according to maxp, or 0 without maxp.
func (f *Font) NumGlyphs() int {
	if m := f.Maxp(); m != nil {
		return int(m.NumGlyphs)
	}
	return 0
}

// GlyphIndex returns the glyph for rune `r` according to the best Unicode cmap subtable.
// Returns 0 (.notdef) when unmapped or when the font has no cmap.
func (f *Font) GlyphIndex(r rune) GlyphIndex {
	cmap := f.Cmap()
	if cmap == nil {
		return 0
	}
	return cmap.Lookup(r)
}

// AdvanceWidth returns the horizontal advance of `gid` in font units.
func (f *Font) AdvanceWidth(gid GlyphIndex) (uint16, error) {
	hmtx := f.Hmtx()
	if hmtx == nil {
		return 0, fmt.Errorf("%w: hmtx", ErrTableNotFound)
	}
	adv, _, err := hmtx.Metric(gid)
	return adv, err
}

// decodeContext gives table decoders read-only access to sibling tables they depend on.
type decodeContext struct {
	font *Font
	tag  Tag
}

func (ctx *decodeContext) head() *HeadTable { return ctx.font.Head() }
func (ctx *decodeContext) maxp() *MaxpTable { return ctx.font.Maxp() }
func (ctx *decodeContext) hhea() *HheaTable { return ctx.font.Hhea() }
func (ctx *decodeContext) vhea() *HheaTable { return ctx.font.Vhea() }
func (ctx *decodeContext) loca() *LocaTable { return ctx.font.Loca() }

// numGlyphs returns maxp.numGlyphs or an error if maxp is not available.
func (ctx *decodeContext) numGlyphs() (int, error) {
	maxp := ctx.maxp()
	if maxp == nil {
		logrus.Debugf("%s: maxp table missing", ctx.tag)
		return 0, fmt.Errorf("%w: maxp (needed by %s)", ErrTableNotFound, ctx.tag)
	}
	return int(maxp.NumGlyphs), nil
}

// report records a diagnostic for the table being decoded.
func (ctx *decodeContext) report(section string, severity Severity, offset int64, format string, args ...interface{}) {
	logrus.Debugf("%s/%s: "+format, append([]interface{}{ctx.tag, section}, args...)...)
	ctx.font.diags.add(ctx.tag, section, severity, offset, format, args...)
}

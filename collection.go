/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Collection is a set of fonts stored in one file: a TrueType collection (ttcf) or a dfont.
type Collection struct {
	MajorVersion uint16 // 1 or 2.
	MinorVersion uint16
	Fonts        []*Font

	// Signature is the raw DSIG table of a version 2 collection, nil if absent.
	Signature []byte
}

func parseCollection(data []byte) (*Collection, error) {
	r := newByteReader(data)
	var tag Tag
	var numFonts uint32
	c := &Collection{}
	err := r.read(&tag, &c.MajorVersion, &c.MinorVersion, &numFonts)
	if err != nil {
		return nil, err
	}
	if tag != ttcTag {
		return nil, fmt.Errorf("%w: collection tag %s", ErrUnsupportedFormat, tag)
	}
	if int(numFonts) > r.Remaining()/4 {
		return nil, fmt.Errorf("%w: %d fonts in collection header", ErrTruncatedInput, numFonts)
	}
	var offsets []offset32
	err = r.readSlice(&offsets, int(numFonts))
	if err != nil {
		return nil, err
	}

	if c.MajorVersion >= 2 {
		var dsigTag Tag
		var dsigLength uint32
		var dsigOffset offset32
		err = r.read(&dsigTag, &dsigLength, &dsigOffset)
		if err != nil {
			return nil, err
		}
		if dsigTag == TagDSIG && dsigLength > 0 {
			sr, err := r.sub(int(dsigOffset), int(dsigLength))
			if err != nil {
				logrus.Debugf("Collection DSIG outside file: %v", err)
			} else {
				c.Signature = append([]byte(nil), sr.data...)
			}
		}
	}

	logrus.Debugf("Collection version %d.%d with %d fonts", c.MajorVersion, c.MinorVersion, numFonts)
	for i, off := range offsets {
		f, err := parseFont(data, int(off))
		if err != nil {
			return nil, fmt.Errorf("collection font %d: %w", i, err)
		}
		c.Fonts = append(c.Fonts, f)
	}
	return c, nil
}

// Write writes `c` as a TrueType collection. Each font is laid out as for a standalone file,
// including its head.checkSumAdjustment, and tables with identical data are stored once.
func (c *Collection) Write(w io.Writer, opts *WriteOptions) error {
	fonts := make([][]assembledTable, len(c.Fonts))
	sfntVersions := make([]uint32, len(c.Fonts))
	for i, f := range c.Fonts {
		tables, err := f.assemble(&byteWriter{}, opts)
		if err != nil {
			return fmt.Errorf("collection font %d: %w", i, err)
		}
		fonts[i] = tables
		sfntVersions[i] = f.SfntVersion()
	}

	major := c.MajorVersion
	if major == 0 {
		major = 1
	}
	if c.Signature != nil {
		major = 2
		logrus.Debug("Writing collection DSIG - it no longer matches the rewritten collection")
	}

	bw := newByteWriter(w)
	err := bw.write(ttcTag, major, c.MinorVersion, uint32(len(fonts)))
	if err != nil {
		return err
	}
	dirOffsets := make([]reservation, len(fonts))
	for i := range fonts {
		dirOffsets[i] = bw.reserve(4)
	}
	var dsigRecord reservation
	if major >= 2 {
		dsigRecord = bw.reserve(12)
	}

	locations := make([][]reservation, len(fonts))
	for i, tables := range fonts {
		if err := dirOffsets[i].fill(offset32(bw.Len())); err != nil {
			return err
		}
		if err := newOffsetTable(sfntVersions[i], len(tables)).write(bw); err != nil {
			return err
		}
		locations[i] = make([]reservation, len(tables))
		for j, t := range tables {
			err = bw.write(t.tag, t.checksum)
			if err != nil {
				return err
			}
			locations[i][j] = bw.reserve(8)
		}
	}

	stored := map[string]offset32{}
	shared := 0
	for i, tables := range fonts {
		for j, t := range tables {
			off, ok := stored[string(t.data)]
			if ok {
				shared++
			} else {
				bw.pad(4)
				off = offset32(bw.Len())
				if err := bw.writeBytes(t.data); err != nil {
					return err
				}
				stored[string(t.data)] = off
			}
			if err := locations[i][j].fill(off, uint32(len(t.data))); err != nil {
				return err
			}
		}
	}
	bw.pad(4)
	logrus.Debugf("Collection: %d fonts, %d shared tables", len(fonts), shared)

	if major >= 2 {
		if c.Signature == nil {
			err = dsigRecord.fill(uint32(0), uint32(0), uint32(0))
		} else {
			off := bw.Len()
			if err := bw.writeBytes(c.Signature); err != nil {
				return err
			}
			bw.pad(4)
			err = dsigRecord.fill(TagDSIG, uint32(len(c.Signature)), offset32(off))
		}
		if err != nil {
			return err
		}
	}
	return bw.flush()
}

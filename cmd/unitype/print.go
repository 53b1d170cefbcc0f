/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/unidoc/unitype"
)

func (intp *Intp) printDirectory() {
	pterm.Info.Printf("%s: sfnt version 0x%08X, %d glyphs\n", intp.path, intp.font.SfntVersion(),
		intp.font.NumGlyphs())
	data := [][]string{{"Tag", "Checksum", "Offset", "Length"}}
	for _, ti := range intp.font.Directory() {
		data = append(data, []string{
			ti.Tag.String(),
			fmt.Sprintf("0x%08X", ti.Checksum),
			strconv.Itoa(int(ti.Offset)),
			strconv.Itoa(int(ti.Length)),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// printTable prints a summary of the table `tag`.
func (intp *Intp) printTable(tag unitype.Tag) {
	t, ok := intp.font.Table(tag)
	if !ok {
		pterm.Error.Printf("%s: not available\n", tag)
		return
	}
	pterm.DefaultSection.Println(tag.String())

	switch tt := t.(type) {
	case *unitype.HeadTable:
		pterm.Printf("version %d.%d unitsPerEm %d bbox [%d %d %d %d] indexToLocFormat %d created %s\n",
			tt.MajorVersion, tt.MinorVersion, tt.UnitsPerEm, tt.XMin, tt.YMin, tt.XMax, tt.YMax,
			tt.IndexToLocFormat, tt.Created.Time().Format("2006-01-02"))
	case *unitype.MaxpTable:
		pterm.Printf("version 0x%08X numGlyphs %d\n", uint32(tt.Version), tt.NumGlyphs)
	case *unitype.HheaTable:
		pterm.Printf("ascender %d descender %d lineGap %d numberOfMetrics %d\n",
			tt.Ascender, tt.Descender, tt.LineGap, tt.NumberOfMetrics)
	case *unitype.HmtxTable:
		pterm.Printf("%d long metrics, %d side bearings\n", len(tt.Metrics), len(tt.SideBearings))
	case *unitype.LocaTable:
		pterm.Printf("%d offsets\n", len(tt.Offsets))
	case *unitype.GlyfTable:
		simple, composite, empty := 0, 0, 0
		for _, g := range tt.Glyphs {
			switch {
			case g == nil:
				empty++
			case g.IsComposite():
				composite++
			default:
				simple++
			}
		}
		pterm.Printf("%d simple, %d composite, %d empty glyphs\n", simple, composite, empty)
	case *unitype.CmapTable:
		data := [][]string{{"Platform", "Encoding", "Format", "Language"}}
		for _, enc := range tt.Encodings {
			data = append(data, []string{
				strconv.Itoa(int(enc.PlatformID)),
				strconv.Itoa(int(enc.EncodingID)),
				strconv.Itoa(int(enc.Subtable.Format())),
				strconv.Itoa(int(enc.Subtable.Language())),
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		pterm.Printf("%d characters mapped\n", tt.Coverage().Count())
	case *unitype.NameTable:
		data := [][]string{{"Platform", "Encoding", "Language", "Name", "Value"}}
		for _, nr := range tt.Records {
			data = append(data, []string{
				strconv.Itoa(int(nr.PlatformID)),
				strconv.Itoa(int(nr.EncodingID)),
				strconv.Itoa(int(nr.LanguageID)),
				strconv.Itoa(int(nr.NameID)),
				nr.Decoded(),
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	case *unitype.OS2Table:
		pterm.Printf("version %d weight %d width %d vendor %s\n", tt.Version, tt.UsWeightClass,
			tt.UsWidthClass, tt.AchVendID)
	case *unitype.PostTable:
		pterm.Printf("version 0x%08X italicAngle %.2f, %d named glyphs\n", uint32(tt.Version),
			tt.ItalicAngle.Float64(), tt.NumNamedGlyphs())
	case *unitype.KernTable:
		for i, st := range tt.Subtables {
			pterm.Printf("subtable %d: format %d, %d pairs\n", i, st.Format, len(st.Pairs))
		}
	case *unitype.GaspTable:
		for _, gr := range tt.Ranges {
			pterm.Printf("up to %d ppem: 0x%04X\n", gr.MaxPPEM, gr.Behavior)
		}
	case *unitype.COLRTable:
		pterm.Printf("version %d, %d base glyphs\n", tt.Version, len(tt.BaseGlyphs))
	case *unitype.CPALTable:
		pterm.Printf("version %d, %d palettes of %d entries\n", tt.Version, len(tt.Palettes), tt.NumPaletteEntries)
	case *unitype.SbixTable:
		for _, s := range tt.Strikes {
			pterm.Printf("strike %d ppem, %d ppi\n", s.PPEM, s.PPI)
		}
	case *unitype.DSIGTable:
		pterm.Printf("version %d, %d signatures\n", tt.Version, len(tt.Signatures))
		for i, s := range tt.Signatures {
			certs, err := s.Certificates()
			if err != nil {
				pterm.Printf("signature %d: %v\n", i, err)
				continue
			}
			for _, c := range certs {
				pterm.Printf("signature %d: %s\n", i, c.Subject)
			}
			if err := s.Verify(); err != nil {
				pterm.Printf("signature %d: not verified: %v\n", i, err)
			} else {
				pterm.Printf("signature %d: packet verified\n", i)
			}
		}
	case *unitype.ProgramTable:
		pterm.Printf("%d bytes of instructions\n", len(tt.Instructions))
	case *unitype.UnsupportedTable:
		pterm.Printf("unsupported, %d bytes\n", len(tt.Data))
	default:
		pterm.Printf("%T\n", t)
	}
}

func (intp *Intp) printGlyph(gid unitype.GlyphIndex) error {
	glyf := intp.font.Glyf()
	if glyf == nil {
		return fmt.Errorf("%w: glyf", unitype.ErrTableNotFound)
	}
	g, err := glyf.Glyph(gid)
	if err != nil {
		return err
	}
	if g == nil {
		pterm.Printf("glyph %d has no outline\n", gid)
		return nil
	}
	pterm.Printf("glyph %d: contours %d bbox [%d %d %d %d]\n", gid, g.Header.NumberOfContours,
		g.Header.XMin, g.Header.YMin, g.Header.XMax, g.Header.YMax)
	if g.IsComposite() {
		for _, c := range g.Composite.Components {
			m := c.Matrix()
			dx, dy := m.Translation()
			pterm.Printf("  component %d flags %s args (%d, %d)\n", c.GlyphIndex, c.Flags, c.Arg1, c.Arg2)
			pterm.Printf("    matrix %s offset (%g, %g) angle %.1f\n", m, dx, dy, m.Angle())
		}
	}
	o, err := glyf.Outline(gid)
	if err != nil {
		return err
	}
	pterm.Printf("%d points, contours end at %v\n", len(o.Points), o.EndPoints)
	return nil
}

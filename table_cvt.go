/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

// CvtTable represents the Control Value Table (cvt).
// This table contains a list of values that can be referenced by instructions.
type CvtTable struct {
	Values []FWord // As many as fit the size of the table.
}

// Tag implements Table.
func (t *CvtTable) Tag() Tag { return TagCvt }

func decodeCvt(r *byteReader, ctx *decodeContext) (Table, error) {
	t := &CvtTable{}
	if r.Len()%2 != 0 {
		ctx.report("", SeverityMinor, int64(r.Len()-1), "odd table length %d", r.Len())
	}
	return t, r.readSlice(&t.Values, r.Len()/2)
}

func (t *CvtTable) encode(w *byteWriter, ctx *encodeContext) error {
	return w.writeSlice(t.Values)
}

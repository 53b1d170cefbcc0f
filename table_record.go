/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// tableRecord represents table records, including name (tag) and file offset, size
// and checksum for integrity checking.
type tableRecord struct {
	tableTag Tag      // len=4
	checksum uint32   // len=4
	offset   offset32 // len=4
	length   uint32   // len=4
}

func (tr *tableRecord) read(r *byteReader) error {
	return r.read(&tr.tableTag, &tr.checksum, &tr.offset, &tr.length)
}

func (tr *tableRecord) write(w *byteWriter) error {
	return w.write(tr.tableTag, tr.checksum, tr.offset, tr.length)
}

// tableRecords represents a set of table records in a truetype font file.
// Includes a map by table tag for quick lookup of records.
type tableRecords struct {
	list  []*tableRecord
	trMap map[Tag]*tableRecord
}

func newTableRecords() *tableRecords {
	return &tableRecords{trMap: map[Tag]*tableRecord{}}
}

// Set adds or replaces the record for `tag`.
func (trs *tableRecords) Set(tag Tag, offset int64, length int, checksum uint32) {
	newRec := &tableRecord{
		tableTag: tag,
		offset:   offset32(offset),
		length:   uint32(length),
		checksum: checksum,
	}

	found := false
	for i := range trs.list {
		if trs.list[i].tableTag == tag {
			trs.list[i] = newRec
			found = true
		}
	}
	if !found {
		trs.list = append(trs.list, newRec)
	}
	trs.trMap[tag] = newRec
}

// Remove drops the record for `tag`.
func (trs *tableRecords) Remove(tag Tag) {
	delete(trs.trMap, tag)
	for i, tr := range trs.list {
		if tr.tableTag == tag {
			trs.list = append(trs.list[:i], trs.list[i+1:]...)
			return
		}
	}
}

func parseTableRecords(r *byteReader, numTables int) (*tableRecords, error) {
	trs := newTableRecords()

	if numTables < 0 {
		logrus.Debug("Invalid number of tables")
		return nil, errRangeCheck
	}

	for i := 0; i < numTables; i++ {
		var rec tableRecord
		err := rec.read(r)
		if err != nil {
			return nil, err
		}
		if _, dup := trs.trMap[rec.tableTag]; dup {
			logrus.Debugf("Duplicate table record %s - keeping first", rec.tableTag)
			continue
		}
		trs.list = append(trs.list, &rec)
		trs.trMap[rec.tableTag] = &rec
	}

	return trs, nil
}

// byOffset returns the records sorted by file offset.
func (trs *tableRecords) byOffset() []*tableRecord {
	list := append([]*tableRecord(nil), trs.list...)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].offset < list[j].offset
	})
	return list
}

func (trs *tableRecords) String() string {
	var buf bytes.Buffer
	for i, tr := range trs.list {
		buf.WriteString(fmt.Sprintf("Table record %d: %s checksum=0x%08X offset=%d length=%d\n",
			i+1, tr.tableTag, tr.checksum, tr.offset, tr.length))
	}
	return buf.String()
}

/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

/*
 A dfont is a Macintosh resource fork stored in the data fork of a file. Each resource of type
 'sfnt' holds a complete font.
 https://developer.apple.com/library/archive/documentation/mac/pdf/MoreMacintoshToolbox.pdf (1-121)

 header:   dataOffset, mapOffset, dataLength, mapLength (uint32 each)
 map:      16 bytes header copy, 4 next handle, 2 file ref, 2 attributes,
           typeListOffset, nameListOffset (uint16, from the map start)
 typeList: numTypes-1 (uint16), then per type: type (Tag), numResources-1, refListOffset
           (uint16, from the type list start)
 refList:  id, nameOffset (uint16), attributes (uint8), dataOffset (uint24, from the data start),
           reserved (uint32)
 data:     length (uint32) then the resource bytes
*/

var sfntResourceType = MakeTag("sfnt")

// dfontHeader is the resource fork header.
type dfontHeader struct {
	dataOffset uint32
	mapOffset  uint32
	dataLength uint32
	mapLength  uint32
}

func readDfontHeader(data []byte) (*dfontHeader, error) {
	h := &dfontHeader{}
	err := newByteReader(data).read(&h.dataOffset, &h.mapOffset, &h.dataLength, &h.mapLength)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// isDfont returns true if `data` starts with a plausible resource fork header.
func isDfont(data []byte) bool {
	h, err := readDfontHeader(data)
	if err != nil {
		return false
	}
	n := uint64(len(data))
	return h.dataOffset >= 16 && h.mapLength >= 28 &&
		uint64(h.dataOffset)+uint64(h.dataLength) <= n &&
		uint64(h.mapOffset)+uint64(h.mapLength) <= n
}

// ParseDfont parses the 'sfnt' resources of the resource fork in `data`, in resource list order.
func ParseDfont(data []byte) (*Collection, error) {
	h, err := readDfontHeader(data)
	if err != nil {
		return nil, err
	}
	r := newByteReader(data)
	mr, err := r.sub(int(h.mapOffset), int(h.mapLength))
	if err != nil {
		return nil, err
	}

	var typeListOffset, nameListOffset uint16
	err = mr.Seek(24)
	if err != nil {
		return nil, err
	}
	err = mr.read(&typeListOffset, &nameListOffset)
	if err != nil {
		return nil, err
	}

	err = mr.Seek(int64(typeListOffset))
	if err != nil {
		return nil, err
	}
	numTypes, err := mr.readUint16()
	if err != nil {
		return nil, err
	}

	c := &Collection{MajorVersion: 1}
	for i := 0; i <= int(numTypes); i++ {
		var resType Tag
		var numRes, refListOffset uint16
		err = mr.read(&resType, &numRes, &refListOffset)
		if err != nil {
			return nil, err
		}
		logrus.Debugf("dfont resource type %s: %d resources", resType, int(numRes)+1)
		if resType != sfntResourceType {
			continue
		}

		rr, err := mr.sub(int(typeListOffset)+int(refListOffset), 12*(int(numRes)+1))
		if err != nil {
			return nil, err
		}
		for j := 0; j <= int(numRes); j++ {
			var id, nameOffset uint16
			var attrOffset, reserved uint32
			err = rr.read(&id, &nameOffset, &attrOffset, &reserved)
			if err != nil {
				return nil, err
			}
			off := int(h.dataOffset) + int(attrOffset&0xFFFFFF)
			dr, err := r.sub(off, 4)
			if err != nil {
				return nil, err
			}
			length, err := dr.readUint32()
			if err != nil {
				return nil, err
			}
			fr, err := r.sub(off+4, int(length))
			if err != nil {
				return nil, fmt.Errorf("dfont resource %d: %w", id, err)
			}
			f, err := parseFont(fr.data, 0)
			if err != nil {
				return nil, fmt.Errorf("dfont resource %d: %w", id, err)
			}
			c.Fonts = append(c.Fonts, f)
		}
	}
	if len(c.Fonts) == 0 {
		return nil, fmt.Errorf("%w: dfont without sfnt resources", ErrUnsupportedFormat)
	}
	return c, nil
}

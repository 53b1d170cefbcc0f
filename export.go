/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Container formats recognized by the parse functions.
const (
	formatSfnt = iota
	formatCollection
	formatDfont
)

var ttcTag = MakeTag("ttcf")

// detectFormat determines the container format of `data` from its first bytes.
func detectFormat(data []byte) (int, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: %d bytes", ErrTruncatedInput, len(data))
	}
	if bytes.Equal(data[:4], ttcTag[:]) {
		return formatCollection, nil
	}
	r := newByteReader(data)
	version, _ := r.readUint32()
	if isKnownSfntVersion(version) {
		return formatSfnt, nil
	}
	if isDfont(data) {
		return formatDfont, nil
	}
	logrus.Debugf("Unrecognized font header 0x%08X", version)
	return 0, fmt.Errorf("%w: font header 0x%08X", ErrUnsupportedFormat, version)
}

// Parse parses the truetype font from `rs` and returns a new Font. For collections and dfont
// files the first font is returned.
func Parse(rs io.ReadSeeker) (*Font, error) {
	_, err := rs.Seek(0, io.SeekStart)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(rs)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data)
}

// ParseBytes parses the font in `data`. The returned Font refers to `data`, which must not be
// modified afterwards. For collections and dfont files the first font is returned.
func ParseBytes(data []byte) (*Font, error) {
	format, err := detectFormat(data)
	if err != nil {
		return nil, err
	}
	if format == formatSfnt {
		return parseFont(data, 0)
	}

	c, err := parseContainer(data, format)
	if err != nil {
		return nil, err
	}
	if len(c.Fonts) == 0 {
		return nil, fmt.Errorf("%w: empty font collection", ErrUnsupportedFormat)
	}
	return c.Fonts[0], nil
}

// ParseFile parses the truetype font from file given by path.
func ParseFile(filePath string) (*Font, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}

	defer f.Close()
	return Parse(f)
}

// ParseCollectionBytes parses a TrueType collection, a dfont resource fork or a single font in
// `data`. A single font yields a collection of one.
func ParseCollectionBytes(data []byte) (*Collection, error) {
	format, err := detectFormat(data)
	if err != nil {
		return nil, err
	}
	if format == formatSfnt {
		f, err := parseFont(data, 0)
		if err != nil {
			return nil, err
		}
		return &Collection{MajorVersion: 1, Fonts: []*Font{f}}, nil
	}
	return parseContainer(data, format)
}

// ParseCollectionFile parses the collection in the file given by path.
func ParseCollectionFile(filePath string) (*Collection, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseCollectionBytes(data)
}

func parseContainer(data []byte, format int) (*Collection, error) {
	if format == formatDfont {
		return ParseDfont(data)
	}
	return parseCollection(data)
}

// ValidateFile validates the truetype font given by `filePath`.
func ValidateFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return Validate(data)
}

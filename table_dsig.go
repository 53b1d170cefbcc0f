/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import (
	"crypto/x509"
	"fmt"

	"github.com/gunnsth/pkcs7"
	"github.com/sirupsen/logrus"
)

// DSIGTable represents the digital signature table (DSIG).
// https://docs.microsoft.com/en-us/typography/opentype/spec/dsig
type DSIGTable struct {
	Version    uint32
	Flags      uint16
	Signatures []*DSIGSignature
}

// DSIGSignature is a signature block. Format 1 blocks hold a PKCS#7 packet in Data, other formats
// keep the whole block in Data.
type DSIGSignature struct {
	Format uint32
	Data   []byte
}

// dsigFlagCannotResign prohibits re-signing by anyone other than the font owner.
const dsigFlagCannotResign uint16 = 1

// Tag implements Table.
func (t *DSIGTable) Tag() Tag { return TagDSIG }

// NewDSIGTable returns an empty signature table, a placeholder for fonts that are signed later.
func NewDSIGTable() *DSIGTable {
	return &DSIGTable{Version: 1}
}

// CannotResign returns true if only the font owner may re-sign the font.
func (t *DSIGTable) CannotResign() bool {
	return t.Flags&dsigFlagCannotResign != 0
}

// PKCS7 parses the signature packet of a format 1 block.
func (s *DSIGSignature) PKCS7() (*pkcs7.PKCS7, error) {
	if s.Format != 1 {
		return nil, fmt.Errorf("%w: signature format %d", ErrUnsupportedFormat, s.Format)
	}
	return pkcs7.Parse(s.Data)
}

// Certificates returns the certificates carried by the signature.
func (s *DSIGSignature) Certificates() ([]*x509.Certificate, error) {
	p7, err := s.PKCS7()
	if err != nil {
		return nil, err
	}
	return p7.Certificates, nil
}

// Verify checks the signature against the content embedded in the packet. The embedded content
// holds the font digest, comparing it to the font's data is up to the caller.
func (s *DSIGSignature) Verify() error {
	p7, err := s.PKCS7()
	if err != nil {
		return err
	}
	return p7.Verify()
}

func decodeDSIG(r *byteReader, ctx *decodeContext) (Table, error) {
	t := &DSIGTable{}
	var numSignatures uint16
	err := r.read(&t.Version, &numSignatures, &t.Flags)
	if err != nil {
		return nil, err
	}
	if t.Version != 1 {
		ctx.report("version", SeverityMinor, 0, "unexpected version %d", t.Version)
	}

	for i := 0; i < int(numSignatures); i++ {
		var format, length uint32
		var offset offset32
		err = r.read(&format, &length, &offset)
		if err != nil {
			return nil, err
		}
		section := fmt.Sprintf("signature %d", i)
		br, err := r.sub(int(offset), int(length))
		if err != nil {
			ctx.report(section, SeverityMajor, int64(offset), "%v", err)
			continue
		}
		s := &DSIGSignature{Format: format}
		if format != 1 {
			logrus.Debugf("DSIG signature format %d - kept as raw data", format)
			s.Data = append([]byte(nil), br.data...)
			t.Signatures = append(t.Signatures, s)
			continue
		}
		var reserved1, reserved2 uint16
		var sigLen uint32
		err = br.read(&reserved1, &reserved2, &sigLen)
		if err == nil {
			err = br.readBytes(&s.Data, int(sigLen))
		}
		if err != nil {
			ctx.report(section, SeverityMajor, int64(offset), "%v", err)
			continue
		}
		t.Signatures = append(t.Signatures, s)
	}
	return t, nil
}

func (t *DSIGTable) encode(w *byteWriter, ctx *encodeContext) error {
	if len(t.Signatures) > 0 {
		logrus.Debug("Writing DSIG signatures - they no longer match the rewritten font")
	}
	err := w.write(t.Version, uint16(len(t.Signatures)), t.Flags)
	if err != nil {
		return err
	}
	offsets := make([]reservation, len(t.Signatures))
	for i, s := range t.Signatures {
		length := len(s.Data)
		if s.Format == 1 {
			length += 8
		}
		err = w.write(s.Format, uint32(length))
		if err != nil {
			return err
		}
		offsets[i] = w.reserve(4)
	}
	for i, s := range t.Signatures {
		if err := offsets[i].fill(offset32(w.Len())); err != nil {
			return err
		}
		if s.Format == 1 {
			err = w.write(uint16(0), uint16(0), uint32(len(s.Data)))
			if err != nil {
				return err
			}
		}
		if err := w.writeBytes(s.Data); err != nil {
			return err
		}
	}
	return nil
}

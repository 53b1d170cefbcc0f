/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package unitype supports loading and writing TrueType and OpenType fonts. It decodes the table
// directory and the individual tables into editable Go values and writes them back out as a valid
// font, recomputing lengths, offsets, loca format and checksums.
//
// Tables are decoded lazily on first access. Tables the package does not understand are kept as
// UnsupportedTable values and are only written when WriteOptions.KeepUnsupported is set.
// Problems found while decoding are not fatal: the affected table is treated as absent and the
// issue is recorded as a Diagnostic on the Font.
package unitype

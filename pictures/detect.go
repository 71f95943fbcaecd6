// Package pictures detects formats of embedded pictures and converts
// vector formats browsers cannot show into PNG.
package pictures

import (
	"bytes"
	"encoding/binary"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

var (
	typeWMF = filetype.NewType("wmf", "image/wmf")
	typeEMF = filetype.NewType("emf", "image/emf")
	typeSVG = filetype.NewType("svg", "image/svg+xml")
)

func init() {
	filetype.AddMatcher(typeWMF, isWMF)
	filetype.AddMatcher(typeEMF, isEMF)
	filetype.AddMatcher(typeSVG, isSVG)
}

// Format of picture data.
type Format struct {
	Ext  string
	MIME string
}

var (
	FormatUnknown = Format{}
	FormatPNG     = Format{Ext: "png", MIME: "image/png"}
	FormatWMF     = fromType(typeWMF)
	FormatEMF     = fromType(typeEMF)
	FormatSVG     = fromType(typeSVG)
)

func fromType(t types.Type) Format {
	return Format{Ext: t.Extension, MIME: t.MIME.Value}
}

// IsVector reports whether format needs conversion before it could be shown
// by a browser.
func (f Format) IsVector() bool {
	return f == FormatWMF || f == FormatEMF || f == FormatSVG
}

// Detect sniffs picture format from magic bytes.
func Detect(data []byte) Format {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return FormatUnknown
	}
	return fromType(kind)
}

// isWMF accepts placeable metafile header and bare memory or disk metafile
// header.
func isWMF(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	if binary.LittleEndian.Uint32(buf) == 0x9AC6CDD7 {
		return true
	}
	return (buf[0] == 0x01 || buf[0] == 0x02) && buf[1] == 0x00 && buf[2] == 0x09 && buf[3] == 0x00
}

// isEMF checks EMR_HEADER record type and " EMF" signature.
func isEMF(buf []byte) bool {
	return len(buf) >= 44 && binary.LittleEndian.Uint32(buf) == 1 && string(buf[40:44]) == " EMF"
}

func isSVG(buf []byte) bool {
	head := buf[:min(len(buf), 4096)]
	head = bytes.TrimLeft(head, "\xef\xbb\xbf \t\r\n")
	if !bytes.HasPrefix(head, []byte("<")) {
		return false
	}
	return bytes.Contains(head, []byte("<svg"))
}

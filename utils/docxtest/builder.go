// Package docxtest builds small WordprocessingML packages for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"maps"
	"os"
	"sort"
	"strings"
)

const nsDecl = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture" ` +
	`xmlns:v="urn:schemas-microsoft-com:vml" ` +
	`xmlns:o="urn:schemas-microsoft-com:office:office"`

// Run describes a single w:r.
type Run struct {
	Text       string
	Bold       bool
	Italic     bool
	Underline  bool
	HalfPoints int
	Style      string
	// Footnote id referenced by run.
	Footnote string
	// Image relationship id, DrawingML picture.
	Image string
	// VML picture relationship id (typical for WMF).
	VML         string
	Description string
}

// Builder accumulates document content. Methods return builder for chaining.
type Builder struct {
	body      strings.Builder
	styles    strings.Builder
	footnotes strings.Builder
	rels      []string
	media     map[string][]byte
	title     string
	skipParts map[string]bool
	override  map[string]string
}

func New() *Builder {
	return &Builder{
		media:     make(map[string][]byte),
		skipParts: make(map[string]bool),
		override:  make(map[string]string),
	}
}

// Title sets docProps/core.xml title.
func (b *Builder) Title(title string) *Builder {
	b.title = title
	return b
}

// ParagraphStyle defines paragraph style, size is in half points (0 - not set).
func (b *Builder) ParagraphStyle(id, name string, bold bool, halfPoints int) *Builder {
	fmt.Fprintf(&b.styles, `<w:style w:type="paragraph" w:styleId="%s"><w:name w:val="%s"/>`, esc(id), esc(name))
	b.styles.WriteString(runProps(Run{Bold: bold, HalfPoints: halfPoints}))
	b.styles.WriteString(`</w:style>`)
	return b
}

// Text adds paragraph with single plain run.
func (b *Builder) Text(style, text string) *Builder {
	return b.Paragraph(style, "", Run{Text: text})
}

// Paragraph adds paragraph with given style, alignment and runs.
func (b *Builder) Paragraph(style, align string, runs ...Run) *Builder {
	b.body.WriteString(Paragraph(style, align, runs...))
	return b
}

// Raw adds arbitrary body XML.
func (b *Builder) Raw(x string) *Builder {
	b.body.WriteString(x)
	return b
}

// Footnote adds footnote body.
func (b *Builder) Footnote(id, text string) *Builder {
	fmt.Fprintf(&b.footnotes, `<w:footnote w:id="%s"><w:p><w:r><w:footnoteRef/></w:r><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p></w:footnote>`, esc(id), esc(text))
	return b
}

// Media adds media part and relationship pointing to it.
func (b *Builder) Media(relID, name string, data []byte) *Builder {
	b.rels = append(b.rels, fmt.Sprintf(`<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/%s"/>`, esc(relID), esc(name)))
	b.media["word/media/"+name] = data
	return b
}

// Without drops named part from produced package.
func (b *Builder) Without(part string) *Builder {
	b.skipParts[part] = true
	return b
}

// Part replaces generated content of named part.
func (b *Builder) Part(name, content string) *Builder {
	b.override[name] = content
	return b
}

// Bytes produces DOCX package.
func (b *Builder) Bytes() ([]byte, error) {
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document ` + nsDecl + `><w:body>` +
			b.body.String() + `<w:sectPr/></w:body></w:document>`,
		"word/styles.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:styles ` + nsDecl + `>` +
			`<w:docDefaults><w:rPrDefault><w:rPr><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults>` +
			`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
			b.styles.String() + `</w:styles>`,
		"word/footnotes.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:footnotes ` + nsDecl + `>` +
			`<w:footnote w:type="separator" w:id="-1"><w:p><w:r><w:separator/></w:r></w:p></w:footnote>` +
			b.footnotes.String() + `</w:footnotes>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
			strings.Join(b.rels, "") + `</Relationships>`,
		"docProps/core.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>` +
			esc(b.title) + `</dc:title></cp:coreProperties>`,
	}

	maps.Copy(parts, b.override)

	names := make([]string, 0, len(parts)+len(b.media))
	for name := range parts {
		names = append(names, name)
	}
	for name := range b.media {
		names = append(names, name)
	}
	sort.Strings(names)

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for _, name := range names {
		if b.skipParts[name] {
			continue
		}
		fw, err := w.Create(name)
		if err != nil {
			return nil, err
		}
		data, ok := b.media[name]
		if !ok {
			data = []byte(parts[name])
		}
		if _, err := fw.Write(data); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes DOCX package to disk.
func (b *Builder) WriteFile(fname string) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(fname, data, 0644)
}

// Paragraph returns w:p XML, useful for table cells.
func Paragraph(style, align string, runs ...Run) string {
	var sb strings.Builder
	sb.WriteString(`<w:p>`)
	if style != "" || align != "" {
		sb.WriteString(`<w:pPr>`)
		if style != "" {
			fmt.Fprintf(&sb, `<w:pStyle w:val="%s"/>`, esc(style))
		}
		if align != "" {
			fmt.Fprintf(&sb, `<w:jc w:val="%s"/>`, esc(align))
		}
		sb.WriteString(`</w:pPr>`)
	}
	for _, r := range runs {
		sb.WriteString(`<w:r>`)
		sb.WriteString(runProps(r))
		if r.Text != "" {
			fmt.Fprintf(&sb, `<w:t xml:space="preserve">%s</w:t>`, esc(r.Text))
		}
		if r.Footnote != "" {
			fmt.Fprintf(&sb, `<w:footnoteReference w:id="%s"/>`, esc(r.Footnote))
		}
		if r.Image != "" {
			fmt.Fprintf(&sb, `<w:drawing><wp:inline><wp:docPr id="1" name="Picture" descr="%s"/><a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="%s"/></pic:blipFill></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`,
				esc(r.Description), esc(r.Image))
		}
		if r.VML != "" {
			fmt.Fprintf(&sb, `<w:pict><v:shape><v:imagedata r:id="%s" o:title="%s"/></v:shape></w:pict>`, esc(r.VML), esc(r.Description))
		}
		sb.WriteString(`</w:r>`)
	}
	sb.WriteString(`</w:p>`)
	return sb.String()
}

// Cell describes table cell for Table.
type Cell struct {
	Text    string
	Span    int
	VMerge  string // "", "restart" or "continue"
	Content string // raw cell content, replaces Text when set
}

// Table returns w:tbl XML with given grid width.
func Table(gridCols int, rows ...[]Cell) string {
	var sb strings.Builder
	sb.WriteString(`<w:tbl><w:tblPr/><w:tblGrid>`)
	for range gridCols {
		sb.WriteString(`<w:gridCol w:w="1000"/>`)
	}
	sb.WriteString(`</w:tblGrid>`)
	for _, row := range rows {
		sb.WriteString(`<w:tr>`)
		for _, c := range row {
			sb.WriteString(`<w:tc><w:tcPr>`)
			if c.Span > 1 {
				fmt.Fprintf(&sb, `<w:gridSpan w:val="%d"/>`, c.Span)
			}
			switch c.VMerge {
			case "restart":
				sb.WriteString(`<w:vMerge w:val="restart"/>`)
			case "continue":
				sb.WriteString(`<w:vMerge/>`)
			}
			sb.WriteString(`</w:tcPr>`)
			if c.Content != "" {
				sb.WriteString(c.Content)
			} else {
				sb.WriteString(Paragraph("", "", Run{Text: c.Text}))
			}
			sb.WriteString(`</w:tc>`)
		}
		sb.WriteString(`</w:tr>`)
	}
	sb.WriteString(`</w:tbl>`)
	return sb.String()
}

func runProps(r Run) string {
	if !r.Bold && !r.Italic && !r.Underline && r.HalfPoints == 0 && r.Style == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<w:rPr>`)
	if r.Style != "" {
		fmt.Fprintf(&sb, `<w:rStyle w:val="%s"/>`, esc(r.Style))
	}
	if r.Bold {
		sb.WriteString(`<w:b/>`)
	}
	if r.Italic {
		sb.WriteString(`<w:i/>`)
	}
	if r.Underline {
		sb.WriteString(`<w:u w:val="single"/>`)
	}
	if r.HalfPoints > 0 {
		fmt.Fprintf(&sb, `<w:sz w:val="%d"/>`, r.HalfPoints)
	}
	sb.WriteString(`</w:rPr>`)
	return sb.String()
}

func esc(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

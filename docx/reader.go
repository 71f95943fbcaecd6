package docx

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"docx2nav/archive"
)

const (
	documentPart  = "word/document.xml"
	stylesPart    = "word/styles.xml"
	footnotesPart = "word/footnotes.xml"
	endnotesPart  = "word/endnotes.xml"
	relsPart      = "word/_rels/document.xml.rels"
	corePart      = "docProps/core.xml"

	// maxPartSize limits uncompressed size of a single package part.
	maxPartSize = 512 << 20
	// maxDepth limits element nesting we are willing to descend into.
	maxDepth = 256
)

// Open reads DOCX file from disk. Any error here is fatal for the run.
func Open(fname string, log *zap.Logger) (*Document, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("unable to open document: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("unable to stat document: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("document is not a regular file: %s", fname)
	}
	return Parse(f, fi.Size(), log)
}

// Parse reads DOCX package from r.
func Parse(r io.ReaderAt, size int64, log *zap.Logger) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("document is not a valid OOXML package: %w", err)
	}

	parts, err := archive.ReadParts(zr, maxPartSize, archive.Prefix("word/", corePart))
	if err != nil {
		return nil, err
	}
	if _, ok := parts[documentPart]; !ok {
		return nil, fmt.Errorf("document is not a valid OOXML package: %s is missing", documentPart)
	}

	p := &parser{log: log, parts: parts}
	return p.parse()
}

type parser struct {
	log       *zap.Logger
	parts     map[string][]byte
	styles    *styles
	rels      map[string]string
	malformed int
}

func (p *parser) xml(name string) (*etree.Document, error) {
	data, ok := p.parts[name]
	if !ok {
		return nil, nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", name, err)
	}
	return doc, nil
}

// optional parts are allowed to be broken, we just lose some formatting.
func (p *parser) optionalXML(name string) *etree.Document {
	doc, err := p.xml(name)
	if err != nil {
		p.log.Warn("Unable to parse package part, ignoring", zap.String("part", name), zap.Error(err))
		p.malformed++
		return nil
	}
	return doc
}

func (p *parser) parse() (*Document, error) {
	body, err := p.xml(documentPart)
	if err != nil {
		return nil, err
	}
	root := body.Root()
	if root == nil || root.Tag != "document" {
		return nil, fmt.Errorf("unexpected root element in %s", documentPart)
	}

	p.styles = parseStyles(p.optionalXML(stylesPart), p.log)
	p.rels = parseRels(p.optionalXML(relsPart), p.log)

	doc := &Document{
		Title: parseCoreTitle(p.optionalXML(corePart)),
		Notes: make(map[string]string),
	}
	p.notes(p.optionalXML(footnotesPart), "footnote", "", doc.Notes)
	p.notes(p.optionalXML(endnotesPart), "endnote", "e", doc.Notes)

	bodyEl := root.SelectElement("body")
	if bodyEl == nil {
		return nil, fmt.Errorf("document has no body")
	}
	for _, el := range p.blocks(bodyEl, 0) {
		pos := len(doc.Elements)
		switch el.Tag {
		case "p":
			doc.Elements = append(doc.Elements, p.paragraph(el, pos))
		case "tbl":
			doc.Elements = append(doc.Elements, p.table(el, pos, 0))
		}
	}
	doc.Malformed = p.malformed

	p.log.Debug("Document read",
		zap.Int("elements", len(doc.Elements)), zap.Int("notes", len(doc.Notes)),
		zap.Int("styles", len(p.styles.byID)), zap.Int("malformed", doc.Malformed))
	return doc, nil
}

// blocks collects block level paragraphs and tables in document order,
// looking through content controls and custom XML wrappers.
func (p *parser) blocks(parent *etree.Element, depth int) []*etree.Element {
	if depth > maxDepth {
		p.log.Warn("Element nesting is too deep, skipping", zap.String("tag", parent.Tag), zap.Int("depth", depth))
		p.malformed++
		return nil
	}
	var res []*etree.Element
	for _, el := range parent.ChildElements() {
		switch el.Tag {
		case "p", "tbl":
			res = append(res, el)
		case "sdt":
			if content := el.SelectElement("sdtContent"); content != nil {
				res = append(res, p.blocks(content, depth+1)...)
			}
		case "customXml", "ins":
			res = append(res, p.blocks(el, depth+1)...)
		case "sectPr", "bookmarkStart", "bookmarkEnd", "proofErr", "del",
			"commentRangeStart", "commentRangeEnd", "permStart", "permEnd":
		default:
			p.log.Debug("Unexpected block element, ignoring", zap.String("parent", parent.Tag), zap.String("tag", el.Tag))
		}
	}
	return res
}

func (p *parser) paragraph(el *etree.Element, pos int) *Paragraph {
	para := &Paragraph{Pos: pos}
	var direct string
	if ppr := el.SelectElement("pPr"); ppr != nil {
		if ps := ppr.SelectElement("pStyle"); ps != nil {
			para.StyleID = ps.SelectAttrValue("val", "")
		}
		if jc := ppr.SelectElement("jc"); jc != nil {
			direct = jc.SelectAttrValue("val", "")
		}
	}
	if para.StyleID == "" {
		para.StyleID = p.styles.defaultPara
	}
	para.StyleName = p.styles.name(para.StyleID)
	para.Align = direct
	if para.Align == "" {
		para.Align = p.styles.align(para.StyleID)
	}

	base := p.styles.runs(para.StyleID).over(p.styles.defaults)
	p.inline(el, para, base, 0)
	return para
}

// inline walks paragraph content collecting runs.
func (p *parser) inline(parent *etree.Element, para *Paragraph, base runProps, depth int) {
	if depth > maxDepth {
		p.log.Warn("Inline nesting is too deep, skipping", zap.Int("paragraph", para.Pos))
		p.malformed++
		return
	}
	for _, el := range parent.ChildElements() {
		switch el.Tag {
		case "r":
			para.Runs = append(para.Runs, p.run(el, base))
		case "hyperlink", "ins", "smartTag", "fldSimple", "customXml", "bdo", "dir", "moveTo":
			p.inline(el, para, base, depth+1)
		case "sdt":
			if content := el.SelectElement("sdtContent"); content != nil {
				p.inline(content, para, base, depth+1)
			}
		case "pPr", "del", "moveFrom", "bookmarkStart", "bookmarkEnd", "proofErr",
			"commentRangeStart", "commentRangeEnd", "permStart", "permEnd", "oMath", "oMathPara":
		default:
			p.log.Debug("Unexpected inline element, ignoring", zap.Int("paragraph", para.Pos), zap.String("tag", el.Tag))
		}
	}
}

func (p *parser) run(el *etree.Element, base runProps) Run {
	rp := base
	if rpr := el.SelectElement("rPr"); rpr != nil {
		if rs := rpr.SelectElement("rStyle"); rs != nil {
			rp = p.styles.runs(rs.SelectAttrValue("val", "")).over(rp)
		}
		rp = parseRunProps(rpr).over(rp)
	}

	var (
		run Run
		sb  strings.Builder
	)
	rp.apply(&run)
	for _, c := range el.ChildElements() {
		switch c.Tag {
		case "t":
			sb.WriteString(c.Text())
		case "tab", "ptab":
			sb.WriteByte('\t')
		case "br", "cr":
			sb.WriteByte('\n')
		case "noBreakHyphen":
			sb.WriteByte('-')
		case "footnoteReference":
			if id := c.SelectAttrValue("id", ""); id != "" {
				run.Notes = append(run.Notes, id)
			}
		case "endnoteReference":
			if id := c.SelectAttrValue("id", ""); id != "" {
				run.Notes = append(run.Notes, "e"+id)
			}
		case "drawing":
			run.Images = append(run.Images, p.drawing(c)...)
		case "pict", "object":
			run.Images = append(run.Images, p.vml(c)...)
		case "AlternateContent":
			// Choice and Fallback describe the same picture
			if choice := c.SelectElement("Choice"); choice != nil {
				for _, d := range descendants(choice, "drawing") {
					run.Images = append(run.Images, p.drawing(d)...)
				}
			}
		}
	}
	run.Text = sb.String()
	return run
}

func (p *parser) drawing(el *etree.Element) []Image {
	var descr string
	if pr := firstDescendant(el, "docPr"); pr != nil {
		descr = pr.SelectAttrValue("descr", "")
		if descr == "" {
			descr = pr.SelectAttrValue("title", "")
		}
	}
	var res []Image
	for _, blip := range descendants(el, "blip") {
		id := blip.SelectAttrValue("embed", "")
		if id == "" {
			id = blip.SelectAttrValue("link", "")
		}
		res = append(res, p.image(id, descr))
	}
	return res
}

func (p *parser) vml(el *etree.Element) []Image {
	var res []Image
	for _, data := range descendants(el, "imagedata") {
		id := data.SelectAttrValue("r:id", "")
		if id == "" {
			continue
		}
		descr := data.SelectAttrValue("title", "")
		if descr == "" {
			if shape := firstDescendant(el, "shape"); shape != nil {
				descr = shape.SelectAttrValue("alt", "")
			}
		}
		res = append(res, p.image(id, descr))
	}
	return res
}

func (p *parser) image(relID, descr string) Image {
	img := Image{RelID: relID, Description: strings.TrimSpace(descr)}
	if target, ok := p.rels[relID]; ok {
		img.Target = target
		img.Data = p.parts[target]
	}
	return img
}

func (p *parser) table(el *etree.Element, pos, depth int) *Table {
	t := &Table{Pos: pos}
	if pr := el.SelectElement("tblPr"); pr != nil {
		if ts := pr.SelectElement("tblStyle"); ts != nil {
			t.StyleName = p.styles.name(ts.SelectAttrValue("val", ""))
		}
	}
	if grid := el.SelectElement("tblGrid"); grid != nil {
		t.GridCols = len(grid.SelectElements("gridCol"))
	}
	for _, tr := range containers(el, "tr") {
		var row Row
		if pr := tr.SelectElement("trPr"); pr != nil {
			row.Before = intAttr(pr.SelectElement("gridBefore"))
			row.After = intAttr(pr.SelectElement("gridAfter"))
		}
		for _, tc := range containers(tr, "tc") {
			cell := Cell{Span: 1}
			if pr := tc.SelectElement("tcPr"); pr != nil {
				cell.Span = max(intAttr(pr.SelectElement("gridSpan")), 1)
				if vm := pr.SelectElement("vMerge"); vm != nil {
					cell.VMerge = VMergeContinue
					if vm.SelectAttrValue("val", "") == "restart" {
						cell.VMerge = VMergeRestart
					}
				}
			}
			cell.Paragraphs = p.cellParagraphs(tc, pos, depth)
			row.Cells = append(row.Cells, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// cellParagraphs returns cell paragraphs, nested tables are flattened in
// reading order.
func (p *parser) cellParagraphs(tc *etree.Element, pos, depth int) []*Paragraph {
	var res []*Paragraph
	for _, el := range p.blocks(tc, depth+1) {
		switch el.Tag {
		case "p":
			res = append(res, p.paragraph(el, pos))
		case "tbl":
			if depth+1 > maxDepth {
				p.malformed++
				continue
			}
			nested := p.table(el, pos, depth+1)
			for _, row := range nested.Rows {
				for _, cell := range row.Cells {
					res = append(res, cell.Paragraphs...)
				}
			}
		}
	}
	return res
}

// notes reads footnotes or endnotes part.
func (p *parser) notes(doc *etree.Document, tag, prefix string, into map[string]string) {
	if doc == nil || doc.Root() == nil {
		return
	}
	for _, el := range doc.Root().SelectElements(tag) {
		switch el.SelectAttrValue("type", "normal") {
		case "separator", "continuationSeparator", "continuationNotice":
			continue
		}
		id := el.SelectAttrValue("id", "")
		if id == "" {
			p.malformed++
			continue
		}
		var lines []string
		for _, b := range p.blocks(el, 0) {
			if b.Tag != "p" {
				continue
			}
			if text := strings.TrimSpace(p.paragraph(b, -1).Text()); text != "" {
				lines = append(lines, text)
			}
		}
		into[prefix+id] = strings.Join(lines, "\n")
	}
}

func parseRels(doc *etree.Document, log *zap.Logger) map[string]string {
	rels := make(map[string]string)
	if doc == nil || doc.Root() == nil {
		return rels
	}
	for _, el := range doc.Root().SelectElements("Relationship") {
		if el.SelectAttrValue("TargetMode", "") == "External" {
			continue
		}
		id, target := el.SelectAttrValue("Id", ""), el.SelectAttrValue("Target", "")
		if id == "" || target == "" {
			log.Debug("Incomplete relationship, ignoring", zap.String("id", id), zap.String("target", target))
			continue
		}
		if strings.HasPrefix(target, "/") {
			target = path.Clean(strings.TrimPrefix(target, "/"))
		} else {
			target = path.Join("word", target)
		}
		rels[id] = target
	}
	return rels
}

func parseCoreTitle(doc *etree.Document) string {
	if doc == nil || doc.Root() == nil {
		return ""
	}
	if el := doc.Root().SelectElement("title"); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

// containers returns children with requested tag looking through content
// controls and custom XML, as Word allows both around rows and cells.
func containers(parent *etree.Element, tag string) []*etree.Element {
	var res []*etree.Element
	for _, el := range parent.ChildElements() {
		switch el.Tag {
		case tag:
			res = append(res, el)
		case "sdt":
			if content := el.SelectElement("sdtContent"); content != nil {
				res = append(res, containers(content, tag)...)
			}
		case "customXml":
			res = append(res, containers(el, tag)...)
		}
	}
	return res
}

// descendants returns all elements with requested tag in document order.
func descendants(el *etree.Element, tag string) []*etree.Element {
	var res []*etree.Element
	var walk func(e *etree.Element, depth int)
	walk = func(e *etree.Element, depth int) {
		if depth > maxDepth {
			return
		}
		for _, c := range e.ChildElements() {
			if c.Tag == tag {
				res = append(res, c)
			}
			walk(c, depth+1)
		}
	}
	walk(el, 0)
	return res
}

func firstDescendant(el *etree.Element, tag string) *etree.Element {
	if res := descendants(el, tag); len(res) > 0 {
		return res[0]
	}
	return nil
}

func intAttr(el *etree.Element) int {
	if el == nil {
		return 0
	}
	v, err := strconv.Atoi(el.SelectAttrValue("val", "0"))
	if err != nil {
		return 0
	}
	return v
}

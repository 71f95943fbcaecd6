package docx

import (
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// runProps holds partially specified run formatting, nil means "inherit".
type runProps struct {
	bold      *bool
	italic    *bool
	underline *bool
	size      *float64
}

// over returns p with unset properties taken from base.
func (p runProps) over(base runProps) runProps {
	if p.bold == nil {
		p.bold = base.bold
	}
	if p.italic == nil {
		p.italic = base.italic
	}
	if p.underline == nil {
		p.underline = base.underline
	}
	if p.size == nil {
		p.size = base.size
	}
	return p
}

func (p runProps) apply(r *Run) {
	r.Bold = p.bold != nil && *p.bold
	r.Italic = p.italic != nil && *p.italic
	r.Underline = p.underline != nil && *p.underline
	if p.size != nil {
		r.Size = *p.size
	}
}

type style struct {
	id      string
	name    string
	kind    string
	basedOn string
	align   string
	rp      runProps
}

// styles is parsed word/styles.xml.
type styles struct {
	byID         map[string]*style
	defaults     runProps
	defaultPara  string
	resolvedRuns map[string]runProps
}

func newStyles() *styles {
	return &styles{
		byID:         make(map[string]*style),
		resolvedRuns: make(map[string]runProps),
	}
}

func parseStyles(doc *etree.Document, log *zap.Logger) *styles {
	st := newStyles()
	if doc == nil || doc.Root() == nil {
		return st
	}
	for _, el := range doc.Root().ChildElements() {
		switch el.Tag {
		case "docDefaults":
			if rpr := el.FindElement("rPrDefault/rPr"); rpr != nil {
				st.defaults = parseRunProps(rpr)
			}
		case "style":
			s := &style{
				id:   el.SelectAttrValue("styleId", ""),
				kind: el.SelectAttrValue("type", ""),
			}
			if s.id == "" {
				log.Debug("Style without id, ignoring")
				continue
			}
			if n := el.SelectElement("name"); n != nil {
				s.name = n.SelectAttrValue("val", "")
			}
			if b := el.SelectElement("basedOn"); b != nil {
				s.basedOn = b.SelectAttrValue("val", "")
			}
			if ppr := el.SelectElement("pPr"); ppr != nil {
				if jc := ppr.SelectElement("jc"); jc != nil {
					s.align = jc.SelectAttrValue("val", "")
				}
			}
			if rpr := el.SelectElement("rPr"); rpr != nil {
				s.rp = parseRunProps(rpr)
			}
			if s.kind == "paragraph" && isOn(el.SelectAttrValue("default", "0")) {
				st.defaultPara = s.id
			}
			st.byID[s.id] = s
		case "latentStyles":
		default:
			log.Debug("Unexpected tag in styles, ignoring", zap.String("tag", el.Tag))
		}
	}
	return st
}

// name returns human readable style name falling back to style id.
func (st *styles) name(id string) string {
	if s, ok := st.byID[id]; ok && s.name != "" {
		return s.name
	}
	return id
}

// chain returns style with all its ancestors, nearest first.
func (st *styles) chain(id string) []*style {
	var res []*style
	seen := make(map[string]bool)
	for id != "" && !seen[id] {
		seen[id] = true
		s, ok := st.byID[id]
		if !ok {
			break
		}
		res = append(res, s)
		id = s.basedOn
	}
	return res
}

// runs returns run formatting defined by style chain (without document
// defaults).
func (st *styles) runs(id string) runProps {
	if rp, ok := st.resolvedRuns[id]; ok {
		return rp
	}
	var rp runProps
	for _, s := range st.chain(id) {
		rp = rp.over(s.rp)
	}
	st.resolvedRuns[id] = rp
	return rp
}

func (st *styles) align(id string) string {
	for _, s := range st.chain(id) {
		if s.align != "" {
			return s.align
		}
	}
	return ""
}

func parseRunProps(rpr *etree.Element) runProps {
	var rp runProps
	for _, el := range rpr.ChildElements() {
		switch el.Tag {
		case "b":
			rp.bold = toggle(el)
		case "i":
			rp.italic = toggle(el)
		case "u":
			v := el.SelectAttrValue("val", "single") != "none"
			rp.underline = &v
		case "sz":
			if hp, err := strconv.ParseFloat(el.SelectAttrValue("val", ""), 64); err == nil && hp > 0 {
				pt := hp / 2
				rp.size = &pt
			}
		}
	}
	return rp
}

func toggle(el *etree.Element) *bool {
	v := isOn(el.SelectAttrValue("val", "true"))
	return &v
}

func isOn(val string) bool {
	switch val {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

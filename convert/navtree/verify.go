package navtree

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/maruel/natural"
	"go.uber.org/zap"
)

// Problems found in generated tree.
type Problems struct {
	Sections        int      `json:"sections"`
	Images          int      `json:"images"`
	Tables          int      `json:"tables"`
	MissingImages   []string `json:"missing_images"`
	BrokenTables    []string `json:"broken_tables"`
	OrphanFootnotes []string `json:"orphan_footnotes"`
}

func (p *Problems) Ok() bool {
	return len(p.MissingImages) == 0 && len(p.BrokenTables) == 0 && len(p.OrphanFootnotes) == 0
}

type verifyItem struct {
	Type   string `json:"type"`
	Images []struct {
		Path string `json:"path"`
	} `json:"images"`
	Footnotes []struct {
		ID string `json:"id"`
	} `json:"footnotes"`
	Rows  int `json:"rows"`
	Cols  int `json:"cols"`
	Cells [][]struct {
		Paragraphs []verifyItem `json:"paragraphs"`
	} `json:"cells"`
}

type verifySection struct {
	Content   []verifyItem      `json:"content"`
	Footnotes map[string]string `json:"footnotes"`
}

// Verify reads generated tree back and checks that every referenced picture
// exists, every table grid is complete and every footnote reference has a
// body. Error is returned only when tree cannot be read.
func Verify(dst string, log *zap.Logger) (*Problems, error) {
	log = log.Named("verify")

	files, err := filepath.Glob(filepath.Join(dst, "chapter_[0-9]*", "section_[0-9]*.json"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no sections found in %s", dst)
	}
	sort.Sort(natural.StringSlice(files))

	p := &Problems{}
	for _, fname := range files {
		data, err := os.ReadFile(fname)
		if err != nil {
			return nil, fmt.Errorf("unable to read section: %w", err)
		}
		var sec verifySection
		if err := json.Unmarshal(data, &sec); err != nil {
			return nil, fmt.Errorf("unable to decode %s: %w", fname, err)
		}
		rel, _ := filepath.Rel(dst, fname)
		p.Sections++
		for i := range sec.Content {
			p.item(filepath.Dir(fname), rel, &sec.Content[i], sec.Footnotes)
		}
	}

	for _, name := range p.MissingImages {
		log.Warn("Referenced picture does not exist", zap.String("picture", name))
	}
	for _, name := range p.BrokenTables {
		log.Warn("Table grid is incomplete", zap.String("table", name))
	}
	for _, name := range p.OrphanFootnotes {
		log.Warn("Footnote reference has no body", zap.String("footnote", name))
	}
	log.Info("Content tree verified", zap.Int("sections", p.Sections), zap.Int("images", p.Images), zap.Int("tables", p.Tables),
		zap.Int("missing images", len(p.MissingImages)), zap.Int("broken tables", len(p.BrokenTables)),
		zap.Int("orphan footnotes", len(p.OrphanFootnotes)))
	return p, nil
}

func (p *Problems) item(dir, rel string, it *verifyItem, footnotes map[string]string) {
	for _, img := range it.Images {
		p.Images++
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(img.Path))); err != nil {
			p.MissingImages = append(p.MissingImages, rel+": "+img.Path)
		}
	}
	for _, fn := range it.Footnotes {
		if _, ok := footnotes[fn.ID]; !ok {
			p.OrphanFootnotes = append(p.OrphanFootnotes, rel+": "+fn.ID)
		}
	}
	if it.Type != "table" {
		return
	}
	p.Tables++
	complete := len(it.Cells) == it.Rows
	for _, row := range it.Cells {
		complete = complete && len(row) == it.Cols
		for _, cell := range row {
			for i := range cell.Paragraphs {
				p.item(dir, rel, &cell.Paragraphs[i], footnotes)
			}
		}
	}
	if !complete {
		p.BrokenTables = append(p.BrokenTables, fmt.Sprintf("%s: table %d (%dx%d)", rel, p.Tables, it.Rows, it.Cols))
	}
}

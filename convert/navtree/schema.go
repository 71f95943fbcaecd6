// Package navtree writes normalized content as a tree of JSON files read by
// the web viewer.
package navtree

import (
	"fmt"

	"docx2nav/content"
	"docx2nav/toc"
)

const (
	indexName      = "index.json"
	tocName        = "toc_structure.json"
	validationName = "toc_validation_report.json"
	chapterName    = "chapter.json"
	picturesDir    = "pictures"
	backupSuffix   = ".backup"
)

func chapterDir(number int) string {
	return fmt.Sprintf("chapter_%02d", number)
}

func sectionFile(number int) string {
	return fmt.Sprintf("section_%02d.json", number)
}

type indexSection struct {
	Number int    `json:"section_number"`
	Title  string `json:"title"`
	Path   string `json:"path"`
}

type indexChapter struct {
	Number        int            `json:"number"`
	Title         string         `json:"title"`
	TotalSections int            `json:"total_sections"`
	Sections      []indexSection `json:"sections"`
}

type indexFile struct {
	BookTitle     string         `json:"book_title"`
	TotalChapters int            `json:"total_chapters"`
	TotalSections int            `json:"total_sections"`
	Chapters      []indexChapter `json:"chapters"`
}

type chapterSection struct {
	Number     int                `json:"section_number"`
	Title      string             `json:"title"`
	Path       string             `json:"path"`
	Statistics content.Statistics `json:"statistics"`
}

type chapterFile struct {
	Number   int              `json:"chapter_number"`
	Title    string           `json:"chapter_title"`
	Sections []chapterSection `json:"sections"`
}

type sectionFileData struct {
	ChapterNumber int                `json:"chapter_number"`
	ChapterTitle  string             `json:"chapter_title"`
	SectionNumber int                `json:"section_number"`
	SectionTitle  string             `json:"section_title"`
	Content       []content.Item     `json:"content"`
	Footnotes     map[string]string  `json:"footnotes"`
	Statistics    content.Statistics `json:"statistics"`
}

type tocFile struct {
	Entries []toc.Entry `json:"entries"`
}

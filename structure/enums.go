// Package structure finds chapter and section boundaries in the element
// stream and splits it into an outline.
package structure

// Kind of numbered heading recognized in a paragraph.
// ENUM(none, chapter, section)
type HeadingKind int

// States of the splitter.
// ENUM(before_first_chapter, in_chapter_intro, in_section)
type SplitState int

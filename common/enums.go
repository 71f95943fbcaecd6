// Package common holds types shared between pipeline stages, configuration
// and command line handling.
package common

// Kinds of non fatal problems collected during a run. None of them aborts
// processing, all of them end up in the run summary.
// ENUM(heading_mismatch, section_out_of_order, section_gap, duplicate_chapter, orphan_footnote, image_missing, malformed_element, front_matter_skipped, content_dropped, conversion_unavailable, conversion_failed, conversion_timeout)
type Anomaly string

// IsConversion reports whether anomaly came from image pipeline.
func (a Anomaly) IsConversion() bool {
	return a == AnomalyConversionUnavailable || a == AnomalyConversionFailed || a == AnomalyConversionTimeout
}

// Paragraph alignment in produced content.
// ENUM(left, center, right, justify)
type Alignment string

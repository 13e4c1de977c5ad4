package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops the
	// store path.
	LayoutCompactWidth = 80

	// LayoutMaxContentWidth caps the dialogue column on wide terminals.
	LayoutMaxContentWidth = 110
)

// Chrome heights around the dialogue area.
const (
	headerHeight = 1
	statusHeight = 1
)

// Log overlay limits.
const (
	// LogOverlayLines is how many trailing log lines the overlay reads.
	LogOverlayLines = 500
)

// Timing constants.
const (
	// HeaderRefreshInterval refreshes the relative "saved" time in the header.
	HeaderRefreshInterval = 30 * time.Second
)

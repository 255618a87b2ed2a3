package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth is the threshold for extra-wide layouts.
	LayoutExtraWideWidth = 160

	// CarouselCardWidth is the rendered width of one carousel card,
	// including its border and gap.
	CarouselCardWidth = 30
)

// Log display limits.
const (
	// LogBufferLimit is the maximum number of log lines read from the tail.
	LogBufferLimit = 2000
)

// Timing constants.
const (
	// LogRefreshInterval is the minimum time between log file reads.
	LogRefreshInterval = 2 * time.Second

	// RequestTimeout bounds a single UI-initiated backend call.
	RequestTimeout = 30 * time.Second

	// DetailQuiet is how long the selection must rest before the detail pane
	// fetches the full record.
	DetailQuiet = 150 * time.Millisecond

	// CarouselInterval is the auto-advance period of the carousel.
	CarouselInterval = 6 * time.Second

	// FlashDuration is how long a write confirmation stays in the header.
	FlashDuration = 4 * time.Second

	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second
)

// CarouselLimit caps the number of releases the carousel rotates through.
const CarouselLimit = 12

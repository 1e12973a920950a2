package config

import "time"

const (
	// Album photos arrive as separate updates; staging acknowledgements for
	// one media group are coalesced over this window.
	MediaGroupWindow = 1500 * time.Millisecond

	// Largest file accepted for staging
	MaxAttachmentBytes = 20 << 20

	// Idle session sweep interval
	SessionCleanupInterval = 5 * time.Minute

	// Timeout for side calls (server cart, selection sync)
	SideRequestTimeout = 15 * time.Second

	// Rows shown by /stat
	StatTopLimit = 10

	// Previews sent back by /attachments
	MaxPreviewsShown = 10
)

package interactionlog

import "time"

// CleanupInterval is how often the cleanup goroutine deletes expired records.
const CleanupInterval = 1 * time.Hour

// RunCleanupLoop runs cleanupFn immediately and then at CleanupInterval
// until the stop channel is closed.
func RunCleanupLoop(stop <-chan struct{}, cleanupFn func()) {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	cleanupFn()

	for {
		select {
		case <-ticker.C:
			cleanupFn()
		case <-stop:
			return
		}
	}
}

// Package notify implements the change-notification subsystem: per-project
// change detection against a monotonic marker, a single background poll loop,
// and a broadcast hub that fans detected changes out to subscribed event
// streams with per-subscriber backpressure.
package notify

import (
	"context"
	"fmt"
	"sync"
)

// ChangeSource is the slice of the data layer the detector needs: a
// monotonically increasing change marker per project, and the set of
// parameter names whose values were recorded after a given marker.
type ChangeSource interface {
	CurrentChangeMarker(ctx context.Context, project string) (int64, error)
	ParametersChangedSince(ctx context.Context, project string, marker int64) ([]string, error)
}

// Detector tracks the high-water change marker for a single project and
// reports which parameters changed since the last successful poll.
//
// The stored marker is owned exclusively by this detector. It never
// decreases, starts unprimed, and is only advanced after the datastore
// queries for a tick have all succeeded, so a failed tick cannot corrupt it.
type Detector struct {
	project string
	source  ChangeSource

	// mu guarantees at most one outstanding poll per project.
	mu     sync.Mutex
	mark   int64
	primed bool
}

// NewDetector creates a detector for the given project with an unprimed mark.
func NewDetector(project string, source ChangeSource) *Detector {
	return &Detector{project: project, source: source}
}

// Project returns the project this detector watches.
func (d *Detector) Project() string {
	return d.project
}

// Detect polls the datastore once. The first successful call primes the
// marker and reports no changes, so existing history is not replayed as a
// burst of notifications on startup. Subsequent calls report the distinct,
// ascending-sorted parameter names recorded strictly after the stored marker
// and advance it to the current maximum.
func (d *Detector) Detect(ctx context.Context) (bool, []string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, err := d.source.CurrentChangeMarker(ctx, d.project)
	if err != nil {
		return false, nil, fmt.Errorf("read change marker: %w", err)
	}

	if !d.primed {
		d.mark = current
		d.primed = true
		return false, nil, nil
	}

	if current <= d.mark {
		return false, nil, nil
	}

	parameters, err := d.source.ParametersChangedSince(ctx, d.project, d.mark)
	if err != nil {
		// Leave the mark untouched; the next tick retries the same window.
		return false, nil, fmt.Errorf("read changed parameters: %w", err)
	}

	d.mark = current
	return true, parameters, nil
}

// Reset clears the stored marker so the next Detect primes again.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mark = 0
	d.primed = false
}

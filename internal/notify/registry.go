package notify

import "sync"

// DetectorRegistry holds one Detector per project. Projects register lazily
// the first time they are accessed (typically when a client opens an event
// stream) and stay registered for the life of the process.
type DetectorRegistry struct {
	source ChangeSource

	mu        sync.Mutex
	detectors map[string]*Detector
}

// NewDetectorRegistry creates an empty registry backed by the given source.
func NewDetectorRegistry(source ChangeSource) *DetectorRegistry {
	return &DetectorRegistry{
		source:    source,
		detectors: make(map[string]*Detector),
	}
}

// Ensure returns the detector for project, creating it on first access.
// Safe for concurrent use from any number of request handlers.
func (r *DetectorRegistry) Ensure(project string) *Detector {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.detectors[project]
	if !ok {
		d = NewDetector(project, r.source)
		r.detectors[project] = d
	}
	return d
}

// Detectors returns a snapshot of the registered detectors so the poll loop
// can iterate without holding the registry lock across datastore I/O.
func (r *DetectorRegistry) Detectors() []*Detector {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make([]*Detector, 0, len(r.detectors))
	for _, d := range r.detectors {
		snapshot = append(snapshot, d)
	}
	return snapshot
}

// Len returns the number of registered projects.
func (r *DetectorRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.detectors)
}

package notify

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// fakeSource is an in-memory ChangeSource driven directly by tests.
type fakeSource struct {
	marker     int64
	markerErr  error
	changed    map[int64][]string // marker threshold -> names
	changedErr error
}

func (f *fakeSource) CurrentChangeMarker(ctx context.Context, project string) (int64, error) {
	if f.markerErr != nil {
		return 0, f.markerErr
	}
	return f.marker, nil
}

func (f *fakeSource) ParametersChangedSince(ctx context.Context, project string, marker int64) ([]string, error) {
	if f.changedErr != nil {
		return nil, f.changedErr
	}
	return f.changed[marker], nil
}

func TestDetectorFirstPollPrimesWithoutReporting(t *testing.T) {
	src := &fakeSource{marker: 42}
	d := NewDetector("lab1", src)

	changed, params, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed || params != nil {
		t.Fatalf("first poll must prime silently, got changed=%v params=%v", changed, params)
	}

	// No writes since priming: still quiet.
	changed, _, err = d.Detect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatal("expected no change when marker is unchanged")
	}
}

func TestDetectorReportsDeltaAndAdvancesMark(t *testing.T) {
	src := &fakeSource{marker: 10}
	d := NewDetector("lab1", src)

	if _, _, err := d.Detect(context.Background()); err != nil {
		t.Fatalf("priming poll failed: %v", err)
	}

	src.marker = 13
	src.changed = map[int64][]string{10: {"humidity", "temperature"}}

	changed, params, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatal("expected change to be reported")
	}
	if !reflect.DeepEqual(params, []string{"humidity", "temperature"}) {
		t.Fatalf("unexpected parameters: %v", params)
	}

	// Mark advanced: same datastore state reports nothing further.
	changed, _, err = d.Detect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatal("expected no change after mark advanced")
	}
}

func TestDetectorMarkerNeverRegresses(t *testing.T) {
	src := &fakeSource{marker: 20}
	d := NewDetector("lab1", src)

	if _, _, err := d.Detect(context.Background()); err != nil {
		t.Fatalf("priming poll failed: %v", err)
	}

	// A marker below the stored mark must not be treated as a change.
	src.marker = 5
	changed, params, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed || params != nil {
		t.Fatalf("regressed marker must report nothing, got changed=%v params=%v", changed, params)
	}
}

func TestDetectorFailureLeavesMarkIntact(t *testing.T) {
	src := &fakeSource{marker: 10}
	d := NewDetector("lab1", src)

	if _, _, err := d.Detect(context.Background()); err != nil {
		t.Fatalf("priming poll failed: %v", err)
	}

	// Marker read succeeds but the delta query fails mid-tick.
	src.marker = 15
	src.changedErr = errors.New("datastore unreachable")

	if _, _, err := d.Detect(context.Background()); err == nil {
		t.Fatal("expected detection failure")
	}

	// Recovery: the same window is retried against the original mark.
	src.changedErr = nil
	src.changed = map[int64][]string{10: {"pressure"}}

	changed, params, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed || !reflect.DeepEqual(params, []string{"pressure"}) {
		t.Fatalf("expected retry of the original window, got changed=%v params=%v", changed, params)
	}
}

func TestDetectorMarkerReadFailureDoesNotPrime(t *testing.T) {
	src := &fakeSource{markerErr: errors.New("connection refused")}
	d := NewDetector("lab1", src)

	if _, _, err := d.Detect(context.Background()); err == nil {
		t.Fatal("expected detection failure")
	}

	// First successful call still behaves as the priming call.
	src.markerErr = nil
	src.marker = 7
	changed, _, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatal("first successful poll must prime silently")
	}
}

func TestDetectorReset(t *testing.T) {
	src := &fakeSource{marker: 3}
	d := NewDetector("lab1", src)

	if _, _, err := d.Detect(context.Background()); err != nil {
		t.Fatalf("priming poll failed: %v", err)
	}

	d.Reset()

	src.marker = 9
	changed, _, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatal("poll after Reset must prime silently again")
	}
}

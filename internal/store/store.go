// Package store provides the PostgreSQL data layer: projects, samples,
// parameter definitions and recorded parameter values, plus the change-marker
// queries consumed by the notification subsystem.
package store

import "context"

// Store is the full data-access surface. Handlers and the change detector
// depend on this interface (or a subset of it) so tests can substitute mocks.
type Store interface {
	// Change source for the notification subsystem.
	CurrentChangeMarker(ctx context.Context, project string) (int64, error)
	ParametersChangedSince(ctx context.Context, project string, marker int64) ([]string, error)

	// Samples.
	ListSamples(ctx context.Context, project string, includeDeleted bool) ([]Sample, error)
	GetSample(ctx context.Context, project string, id int64) (Sample, error)
	CreateSample(ctx context.Context, project string, sample Sample) (Sample, error)
	DeleteSample(ctx context.Context, project string, id int64) (Sample, error)
	ListSampleParameterValues(ctx context.Context, project string, sampleID int64) ([]ParameterValue, error)
	RecordParameterValues(ctx context.Context, project string, sampleID int64, assignments []ParameterAssignment) (int, error)

	// Parameters.
	ListParameterDefinitions(ctx context.Context, project string) ([]ParameterDefinition, error)
	ParameterHistory(ctx context.Context, project, name string, limit int) ([]ParameterValue, error)
	ParameterUniqueValues(ctx context.Context, project, name string) ([]string, error)

	// Projects.
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, name string) (Project, error)
	CreateProject(ctx context.Context, name string) (Project, error)
	RenameProject(ctx context.Context, oldName, newName string) (Project, error)
	DeleteProject(ctx context.Context, name string) error
	ActiveProject(ctx context.Context) (string, error)
	SetActiveProject(ctx context.Context, name string) error
}

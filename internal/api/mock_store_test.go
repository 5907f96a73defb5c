package api

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/labframe/labframe/internal/store"
)

// MockStore implements store.Store with overridable functions. Methods
// without an override return empty results.
type MockStore struct {
	CurrentChangeMarkerFunc    func(ctx context.Context, project string) (int64, error)
	ParametersChangedSinceFunc func(ctx context.Context, project string, marker int64) ([]string, error)
	ListSamplesFunc            func(ctx context.Context, project string, includeDeleted bool) ([]store.Sample, error)
	GetSampleFunc              func(ctx context.Context, project string, id int64) (store.Sample, error)
	CreateSampleFunc           func(ctx context.Context, project string, sample store.Sample) (store.Sample, error)
	DeleteSampleFunc           func(ctx context.Context, project string, id int64) (store.Sample, error)
	ListSampleParamsFunc       func(ctx context.Context, project string, sampleID int64) ([]store.ParameterValue, error)
	RecordParamsFunc           func(ctx context.Context, project string, sampleID int64, assignments []store.ParameterAssignment) (int, error)
	ListParamDefsFunc          func(ctx context.Context, project string) ([]store.ParameterDefinition, error)
	ParameterHistoryFunc       func(ctx context.Context, project, name string, limit int) ([]store.ParameterValue, error)
	ParameterUniqueValuesFunc  func(ctx context.Context, project, name string) ([]string, error)
	ListProjectsFunc           func(ctx context.Context) ([]store.Project, error)
	GetProjectFunc             func(ctx context.Context, name string) (store.Project, error)
	CreateProjectFunc          func(ctx context.Context, name string) (store.Project, error)
	RenameProjectFunc          func(ctx context.Context, oldName, newName string) (store.Project, error)
	DeleteProjectFunc          func(ctx context.Context, name string) error
	ActiveProjectFunc          func(ctx context.Context) (string, error)
	SetActiveProjectFunc       func(ctx context.Context, name string) error
}

func (m *MockStore) CurrentChangeMarker(ctx context.Context, project string) (int64, error) {
	if m.CurrentChangeMarkerFunc != nil {
		return m.CurrentChangeMarkerFunc(ctx, project)
	}
	return 0, nil
}

func (m *MockStore) ParametersChangedSince(ctx context.Context, project string, marker int64) ([]string, error) {
	if m.ParametersChangedSinceFunc != nil {
		return m.ParametersChangedSinceFunc(ctx, project, marker)
	}
	return nil, nil
}

func (m *MockStore) ListSamples(ctx context.Context, project string, includeDeleted bool) ([]store.Sample, error) {
	if m.ListSamplesFunc != nil {
		return m.ListSamplesFunc(ctx, project, includeDeleted)
	}
	return []store.Sample{}, nil
}

func (m *MockStore) GetSample(ctx context.Context, project string, id int64) (store.Sample, error) {
	if m.GetSampleFunc != nil {
		return m.GetSampleFunc(ctx, project, id)
	}
	return store.Sample{}, pgx.ErrNoRows
}

func (m *MockStore) CreateSample(ctx context.Context, project string, sample store.Sample) (store.Sample, error) {
	if m.CreateSampleFunc != nil {
		return m.CreateSampleFunc(ctx, project, sample)
	}
	return sample, nil
}

func (m *MockStore) DeleteSample(ctx context.Context, project string, id int64) (store.Sample, error) {
	if m.DeleteSampleFunc != nil {
		return m.DeleteSampleFunc(ctx, project, id)
	}
	return store.Sample{}, pgx.ErrNoRows
}

func (m *MockStore) ListSampleParameterValues(ctx context.Context, project string, sampleID int64) ([]store.ParameterValue, error) {
	if m.ListSampleParamsFunc != nil {
		return m.ListSampleParamsFunc(ctx, project, sampleID)
	}
	return []store.ParameterValue{}, nil
}

func (m *MockStore) RecordParameterValues(ctx context.Context, project string, sampleID int64, assignments []store.ParameterAssignment) (int, error) {
	if m.RecordParamsFunc != nil {
		return m.RecordParamsFunc(ctx, project, sampleID, assignments)
	}
	return 0, nil
}

func (m *MockStore) ListParameterDefinitions(ctx context.Context, project string) ([]store.ParameterDefinition, error) {
	if m.ListParamDefsFunc != nil {
		return m.ListParamDefsFunc(ctx, project)
	}
	return []store.ParameterDefinition{}, nil
}

func (m *MockStore) ParameterHistory(ctx context.Context, project, name string, limit int) ([]store.ParameterValue, error) {
	if m.ParameterHistoryFunc != nil {
		return m.ParameterHistoryFunc(ctx, project, name, limit)
	}
	return []store.ParameterValue{}, nil
}

func (m *MockStore) ParameterUniqueValues(ctx context.Context, project, name string) ([]string, error) {
	if m.ParameterUniqueValuesFunc != nil {
		return m.ParameterUniqueValuesFunc(ctx, project, name)
	}
	return []string{}, nil
}

func (m *MockStore) ListProjects(ctx context.Context) ([]store.Project, error) {
	if m.ListProjectsFunc != nil {
		return m.ListProjectsFunc(ctx)
	}
	return []store.Project{}, nil
}

func (m *MockStore) GetProject(ctx context.Context, name string) (store.Project, error) {
	if m.GetProjectFunc != nil {
		return m.GetProjectFunc(ctx, name)
	}
	return store.Project{}, pgx.ErrNoRows
}

func (m *MockStore) CreateProject(ctx context.Context, name string) (store.Project, error) {
	if m.CreateProjectFunc != nil {
		return m.CreateProjectFunc(ctx, name)
	}
	return store.Project{Name: name}, nil
}

func (m *MockStore) RenameProject(ctx context.Context, oldName, newName string) (store.Project, error) {
	if m.RenameProjectFunc != nil {
		return m.RenameProjectFunc(ctx, oldName, newName)
	}
	return store.Project{}, pgx.ErrNoRows
}

func (m *MockStore) DeleteProject(ctx context.Context, name string) error {
	if m.DeleteProjectFunc != nil {
		return m.DeleteProjectFunc(ctx, name)
	}
	return pgx.ErrNoRows
}

func (m *MockStore) ActiveProject(ctx context.Context) (string, error) {
	if m.ActiveProjectFunc != nil {
		return m.ActiveProjectFunc(ctx)
	}
	return store.DefaultProject, nil
}

func (m *MockStore) SetActiveProject(ctx context.Context, name string) error {
	if m.SetActiveProjectFunc != nil {
		return m.SetActiveProjectFunc(ctx, name)
	}
	return nil
}

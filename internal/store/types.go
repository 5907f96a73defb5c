package store

import "time"

// DefaultProject is the project key for data that belongs to no named
// project. All queries treat the empty string as a normal partition key.
const DefaultProject = ""

// Project is a named, isolated partition of samples and parameters.
type Project struct {
	Name       string     `json:"name"`
	CreatedAt  time.Time  `json:"created_at"`
	LastOpened *time.Time `json:"last_opened,omitempty"`
}

// Sample is a prepared specimen whose parameters are recorded over time.
type Sample struct {
	ID         int64      `json:"sample_id"`
	Project    string     `json:"-"`
	PreparedOn time.Time  `json:"prepared_on"`
	AuthorName *string    `json:"author_name,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// ParameterDefinition names a measurable quantity within a project.
type ParameterDefinition struct {
	ID      int64   `json:"param_id"`
	Project string  `json:"-"`
	Name    string  `json:"name"`
	Unit    *string `json:"unit,omitempty"`
}

// ParameterValue is one recorded measurement. Its ID doubles as the
// project's change marker: IDs are assigned by a single ascending sequence,
// so the per-project maximum never decreases.
type ParameterValue struct {
	ID            int64     `json:"id"`
	SampleID      int64     `json:"sample_id"`
	ParameterName string    `json:"parameter_name"`
	Unit          *string   `json:"unit,omitempty"`
	Value         string    `json:"value"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// ParameterAssignment is one value to record for a sample.
type ParameterAssignment struct {
	Name  string  `json:"name" validate:"required,min=1"`
	Unit  *string `json:"unit,omitempty"`
	Value string  `json:"value" validate:"required"`
}

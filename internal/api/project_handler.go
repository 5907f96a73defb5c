package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/labframe/labframe/internal/store"
)

// ProjectHandler serves project lifecycle endpoints.
type ProjectHandler struct {
	store store.Store
}

// NewProjectHandler creates a project handler.
func NewProjectHandler(s store.Store) *ProjectHandler {
	return &ProjectHandler{store: s}
}

type createProjectPayload struct {
	Name string `json:"name" validate:"required,min=1,max=128"`
}

type renameProjectPayload struct {
	Name string `json:"name" validate:"required,min=1,max=128"`
}

type setActiveProjectPayload struct {
	// Empty name selects the default project.
	ProjectName string `json:"project_name" validate:"max=128"`
}

// List handles GET /api/v1/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if handleDBError(w, r, err, "Projects") {
		return
	}

	active, err := h.store.ActiveProject(r.Context())
	if handleDBError(w, r, err, "Active project") {
		return
	}

	type projectItem struct {
		store.Project
		IsActive bool `json:"is_active"`
	}

	items := make([]projectItem, 0, len(projects))
	for _, p := range projects {
		items = append(items, projectItem{Project: p, IsActive: p.Name == active})
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"data":  items,
		"total": len(items),
	})
}

// Create handles POST /api/v1/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeJSON[createProjectPayload](w, r)
	if !ok {
		return
	}
	if !validateInput(w, r, input) {
		return
	}

	created, err := h.store.CreateProject(r.Context(), input.Name)
	if err != nil {
		sendError(w, r, http.StatusBadRequest, "CREATE_FAILED", "Failed to create project", err.Error())
		return
	}

	sendJSON(w, http.StatusCreated, map[string]interface{}{"project": created})
}

// Rename handles PATCH /api/v1/projects/{name}
func (h *ProjectHandler) Rename(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	input, ok := decodeJSON[renameProjectPayload](w, r)
	if !ok {
		return
	}
	if !validateInput(w, r, input) {
		return
	}

	renamed, err := h.store.RenameProject(r.Context(), name, input.Name)
	if handleDBError(w, r, err, "Project") {
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{"project": renamed})
}

// Delete handles DELETE /api/v1/projects/{name}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := h.store.DeleteProject(r.Context(), name)
	if handleDBError(w, r, err, "Project") {
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{"deleted": name})
}

// GetActive handles GET /api/v1/projects/active
func (h *ProjectHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	active, err := h.store.ActiveProject(r.Context())
	if handleDBError(w, r, err, "Active project") {
		return
	}

	if active == store.DefaultProject {
		sendJSON(w, http.StatusOK, map[string]interface{}{"project": nil})
		return
	}

	project, err := h.store.GetProject(r.Context(), active)
	if handleDBError(w, r, err, "Project") {
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{"project": project})
}

// SetActive handles POST /api/v1/projects/active
func (h *ProjectHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeJSON[setActiveProjectPayload](w, r)
	if !ok {
		return
	}
	if !validateInput(w, r, input) {
		return
	}

	if input.ProjectName != store.DefaultProject {
		if _, err := h.store.GetProject(r.Context(), input.ProjectName); handleDBError(w, r, err, "Project") {
			return
		}
	}

	if err := h.store.SetActiveProject(r.Context(), input.ProjectName); handleDBError(w, r, err, "Active project") {
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{"project_name": input.ProjectName})
}

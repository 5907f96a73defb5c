package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"

	"github.com/labframe/labframe/internal/middleware"
	"github.com/labframe/labframe/internal/store"
)

// sendJSON sends a JSON response
func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// sendError sends a standardized error response
func sendError(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	requestID, _ := r.Context().Value(middleware.RequestIDKey).(string)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := middleware.ErrorResponse{
		Error: middleware.ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// parseIDParam extracts and validates a numeric ID from URL params
func parseIDParam(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	idStr := chi.URLParam(r, param)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		sendError(w, r, http.StatusBadRequest, "INVALID_ID", "Invalid numeric ID", idStr)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes request body with error handling
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var input T
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, r, http.StatusBadRequest, "INVALID_BODY", "Invalid JSON body", err.Error())
		return input, false
	}
	return input, true
}

// Global validator instance
var validate = validator.New()

// validateInput validates a request payload and reports field-level errors
func validateInput(w http.ResponseWriter, r *http.Request, input interface{}) bool {
	err := validate.Struct(input)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]string, 0, len(fieldErrs))
		for _, e := range fieldErrs {
			details = append(details, fmt.Sprintf("%s: failed %q validation", strings.ToLower(e.Field()), e.Tag()))
		}
		sendError(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", details)
		return false
	}

	sendError(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err.Error())
	return false
}

// handleDBError sends appropriate error response for DB errors
func handleDBError(w http.ResponseWriter, r *http.Request, err error, entityName string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) {
		sendError(w, r, http.StatusNotFound, "NOT_FOUND", entityName+" not found", nil)
	} else {
		sendError(w, r, http.StatusInternalServerError, "DB_ERROR", "Database error", err.Error())
	}
	return true
}

// resolveProject determines the project scope for a request: explicit query
// parameter, then X-Project header, then the stored active project. Named
// projects must exist; the default project always does.
func resolveProject(w http.ResponseWriter, r *http.Request, s store.Store) (string, bool) {
	project := r.URL.Query().Get("project")
	if project == "" {
		project = r.Header.Get("X-Project")
	}

	if project == "" {
		active, err := s.ActiveProject(r.Context())
		if err != nil {
			sendError(w, r, http.StatusInternalServerError, "DB_ERROR", "Failed to resolve active project", err.Error())
			return "", false
		}
		project = active
	}

	if project != store.DefaultProject {
		if _, err := s.GetProject(r.Context(), project); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				sendError(w, r, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Project %q not found", project), nil)
			} else {
				sendError(w, r, http.StatusInternalServerError, "DB_ERROR", "Failed to resolve project", err.Error())
			}
			return "", false
		}
	}

	return project, true
}

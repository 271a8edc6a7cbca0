package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/code-journal/internal/domain"
	"github.com/msomdec/code-journal/internal/service"
)

// ProjectHandler handles project save and listing.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type saveProjectRequest struct {
	Name        string   `json:"name"`
	HTML        string   `json:"html"`
	CSS         string   `json:"css"`
	JS          string   `json:"js"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	SessionID   string   `json:"sessionId"`
}

// HandleSave stores a new project.
// POST /api/projects
// Response: {"success":true,"project":{...},"user":{...}}
func (h *ProjectHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req saveProjectRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	updated, project, err := h.projects.Save(r.Context(), user.ID, service.ProjectInput{
		Name:        req.Name,
		HTML:        req.HTML,
		CSS:         req.CSS,
		JS:          req.JS,
		Description: req.Description,
		Tags:        req.Tags,
		SessionID:   req.SessionID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("save project", "error", err, "user", user.ID)
		writeError(w, http.StatusInternalServerError, "Could not save project.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"project": toProjectDTO(project),
		"user":    toUserDTO(updated),
	})
}

// HandleList returns the user's projects, most recent first.
// GET /api/projects
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	projects, err := h.projects.List(r.Context(), user.ID)
	if err != nil {
		slog.Error("list projects", "error", err, "user", user.ID)
		writeError(w, http.StatusInternalServerError, "Could not load projects.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"projects": toProjectDTOs(projects),
	})
}

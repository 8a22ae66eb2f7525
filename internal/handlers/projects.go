package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bidflow/internal/models"
	"bidflow/internal/repositories"
)

// ProjectsHandler serves the optional Postgres archive: project search,
// version history, and recent runs. It is only registered when the archive is
// configured.
type ProjectsHandler struct {
	repo *repositories.ProjectRepository
}

func NewProjectsHandler(repo *repositories.ProjectRepository) *ProjectsHandler {
	return &ProjectsHandler{repo: repo}
}

// HandleSearch handles GET /api/projects.
func (h *ProjectsHandler) HandleSearch(c *gin.Context) {
	params := repositories.SearchParams{
		Q:      c.Query("q"),
		DueOn:  c.Query("dueOn"),
		Limit:  queryInt(c, "limit", 25),
		Offset: queryInt(c, "offset", 0),
	}

	result, err := h.repo.SearchProjects(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Items is always an array, never null.
	items := result.Items
	if items == nil {
		items = []models.ArchivedProject{}
	}
	c.JSON(http.StatusOK, gin.H{
		"items":        items,
		"totalRecords": result.TotalRecords,
		"limit":        result.Limit,
		"offset":       result.Offset,
		"hasMore":      result.HasMore,
	})
}

// HandleVersions handles GET /api/projects/versions?name=...
func (h *ProjectsHandler) HandleVersions(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	versions, err := h.repo.ProjectVersions(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if versions == nil {
		versions = []models.ArchivedProject{}
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "versions": versions})
}

// HandleRuns handles GET /api/archive/runs.
func (h *ProjectsHandler) HandleRuns(c *gin.Context) {
	runs, err := h.repo.RecentRuns(c.Request.Context(), queryInt(c, "limit", 10))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []models.ArchivedRun{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

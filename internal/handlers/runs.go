package handlers

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"bidflow/internal/mailstore"
	"bidflow/internal/services"
)

// ExtractorFactory resolves a strategy name ("api" or "local") to a fresh
// extractor for one run.
type ExtractorFactory func(strategy string) (services.Extractor, error)

// RunsHandler exposes the non-interactive pipeline over HTTP: list the bid
// folders, trigger a run, download the produced report.
type RunsHandler struct {
	store      mailstore.Store
	keyword    string
	extractors ExtractorFactory
	pipeline   func(extractor services.Extractor) *services.Pipeline
	reportPath string

	// One run at a time; the store adapter and report file are not safe for
	// concurrent runs.
	mu sync.Mutex
}

func NewRunsHandler(store mailstore.Store, keyword string, extractors ExtractorFactory,
	pipeline func(services.Extractor) *services.Pipeline, reportPath string) *RunsHandler {
	return &RunsHandler{
		store:      store,
		keyword:    keyword,
		extractors: extractors,
		pipeline:   pipeline,
		reportPath: reportPath,
	}
}

// HandleFolders lists the located bid folders with message counts.
func (h *RunsHandler) HandleFolders(c *gin.Context) {
	type folderInfo struct {
		Path     string `json:"path"`
		Messages int    `json:"messages"`
	}

	located := mailstore.FindFolders(h.store, h.keyword)
	folders := make([]folderInfo, 0, len(located))
	for _, loc := range located {
		messages, err := loc.Folder.Messages()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		folders = append(folders, folderInfo{Path: loc.Path, Messages: len(messages)})
	}
	c.JSON(http.StatusOK, gin.H{"folders": folders})
}

// runRequest is the form/JSON payload for HandleRun.
type runRequest struct {
	Folder   string `form:"folder" json:"folder"`
	Count    int    `form:"count" json:"count"`
	Offset   int    `form:"offset" json:"offset"`
	Days     int    `form:"days" json:"days"`
	Strategy string `form:"strategy" json:"strategy"`
	Verbose  bool   `form:"verbose" json:"verbose"`
}

// HandleRun runs the pipeline over one selected folder and returns the run
// stats plus the consolidated rows.
func (h *RunsHandler) HandleRun(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Folder == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder is required"})
		return
	}
	if req.Count <= 0 && req.Days <= 0 {
		req.Count = 15
	}
	if req.Strategy == "" {
		req.Strategy = "api"
	}

	var target *mailstore.Located
	for _, loc := range mailstore.FindFolders(h.store, h.keyword) {
		if loc.Path == req.Folder {
			found := loc
			target = &found
			break
		}
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "folder not found: " + req.Folder})
		return
	}

	extractor, err := h.extractors(req.Strategy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	pipeline := h.pipeline(extractor)
	pipeline.Verbose = req.Verbose
	sel := mailstore.Selection{Count: req.Count, Offset: req.Offset, Days: req.Days}
	projects, stats, err := pipeline.Run(c.Request.Context(), target.Folder, target.Path, sel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":    stats,
		"projects": projects,
		"report":   "/report",
	})
}

// HandleReport serves the most recently written report file.
func (h *RunsHandler) HandleReport(c *gin.Context) {
	c.FileAttachment(h.reportPath, "bid_requests.xlsx")
}

// HandleForm serves the single-page run form.
func (h *RunsHandler) HandleForm(c *gin.Context) {
	located := mailstore.FindFolders(h.store, h.keyword)
	options := ""
	for _, loc := range located {
		options += "<option>" + loc.Path + "</option>"
	}
	page := `<!DOCTYPE html>
<html>
<head><title>bidflow</title></head>
<body>
<h1>Bid request extraction</h1>
<form method="post" action="/api/runs">
  <label>Folder: <select name="folder">` + options + `</select></label><br>
  <label>Count: <input name="count" value="15"></label>
  <label>Offset: <input name="offset" value="0"></label>
  <label>Days (overrides count): <input name="days" value="0"></label><br>
  <label>Strategy:
    <select name="strategy"><option>api</option><option>local</option></select>
  </label>
  <label>Verbose: <input type="checkbox" name="verbose" value="true"></label><br>
  <button type="submit">Run</button>
</form>
<p><a href="/report">Download latest report</a></p>
</body>
</html>`
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// HandleHealth is the liveness probe.
func (h *RunsHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return fallback
}

package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the handlers into the engine. projectsH may be nil
// when no archive database is configured; its routes are then omitted.
func RegisterRoutes(r *gin.Engine, runsH *RunsHandler, projectsH *ProjectsHandler) {
	r.GET("/", runsH.HandleForm)
	r.GET("/healthz", runsH.HandleHealth)
	r.GET("/report", runsH.HandleReport)

	api := r.Group("/api")
	{
		api.GET("/folders", runsH.HandleFolders)
		api.POST("/runs", runsH.HandleRun)

		if projectsH != nil {
			api.GET("/projects", projectsH.HandleSearch)
			api.GET("/projects/versions", projectsH.HandleVersions)
			api.GET("/archive/runs", projectsH.HandleRuns)
		}
	}
}

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkedin-content-platform/services"
	"linkedin-content-platform/utils"
)

// SetupExperimentRoutes mounts the variation experiment ledger endpoints.
func SetupExperimentRoutes(router *gin.Engine, platform *services.Platform) {
	experiments := router.Group("/api/experiments")

	experiments.GET("/stats", handleExperimentStats(platform))
	experiments.GET("/:post_id", handleGetExperiment(platform))
	experiments.POST("/:post_id/winner", handleMarkWinner(platform))
}

func handleExperimentStats(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := platform.Ledger.GetStats(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "failed to aggregate experiments", nil)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func handleGetExperiment(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		exp, ok, err := platform.Ledger.Get(c.Request.Context(), c.Param("post_id"))
		if err != nil {
			utils.RespondWithInternalError(c, "failed to load experiment", nil)
			return
		}
		if !ok {
			utils.RespondWithNotFound(c, "unknown post id")
			return
		}
		c.JSON(http.StatusOK, gin.H{"experiment": exp})
	}
}

func handleMarkWinner(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		postID := c.Param("post_id")
		marked, err := platform.Ledger.MarkWinner(c.Request.Context(), postID)
		if err != nil {
			utils.RespondWithInternalError(c, "failed to mark winner", nil)
			return
		}
		if !marked {
			utils.RespondWithNotFound(c, "unknown post id")
			return
		}

		weights, err := platform.Ledger.GetWeights(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "winner marked but weights unavailable", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"post_id": postID, "winner": true, "weights": weights})
	}
}

package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"linkedin-content-platform/services"
	"linkedin-content-platform/utils"
)

type enqueueRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// SetupQueueRoutes mounts the per-client queue, history and lock endpoints.
func SetupQueueRoutes(router *gin.Engine, platform *services.Platform) {
	queue := router.Group("/api/queue")
	queue.GET("/:client", handleListQueue(platform))
	queue.POST("/:client", handleEnqueue(platform))
	queue.DELETE("/:client", handleClearQueue(platform))
	queue.DELETE("/:client/:index", handleRemoveAt(platform))

	router.GET("/api/jobs/:client", handleHistory(platform))
	router.DELETE("/api/locks", handleClearLocks(platform))
}

func handleListQueue(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.Param("client")
		urls, err := platform.Queue.List(c.Request.Context(), client)
		if err != nil {
			utils.RespondWithInternalError(c, "failed to read queue", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"client": client, "queue": urls, "count": len(urls)})
	}
}

func handleEnqueue(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req enqueueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", err.Error())
			return
		}

		ctx := c.Request.Context()
		client := c.Param("client")
		if _, ok, err := platform.Registry.Get(ctx, client); err != nil {
			utils.RespondWithInternalError(c, "failed to load client", nil)
			return
		} else if !ok {
			utils.RespondWithNotFound(c, "unknown client")
			return
		}

		if err := platform.Queue.Enqueue(ctx, client, req.URL); err != nil {
			utils.RespondWithInternalError(c, "failed to enqueue", nil)
			return
		}

		urls, err := platform.Queue.List(ctx, client)
		if err != nil {
			utils.RespondWithInternalError(c, "failed to read queue", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"client": client, "queue": urls, "count": len(urls)})
	}
}

func handleClearQueue(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.Param("client")
		if err := platform.Queue.Clear(c.Request.Context(), client); err != nil {
			utils.RespondWithInternalError(c, "failed to clear queue", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"client": client, "cleared": true})
	}
}

func handleRemoveAt(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.Param("client")
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			utils.RespondWithBadRequest(c, "index must be a number", nil)
			return
		}

		err = platform.Queue.RemoveAt(c.Request.Context(), client, index)
		if errors.Is(err, services.ErrIndexOutOfRange) {
			utils.RespondWithBadRequest(c, "index out of range", gin.H{"index": index})
			return
		}
		if err != nil {
			utils.RespondWithInternalError(c, "failed to remove entry", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"client": client, "removed_index": index})
	}
}

func handleHistory(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.Param("client")
		records, err := platform.Queue.History(c.Request.Context(), client)
		if err != nil {
			utils.RespondWithInternalError(c, "failed to read history", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"client": client, "history": records, "count": len(records)})
	}
}

func handleClearLocks(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		names, err := platform.Registry.Names(ctx)
		if err != nil {
			utils.RespondWithInternalError(c, "failed to load clients", nil)
			return
		}
		platform.Queue.ClearAllLocks(ctx, names)
		c.JSON(http.StatusOK, gin.H{"cleared_for": names})
	}
}

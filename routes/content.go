package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"linkedin-content-platform/internal/config"
	"linkedin-content-platform/internal/logger"
	"linkedin-content-platform/internal/queue"
	"linkedin-content-platform/middleware"
	"linkedin-content-platform/models"
	"linkedin-content-platform/services"
	"linkedin-content-platform/utils"
)

type generateRequest struct {
	Client string `json:"client"`
	URL    string `json:"url" binding:"required,url"`
}

type stageActionRequest struct {
	Client string `json:"client" binding:"required"`
	Hash   string `json:"hash" binding:"required"`
}

// SetupContentRoutes mounts generation, preview approval and the
// cron-triggered processing endpoints. When a task client is provided,
// generation is deferred to the worker; otherwise it runs inline.
func SetupContentRoutes(router *gin.Engine, platform *services.Platform, cfg *config.Config, tasks *asynq.Client) {
	api := router.Group("/api")

	api.POST("/generate", handleGenerate(platform))
	api.POST("/stage", handleStage(platform))
	api.GET("/stage/:client/:hash", handleGetStage(platform))
	api.POST("/approve", handleApprove(platform))
	api.POST("/cancel", handleCancel(platform))
	api.GET("/limits", handleLimits(platform))
	api.POST("/jobs/:client", handleDispatchJob(platform, tasks))

	cron := api.Group("/process")
	cron.Use(middleware.CronAuthMiddleware(cfg.CronSecret))
	cron.POST("/next/:client", handleProcessNext(platform))
	cron.POST("/auto", handleProcessAuto(platform, tasks))
}

// handleGenerate runs the pipeline for an ad hoc URL and returns the bundle
// without publishing or staging anything. Serialized per client by the test
// lock so dry runs never race a live processing run.
func handleGenerate(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, req, ok := bindGenerateClient(c, platform)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		acquired, err := platform.Queue.AcquireLock(ctx, client.Name, services.LockPurposeTest, services.DefaultLockTTL)
		if err != nil {
			utils.RespondWithInternalError(c, "failed to acquire lock", nil)
			return
		}
		if !acquired {
			utils.RespondWithConflict(c, "a generation run is already in progress for this client")
			return
		}
		defer platform.Queue.ReleaseLock(ctx, client.Name, services.LockPurposeTest)

		// Force preview so the pipeline never auto-publishes a dry run.
		client.PreviewMode = true
		bundle, err := platform.Pipeline.Run(ctx, req.URL, client)
		if err != nil {
			respondProcessError(c, services.ProcessResult{Client: client.Name, URL: req.URL}, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bundle": bundle})
	}
}

// handleStage generates a bundle for the URL and stages it for approval,
// returning the hash the approve/cancel calls need.
func handleStage(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, req, ok := bindGenerateClient(c, platform)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		acquired, err := platform.Queue.AcquireLock(ctx, client.Name, services.LockPurposeTest, services.DefaultLockTTL)
		if err != nil {
			utils.RespondWithInternalError(c, "failed to acquire lock", nil)
			return
		}
		if !acquired {
			utils.RespondWithConflict(c, "a generation run is already in progress for this client")
			return
		}
		defer platform.Queue.ReleaseLock(ctx, client.Name, services.LockPurposeTest)

		client.PreviewMode = true
		bundle, err := platform.Pipeline.Run(ctx, req.URL, client)
		if err != nil {
			respondProcessError(c, services.ProcessResult{Client: client.Name, URL: req.URL}, err)
			return
		}

		hash, err := platform.Preview.Stage(ctx, client.Name, bundle)
		if err != nil {
			utils.RespondWithInternalError(c, "failed to stage bundle", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"staged": true, "hash": hash, "bundle": bundle})
	}
}

// bindGenerateClient validates the request body and resolves the client,
// writing the error response itself on failure.
func bindGenerateClient(c *gin.Context, platform *services.Platform) (models.Client, generateRequest, bool) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithBadRequest(c, "Invalid request body", err.Error())
		return models.Client{}, req, false
	}
	if req.Client == "" {
		req.Client = models.DefaultClientName
	}

	client, ok, err := platform.Registry.Get(c.Request.Context(), req.Client)
	if err != nil {
		utils.RespondWithInternalError(c, "failed to load client", nil)
		return models.Client{}, req, false
	}
	if !ok {
		utils.RespondWithNotFound(c, "unknown client")
		return models.Client{}, req, false
	}
	return client, req, true
}

// handleDispatchJob defers one process-next run for the client to the
// worker; without a task client it runs inline.
func handleDispatchJob(platform *services.Platform, tasks *asynq.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		name := c.Param("client")
		if _, ok, err := platform.Registry.Get(ctx, name); err != nil {
			utils.RespondWithInternalError(c, "failed to load client", nil)
			return
		} else if !ok {
			utils.RespondWithNotFound(c, "unknown client")
			return
		}

		if tasks != nil {
			task, err := queue.NewProcessNextTask(name)
			if err == nil {
				_, err = tasks.Enqueue(task)
			}
			if err != nil {
				logger.Error("task dispatch failed", "client", name, "error", err.Error())
				utils.RespondWithInternalError(c, "failed to dispatch job", nil)
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"client": name, "dispatched": true})
			return
		}

		result, err := platform.Processor.ProcessNext(ctx, name)
		if err != nil {
			respondProcessError(c, result, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func handleGetStage(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		stage, err := platform.Preview.GetStage(c.Request.Context(), c.Param("client"), c.Param("hash"))
		if errors.Is(err, services.ErrStageNotFound) {
			utils.RespondWithNotFound(c, "no staged post for that hash")
			return
		}
		if err != nil {
			utils.RespondWithInternalError(c, "failed to load stage", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"stage": stage})
	}
}

func handleApprove(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req stageActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", err.Error())
			return
		}

		submissionID, err := platform.Preview.Approve(c.Request.Context(), req.Client, req.Hash)
		switch {
		case errors.Is(err, services.ErrStageNotFound):
			utils.RespondWithNotFound(c, "no staged post for that hash")
			return
		case errors.Is(err, services.ErrPublishRejected):
			utils.RespondWithError(c, http.StatusUnprocessableEntity, "publish_rejected", err.Error(), nil)
			return
		case services.IsTransient(err):
			utils.RespondWithError(c, http.StatusServiceUnavailable, "publisher_unavailable",
				"publisher is temporarily unavailable, the stage is kept for retry", nil)
			return
		case err != nil:
			utils.RespondWithInternalError(c, "approve failed", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"approved": true, "submission_id": submissionID})
	}
}

func handleCancel(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req stageActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", err.Error())
			return
		}
		if err := platform.Preview.Cancel(c.Request.Context(), req.Client, req.Hash); err != nil {
			utils.RespondWithInternalError(c, "cancel failed", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cancelled": true})
	}
}

func handleLimits(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		today := platform.Limiter.Today()
		c.JSON(http.StatusOK, gin.H{
			"date":      today,
			"weekday":   platform.Limiter.IsWeekday(),
			"count":     platform.Limiter.GetCount(ctx, today),
			"remaining": platform.Limiter.RemainingToday(ctx),
			"can_post":  platform.Limiter.CanPostNow(ctx),
		})
	}
}

func handleProcessNext(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := platform.Processor.ProcessNext(c.Request.Context(), c.Param("client"))
		if err != nil {
			respondProcessError(c, result, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func handleProcessAuto(platform *services.Platform, tasks *asynq.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tasks != nil {
			task := queue.NewSweepTask()
			if _, err := tasks.Enqueue(task); err != nil {
				utils.RespondWithInternalError(c, "failed to dispatch sweep", nil)
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"dispatched": true})
			return
		}

		results, err := platform.Processor.ProcessAllClients(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "sweep failed", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

func respondProcessError(c *gin.Context, result services.ProcessResult, err error) {
	switch {
	case errors.Is(err, services.ErrContentUnavailable), errors.Is(err, services.ErrSourceBlocked):
		utils.RespondWithError(c, http.StatusUnprocessableEntity, "content_unavailable", err.Error(), result)
	case errors.Is(err, services.ErrGenerationFailed):
		utils.RespondWithError(c, http.StatusBadGateway, "generation_failed", err.Error(), result)
	case errors.Is(err, services.ErrPublishRejected):
		utils.RespondWithError(c, http.StatusUnprocessableEntity, "publish_rejected", err.Error(), result)
	case services.IsTransient(err):
		utils.RespondWithError(c, http.StatusServiceUnavailable, "temporarily_unavailable", err.Error(), result)
	default:
		utils.RespondWithInternalError(c, err.Error(), result)
	}
}

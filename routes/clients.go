package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkedin-content-platform/models"
	"linkedin-content-platform/services"
	"linkedin-content-platform/utils"
)

// SetupClientRoutes mounts tenant CRUD under /api/clients.
func SetupClientRoutes(router *gin.Engine, platform *services.Platform) {
	clients := router.Group("/api/clients")

	clients.GET("", handleListClients(platform))
	clients.POST("", handleCreateClient(platform))
	clients.PATCH("/:name", handleUpdateClient(platform))
	clients.DELETE("/:name", handleDeleteClient(platform))
}

func handleListClients(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := platform.Registry.GetAll(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "failed to load clients", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"clients": all, "count": len(all)})
	}
}

func handleCreateClient(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateClientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", err.Error())
			return
		}

		ctx := c.Request.Context()
		if err := platform.Registry.Add(ctx, req.Name, req.PostingAccountID, req.Settings); err != nil {
			utils.RespondWithInternalError(c, "failed to save client", nil)
			return
		}

		client, _, err := platform.Registry.Get(ctx, req.Name)
		if err != nil {
			utils.RespondWithInternalError(c, "failed to load client", nil)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"client": client})
	}
}

func handleUpdateClient(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UpdateClientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", err.Error())
			return
		}

		settings := models.ClientSettings{
			PostingAccountID: req.PostingAccountID,
			Style:            req.Style,
			PreviewMode:      req.PreviewMode,
		}
		if settings.IsEmpty() {
			utils.RespondWithBadRequest(c, "no settings to update", nil)
			return
		}

		ctx := c.Request.Context()
		name := c.Param("name")
		if err := platform.Registry.UpdateSettings(ctx, name, settings); err != nil {
			utils.RespondWithInternalError(c, "failed to update client", nil)
			return
		}

		client, _, err := platform.Registry.Get(ctx, name)
		if err != nil {
			utils.RespondWithInternalError(c, "failed to load client", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"client": client})
	}
}

func handleDeleteClient(platform *services.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		err := platform.Registry.Remove(c.Request.Context(), name)
		if errors.Is(err, services.ErrProtectedClient) {
			utils.RespondWithForbidden(c, "the default client cannot be removed")
			return
		}
		if err != nil {
			utils.RespondWithInternalError(c, "failed to remove client", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": name})
	}
}

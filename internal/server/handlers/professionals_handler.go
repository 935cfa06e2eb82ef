package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edgard/construfacil/internal/store"
)

// NewListProfessionalsHandler serves GET /api/professionals.
func NewListProfessionalsHandler(deps HandlerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := deps.Directory.List(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		if list == nil {
			list = []store.Professional{}
		}
		c.JSON(http.StatusOK, gin.H{"professionals": list})
	}
}

// NewRegisterProfessionalHandler serves POST /api/professionals. Any earlier
// listing of the same owner is replaced.
func NewRegisterProfessionalHandler(deps HandlerDeps) gin.HandlerFunc {
	log := deps.Logger.With("handler", "register_professional")

	return func(c *gin.Context) {
		var reg store.Registration
		if err := c.ShouldBindJSON(&reg); err != nil {
			_ = c.Error(fmt.Errorf("%w: %w", errBadRequest, err))
			return
		}

		ctx := c.Request.Context()
		p, err := deps.Directory.Register(ctx, reg)
		if err != nil {
			_ = c.Error(err)
			return
		}

		log.InfoContext(ctx, "Professional registered", "owner_id", p.OwnerID, "id", p.ID, "trade", p.Trade)
		c.JSON(http.StatusCreated, gin.H{"ok": true, "professional": p})
	}
}

// NewDeleteProfessionalHandler serves DELETE /api/professionals/:ownerId.
// Unknown owners are not an error.
func NewDeleteProfessionalHandler(deps HandlerDeps) gin.HandlerFunc {
	log := deps.Logger.With("handler", "delete_professional")

	return func(c *gin.Context) {
		ownerID := c.Param("ownerId")

		ctx := c.Request.Context()
		removed, err := deps.Directory.DeleteByOwner(ctx, ownerID)
		if err != nil {
			_ = c.Error(err)
			return
		}

		log.InfoContext(ctx, "Professional listing deleted", "owner_id", ownerID, "removed", removed)
		c.JSON(http.StatusOK, gin.H{"ok": true, "removed": removed})
	}
}

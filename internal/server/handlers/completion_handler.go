package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edgard/construfacil/internal/gemini"
	"github.com/edgard/construfacil/internal/sanitize"
)

type completionRequest struct {
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	gemini.Result
	// HTML is the answer rendered from markdown and sanitized.
	HTML string `json:"html,omitempty"`
}

// NewCompletionHandler serves POST /api/gemini.
func NewCompletionHandler(deps HandlerDeps) gin.HandlerFunc {
	log := deps.Logger.With("handler", "completion")
	renderer := sanitize.NewRenderer()

	return func(c *gin.Context) {
		var req completionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(fmt.Errorf("%w: %w", gemini.ErrInvalidPrompt, err))
			return
		}

		ctx := c.Request.Context()
		res, err := deps.Completer.Complete(ctx, req.Prompt)
		if err != nil {
			if errors.Is(err, gemini.ErrUnavailable) {
				log.ErrorContext(ctx, "Consultant unavailable", "error", err)
			}
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, completionResponse{Result: res, HTML: renderer.HTML(res.Text)})
	}
}

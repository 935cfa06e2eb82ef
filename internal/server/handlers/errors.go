package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edgard/construfacil/internal/gemini"
	"github.com/edgard/construfacil/internal/store"
)

// Messages shown to callers.
const (
	MsgConsultantOffline = "O Consultor Técnico está offline no momento."
	MsgInvalidPrompt     = "O prompt é obrigatório."
	MsgInvalidBody       = "Corpo da requisição inválido."
	MsgInternal          = "Erro interno do servidor."
)

var errBadRequest = errors.New("bad request")

// statusFor maps a handler error to its HTTP status and the message returned
// to the caller.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, gemini.ErrInvalidPrompt):
		return http.StatusBadRequest, MsgInvalidPrompt
	case errors.Is(err, gemini.ErrUnavailable):
		return http.StatusServiceUnavailable, MsgConsultantOffline
	case errors.Is(err, store.ErrInvalidListing):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, MsgInvalidBody
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// ErrorHandler renders the last error attached to the context as
// {"error": message}. Handlers attach errors with c.Error and return.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		status, msg := statusFor(c.Errors.Last().Err)
		c.JSON(status, gin.H{"error": msg})
	}
}

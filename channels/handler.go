// Package channels implements the /v1 channel and message routes.
package channels

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"msgsvc/store"
)

const (
	ErrChannelExists     = "error channel name already being used"
	ErrChannelNotFound   = "error could not find channel"
	ErrMessageNotFound   = "error could not find message"
	ErrNameRequired      = "error name field required"
	ErrBodyRequired      = "error body field required"
	ErrStartCheckGeneral = "error getting default general channel"
)

// Handler serves the channel and message routes. Every failure other than a
// missing identity or a non-creator mutation is reported as a 200 with an
// error payload, which is what existing clients expect.
type Handler struct {
	Store store.Store
	Log   logrus.FieldLogger
}

func NewHandler(s store.Store, log logrus.FieldLogger) *Handler {
	return &Handler{Store: s, Log: log}
}

func (h *Handler) fail(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"error": msg})
}

func (h *Handler) failErr(c *gin.Context, err error, action string) {
	h.Log.WithError(err).WithField("action", action).Warn("store call failed")
	h.fail(c, err.Error())
}

// bindBody decodes the JSON body. A body that does not decode cleanly counts
// as empty, so a mistyped field never leaves a half-filled request behind.
func bindBody[T any](c *gin.Context) T {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		var empty T
		return empty
	}
	return req
}

package channels

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"msgsvc/auth"
	"msgsvc/store"
	"msgsvc/types"
)

type messageRequest struct {
	Body string `json:"body"`
}

// HandleGetMessages returns the newest messages of the channel, at most
// store.MessageWindow of them. An unknown channel yields an empty list.
func (h *Handler) HandleGetMessages(c *gin.Context) {
	messages, err := h.Store.GetMessages(c.Request.Context(), store.MessageQuery{ChannelID: c.Param("id")})
	if err != nil {
		h.failErr(c, err, "get messages")
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *Handler) HandleInsertMessage(c *gin.Context) {
	req := bindBody[messageRequest](c)
	if req.Body == "" {
		h.fail(c, ErrBodyRequired)
		return
	}

	channel, ok := h.findChannel(c)
	if !ok {
		return
	}

	now := types.NowMillis()
	message, err := h.Store.InsertMessage(c.Request.Context(), types.NewMessage(types.MessageFields{
		ChannelID: channel.ID,
		Body:      req.Body,
		Creator:   auth.Requester(c),
		CreatedAt: now,
		EditedAt:  now,
	}))
	if err != nil {
		h.failErr(c, err, "insert message")
		return
	}
	c.JSON(http.StatusOK, message)
}

func (h *Handler) findMessage(c *gin.Context) (*types.Message, bool) {
	found, err := h.Store.GetMessages(c.Request.Context(), store.MessageQuery{ID: c.Param("id")})
	if err != nil {
		h.failErr(c, err, "find message")
		return nil, false
	}
	if len(found) == 0 {
		h.fail(c, ErrMessageNotFound)
		return nil, false
	}
	return &found[0], true
}

func (h *Handler) HandleUpdateMessage(c *gin.Context) {
	message, ok := h.findMessage(c)
	if !ok {
		return
	}
	if !auth.RequireCreator(c, message.Creator) {
		return
	}

	req := bindBody[messageRequest](c)

	updates := store.MessageUpdates{EditedAt: types.NowMillis()}
	if req.Body != "" {
		updates.Body = &req.Body
	}

	updated, err := h.Store.UpdateMessage(c.Request.Context(), message.ID, updates)
	if err != nil {
		h.failErr(c, err, "update message")
		return
	}
	if updated == nil {
		h.fail(c, ErrMessageNotFound)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) HandleDeleteMessage(c *gin.Context) {
	message, ok := h.findMessage(c)
	if !ok {
		return
	}
	if !auth.RequireCreator(c, message.Creator) {
		return
	}

	results, err := h.Store.DeleteMessages(c.Request.Context(), store.MessageQuery{ID: message.ID})
	if err != nil {
		h.failErr(c, err, "delete message")
		return
	}
	if results.N == 0 {
		h.fail(c, ErrMessageNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

package channels

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"msgsvc/auth"
	"msgsvc/store"
	"msgsvc/types"
)

type channelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) HandleGetChannels(c *gin.Context) {
	channels, err := h.Store.GetChannels(c.Request.Context(), store.ChannelQuery{})
	if err != nil {
		h.failErr(c, err, "get channels")
		return
	}
	c.JSON(http.StatusOK, channels)
}

// HandleInsertChannel creates a channel unless one with the same name exists.
// The name check and the insert are separate store calls, so two concurrent
// creates of one name can both succeed.
func (h *Handler) HandleInsertChannel(c *gin.Context) {
	req := bindBody[channelRequest](c)
	if req.Name == "" {
		h.fail(c, ErrNameRequired)
		return
	}

	ctx := c.Request.Context()
	existing, err := h.Store.GetChannels(ctx, store.ChannelQuery{Name: req.Name})
	if err != nil {
		h.failErr(c, err, "check channel name")
		return
	}
	if len(existing) > 0 {
		h.fail(c, ErrChannelExists)
		return
	}

	now := types.NowMillis()
	channel, err := h.Store.InsertChannel(ctx, types.NewChannel(types.ChannelFields{
		Name:        req.Name,
		Description: req.Description,
		Creator:     auth.Requester(c),
		CreatedAt:   now,
		EditedAt:    now,
	}))
	if err != nil {
		h.failErr(c, err, "insert channel")
		return
	}

	h.Log.WithField("channel_id", channel.ID).Info("channel created")
	c.JSON(http.StatusOK, channel)
}

// findChannel loads the channel named by the :id param, writing the error
// payload itself when there is none.
func (h *Handler) findChannel(c *gin.Context) (*types.Channel, bool) {
	found, err := h.Store.GetChannels(c.Request.Context(), store.ChannelQuery{ID: c.Param("id")})
	if err != nil {
		h.failErr(c, err, "find channel")
		return nil, false
	}
	if len(found) == 0 {
		h.fail(c, ErrChannelNotFound)
		return nil, false
	}
	return &found[0], true
}

func (h *Handler) HandleUpdateChannel(c *gin.Context) {
	channel, ok := h.findChannel(c)
	if !ok {
		return
	}
	if !auth.RequireCreator(c, channel.Creator) {
		return
	}

	req := bindBody[channelRequest](c)

	updates := store.ChannelUpdates{EditedAt: types.NowMillis()}
	if req.Name != "" {
		updates.Name = &req.Name
	}
	if req.Description != "" {
		updates.Description = &req.Description
	}

	updated, err := h.Store.UpdateChannel(c.Request.Context(), channel.ID, updates)
	if err != nil {
		h.failErr(c, err, "update channel")
		return
	}
	if updated == nil {
		h.fail(c, ErrChannelNotFound)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// HandleDeleteChannel removes the channel and then its messages. The two
// deletes are independent: a failed message delete leaves the messages behind
// and is reported alongside the channel result.
func (h *Handler) HandleDeleteChannel(c *gin.Context) {
	channel, ok := h.findChannel(c)
	if !ok {
		return
	}
	if !auth.RequireCreator(c, channel.Creator) {
		return
	}

	ctx := c.Request.Context()
	result, err := h.Store.DeleteChannel(ctx, channel.ID)
	if err != nil {
		h.failErr(c, err, "delete channel")
		return
	}

	results, err := h.Store.DeleteMessages(ctx, store.MessageQuery{ChannelID: channel.ID})
	if err != nil {
		h.Log.WithError(err).WithField("channel_id", channel.ID).Warn("messages left behind after channel delete")
		c.JSON(http.StatusOK, gin.H{"result": result, "error": err.Error()})
		return
	}

	h.Log.WithFields(logrus.Fields{
		"channel_id": channel.ID,
		"messages":   results.N,
	}).Info("channel deleted")
	c.JSON(http.StatusOK, gin.H{"result": result, "results": results})
}

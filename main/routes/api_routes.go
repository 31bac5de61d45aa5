package routes

import (
	"msgsvc/auth"
	"msgsvc/channels"

	"github.com/gin-gonic/gin"
)

func SetupAPIRoutes(r *gin.Engine, h *channels.Handler) {
	api := r.Group("/v1", auth.XUserMiddleware())
	{
		api.GET("/channels", h.HandleGetChannels)
		api.POST("/channels", h.HandleInsertChannel)
		api.GET("/channels/:id", h.HandleGetMessages)
		api.POST("/channels/:id", h.HandleInsertMessage)
		api.PATCH("/channels/:id", h.HandleUpdateChannel)
		api.DELETE("/channels/:id", h.HandleDeleteChannel)
		api.PATCH("/messages/:id", h.HandleUpdateMessage)
		api.DELETE("/messages/:id", h.HandleDeleteMessage)
	}
}

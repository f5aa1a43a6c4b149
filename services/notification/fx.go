package notification

import (
	"engagehub/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(NewService, NewHandler),
	fx.Invoke(registerRoutes),
)

type routeParams struct {
	fx.In

	Router  *gin.Engine
	Redis   *redis.Client
	Handler *Handler
}

func registerRoutes(p routeParams) {
	v1 := p.Router.Group("/v1", middleware.Auth(p.Redis))

	v1.GET("/notifications", p.Handler.List)
	v1.POST("/notifications/read", p.Handler.MarkAllRead)
}

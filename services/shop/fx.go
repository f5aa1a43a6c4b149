package shop

import (
	"engagehub/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("shop.service",
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
	v1 := p.Router.Group("/v1")

	v1.GET("/shop/packages", p.Handler.Packages)

	authed := v1.Group("", middleware.Auth(p.Redis))
	authed.POST("/shop/settle", p.Handler.Settle)
}

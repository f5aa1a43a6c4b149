package campaign

import (
	"engagehub/pkg/middleware"
	"engagehub/services/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("campaign.service",
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

	v1.GET("/campaigns", p.Handler.ListActive)
	v1.GET("/campaigns/:id", p.Handler.Get)

	brand := v1.Group("", middleware.Auth(p.Redis), middleware.RequireRole(user.RoleBrand))
	brand.POST("/campaigns", p.Handler.Create)
	brand.GET("/brand/campaigns", p.Handler.ListByBrand)
	brand.POST("/campaigns/:id/close", p.Handler.Close)
}

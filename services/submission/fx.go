package submission

import (
	"engagehub/pkg/middleware"
	"engagehub/pkg/storage"
	"engagehub/services/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("submission.service",
	fx.Provide(NewService, newHandler),
	fx.Invoke(registerRoutes),
)

type handlerParams struct {
	fx.In

	Service *Service
	Bucket  *storage.Bucket `optional:"true"`
}

func newHandler(p handlerParams) *Handler {
	return NewHandler(p.Service, p.Bucket)
}

type routeParams struct {
	fx.In

	Router  *gin.Engine
	Redis   *redis.Client
	Handler *Handler
}

func registerRoutes(p routeParams) {
	v1 := p.Router.Group("/v1", middleware.Auth(p.Redis))

	member := v1.Group("", middleware.RequireRole(user.RoleUser))
	member.POST("/campaigns/:id/submissions", p.Handler.Create)
	member.GET("/submissions", p.Handler.ListByUser)

	brand := v1.Group("", middleware.RequireRole(user.RoleBrand))
	brand.GET("/brand/submissions", p.Handler.ListForBrand)
	brand.POST("/submissions/:id/moderate", p.Handler.Moderate)
}

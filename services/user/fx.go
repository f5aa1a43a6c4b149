package user

import (
	"engagehub/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
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

	v1.POST("/auth/signup", p.Handler.SignUp)
	v1.POST("/auth/signin", p.Handler.SignIn)
	v1.GET("/leaderboard", p.Handler.Leaderboard)

	authed := v1.Group("", middleware.Auth(p.Redis))
	authed.POST("/auth/signout", p.Handler.SignOut)
	authed.GET("/me", p.Handler.Me)
	authed.PUT("/me/wallet", p.Handler.AttachWallet)
}

package feed

import (
	"io"

	"engagehub/pkg/changefeed"
	"engagehub/pkg/errutil"
	"engagehub/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("feed.service",
	fx.Provide(NewHandler),
	fx.Invoke(registerRoutes),
)

type Handler struct {
	subscriber *changefeed.Subscriber
}

func NewHandler(subscriber *changefeed.Subscriber) *Handler {
	return &Handler{subscriber: subscriber}
}

type routeParams struct {
	fx.In

	Router  *gin.Engine
	Redis   *redis.Client
	Handler *Handler
}

func registerRoutes(p routeParams) {
	v1 := p.Router.Group("/v1", middleware.Auth(p.Redis))

	v1.GET("/feed/:table", p.Handler.Stream)
}

func validTable(table string) bool {
	switch table {
	case changefeed.TableUsers, changefeed.TableCampaigns, changefeed.TableSubmissions, changefeed.TableNotifications:
		return true
	}
	return false
}

// Stream pushes table change events to the client as server-sent
// events until the client disconnects. Delivery is at-least-once with
// no ordering guarantee; clients re-derive their view on each event.
func (h *Handler) Stream(c *gin.Context) {
	table := c.Param("table")
	if !validTable(table) {
		c.Error(errutil.BadRequest("unknown feed table"))
		return
	}

	ctx := c.Request.Context()

	events, err := h.subscriber.Subscribe(ctx, table)
	if err != nil {
		zap.L().Error("failed to subscribe to feed", zap.String("table", table), zap.Error(err))
		c.Error(errutil.Internal("failed to subscribe to feed", errutil.WithErr(err)))
		return
	}

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("change", event)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

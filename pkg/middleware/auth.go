package middleware

import (
	"encoding/json"
	"strings"

	"engagehub/pkg/errutil"
	"engagehub/pkg/rediskey"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const actorKey = "actor"

// Session is the redis-backed record behind a bearer token.
type Session struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Auth resolves the bearer token to a session and aborts unauthenticated
// requests. Operations downstream read the acting user from the context.
func Auth(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, errutil.Unauthorized("missing bearer token"))
			return
		}

		raw, err := rdb.Get(c.Request.Context(), rediskey.BuildSessionKey(token)).Result()
		if err == redis.Nil {
			abort(c, errutil.Unauthorized("session expired or unknown"))
			return
		}
		if err != nil {
			abort(c, errutil.Internal("failed to resolve session", errutil.WithErr(err)))
			return
		}

		var session Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			abort(c, errutil.Internal("malformed session record", errutil.WithErr(err)))
			return
		}

		c.Set(actorKey, session)
		c.Next()
	}
}

// RequireRole gates a route group to a single role. Runs after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := ActorFrom(c)
		if !ok || session.Role != role {
			abort(c, errutil.Forbidden("requires "+role+" role"))
			return
		}
		c.Next()
	}
}

func ActorFrom(c *gin.Context) (Session, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return Session{}, false
	}
	session, ok := v.(Session)
	return session, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func abort(c *gin.Context, err error) {
	var base errutil.BaseError
	if b, ok := err.(errutil.BaseError); ok {
		base = b
	} else {
		base = errutil.Internal("unexpected error").(errutil.BaseError)
	}
	c.AbortWithStatusJSON(base.Code.HTTPStatus(), base.JSON())
}

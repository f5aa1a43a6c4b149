package rediskey

import "fmt"

// Key namespaces shared across services.
const (
	SessionPrefix = "session"
	FeedPrefix    = "feed"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildSessionKey returns "session:{token}"
func BuildSessionKey(token string) string {
	return NamespaceKey(SessionPrefix, token)
}

// BuildFeedChannel returns "feed:{table}"
func BuildFeedChannel(table string) string {
	return NamespaceKey(FeedPrefix, table)
}

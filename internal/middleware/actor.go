package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ActorHeader carries the identity of the operator performing a request.
// Authentication sits in front of this service, so the header is trusted.
const ActorHeader = "X-Actor-ID"

// DefaultActorID is stamped on audit fields when no actor header is sent.
const DefaultActorID = "api"

// GetActorID returns the acting user for audit stamping.
func GetActorID(c *gin.Context) string {
	actor := strings.TrimSpace(c.GetHeader(ActorHeader))
	if actor == "" {
		return DefaultActorID
	}
	return actor
}

package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ActorHeader identifies the requesting user. Authentication lives in front
// of this API; the gateway forwards the verified identity in this header.
const ActorHeader = "X-Actor-Email"

func actorEmail(c *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(c.GetHeader(ActorHeader)))
}

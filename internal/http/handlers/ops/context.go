package ops

import (
	"strconv"

	handlershared "github.com/lonqui-express/internal/http/handlers/shared"
	"github.com/lonqui-express/internal/http/response"
	"github.com/lonqui-express/internal/service"

	"github.com/gin-gonic/gin"
)

func getActor(c *gin.Context) (service.Actor, bool) {
	actorID, ok := handlershared.GetContextUintWithKeys(c, "actor_id", "invalid actor id", "invalid actor id type")
	if !ok {
		return service.Actor{}, false
	}
	role := handlershared.GetContextString(c, "actor_role")
	if role == "" {
		respondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return service.Actor{}, false
	}
	return service.Actor{ID: actorID, Role: role}, true
}

func getRequestID(c *gin.Context) string {
	return handlershared.GetContextString(c, "request_id")
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		respondError(c, response.CodeBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return uint(parsed), true
}

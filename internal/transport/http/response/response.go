package response

import (
	"github.com/gin-gonic/gin"

	"estate-api/internal/domain"
)

// Resp is the body of every non-session JSON reply.
type Resp struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func OK(data any) Resp { return Resp{Success: true, Data: data} }

func Fail(msg string) Resp { return Resp{Success: false, Message: msg} }

// Error writes err as a failure reply. Internal errors only ever expose the
// generic message; callers log the cause.
func Error(c *gin.Context, err error) {
	status := StatusOf(err)
	c.AbortWithStatusJSON(status, Fail(domain.MessageOf(err, CodeMsgMap[status])))
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"estate-api/internal/domain"
	"estate-api/internal/service"
	resp "estate-api/internal/transport/http/response"
	"estate-api/internal/transport/http/session"
)

type UserHandler struct {
	users  *service.UserService
	store  domain.UserStore
	issuer *session.Issuer
	log    *zap.Logger
}

func NewUserHandler(users *service.UserService, store domain.UserStore, issuer *session.Issuer, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, store: store, issuer: issuer, log: log}
}

func (h *UserHandler) fail(c *gin.Context, err error) {
	if domain.KindOf(err) == domain.KindInternal {
		h.log.Error("signup failed", zap.Error(err), zap.String("rid", c.GetString("X-Request-ID")))
	}
	resp.Error(c, err)
}

// Signup handles POST /api/v1/user/signup. On success the session issuer
// writes the only reply.
func (h *UserHandler) Signup(c *gin.Context) {
	var in service.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, domain.Validation(service.MsgFieldsRequired))
		return
	}
	u, err := h.users.Signup(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.issuer.Issue(c, u); err != nil {
		h.fail(c, err)
	}
}

// Me handles GET /api/v1/user/me for a request carrying a valid session.
func (h *UserHandler) Me(c *gin.Context) {
	uid := c.GetString("userId")
	u, err := h.store.FindByID(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, domain.Internal("load session user", err))
		return
	}
	if u == nil {
		resp.Error(c, domain.NotFound("user not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": session.NewView(u)})
}

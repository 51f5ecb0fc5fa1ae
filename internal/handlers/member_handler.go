package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reward-service/internal/services"
	"reward-service/pkg/common"
)

type MemberHandler struct {
	Members *services.MemberService
}

func NewMemberHandler(members *services.MemberService) *MemberHandler {
	return &MemberHandler{Members: members}
}

type RegisterMemberRequest struct {
	InviterUsername string `json:"inviterUsername"`
	Username        string `json:"username" binding:"required"`
	Role            string `json:"role"`
}

// Register consumes a registration event from the main platform and triggers
// reward issuance for the inviter's chain.
func (h *MemberHandler) Register(c *gin.Context) {
	var req RegisterMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	member, err := h.Members.Register(services.RegisterMemberDTO{
		InviterUsername: req.InviterUsername,
		Username:        req.Username,
		Role:            req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInviterNotFound):
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Inviter not found", nil, http.StatusNotFound))
		case errors.Is(err, services.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Username already registered", nil, http.StatusBadRequest))
		default:
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("Registration failed", nil, http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(member, "Member registered"))
}

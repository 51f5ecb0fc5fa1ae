package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"reward-service/internal/services"
	"reward-service/pkg/common"
)

type RewardHandler struct {
	Rewards    *services.RewardService
	Settlement *services.SettlementService
}

func NewRewardHandler(rewards *services.RewardService, settlement *services.SettlementService) *RewardHandler {
	return &RewardHandler{Rewards: rewards, Settlement: settlement}
}

// requesterId reads the member identity the gateway verified upstream.
func requesterId(c *gin.Context) (int, bool) {
	raw := c.GetHeader("X-User-Id")
	if raw == "" {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Unauthenticated", nil, http.StatusUnauthorized))
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Unauthenticated", nil, http.StatusUnauthorized))
		return 0, false
	}
	return id, true
}

// settlementError maps the settlement taxonomy onto HTTP statuses. An
// ownership mismatch gets the same response as a missing record so the API
// never reveals that the reward belongs to someone else.
func settlementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRewardNotFound), errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Reward not found", nil, http.StatusNotFound))
	case errors.Is(err, services.ErrWalletNotFound):
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Wallet not found", nil, http.StatusNotFound))
	case errors.Is(err, services.ErrNotYetDue):
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Reward is not yet due for settlement", nil, http.StatusBadRequest))
	case errors.Is(err, services.ErrTransferInProgress):
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("A transfer for this reward is already in progress, retry shortly", nil, http.StatusBadRequest))
	case errors.Is(err, services.ErrAmountMismatch):
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Amount does not match the reward record", nil, http.StatusBadRequest))
	default:
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("Settlement failed, retry later", nil, http.StatusInternalServerError))
	}
}

type SettleRewardRequest struct {
	RewardId int      `json:"rewardId" binding:"required"`
	Amount   *float64 `json:"amount"`
}

func (h *RewardHandler) SettleReward(c *gin.Context) {
	memberId, ok := requesterId(c)
	if !ok {
		return
	}

	var req SettleRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	result, err := h.Settlement.Settle(req.RewardId, memberId, req.Amount)
	if err != nil {
		settlementError(c, err)
		return
	}

	message := "Reward settled"
	if result.AlreadySettled {
		message = "Reward already settled"
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(result, message))
}

type SettleOverrideRequest struct {
	OverrideId int      `json:"overrideId" binding:"required"`
	Amount     *float64 `json:"amount"`
}

// SettleOverrideReward settles a time-gated override reward. The engine
// enforces the due date; this is a distinct route because callers hold
// override ids from a different screen than regular rewards.
func (h *RewardHandler) SettleOverrideReward(c *gin.Context) {
	memberId, ok := requesterId(c)
	if !ok {
		return
	}

	var req SettleOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	result, err := h.Settlement.Settle(req.OverrideId, memberId, req.Amount)
	if err != nil {
		settlementError(c, err)
		return
	}

	message := "Reward settled"
	if result.AlreadySettled {
		message = "Reward already settled"
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(result, message))
}

func (h *RewardHandler) ListRewards(c *gin.Context) {
	memberId, ok := requesterId(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	data := services.ListRewardsDTO{
		MemberId: memberId,
		Kind:     c.Query("kind"),
		Page:     page,
		Limit:    limit,
	}
	if raw := c.Query("status"); raw != "" {
		if status, err := strconv.Atoi(raw); err == nil {
			data.Status = &status
		}
	}

	records, total, err := h.Rewards.ListRewards(data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("Unable to fetch rewards", nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, common.PaginateResponse(records, total, page, limit, "Rewards fetched"))
}

func (h *RewardHandler) RewardSummary(c *gin.Context) {
	memberId, ok := requesterId(c)
	if !ok {
		return
	}

	summary, err := h.Rewards.RewardSummary(memberId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("Unable to fetch summary", nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(summary, "Reward summary fetched"))
}

type CreateOverrideRequest struct {
	BeneficiaryUsername string    `json:"beneficiaryUsername" binding:"required"`
	SourceUsername      string    `json:"sourceUsername" binding:"required"`
	Amount              float64   `json:"amount" binding:"required,gt=0"`
	DueDate             time.Time `json:"dueDate" binding:"required"`
}

// CreateOverrideReward is the back-office entry point for override rewards;
// the gateway only routes admins here.
func (h *RewardHandler) CreateOverrideReward(c *gin.Context) {
	var req CreateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	record, err := h.Rewards.IssueOverrideReward(services.OverrideRewardDTO{
		BeneficiaryUsername: req.BeneficiaryUsername,
		SourceUsername:      req.SourceUsername,
		Amount:              req.Amount,
		DueDate:             req.DueDate,
	})
	if err != nil {
		if errors.Is(err, services.ErrBeneficiaryNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Beneficiary not found", nil, http.StatusNotFound))
			return
		}
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(record, "Override reward created"))
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
	"github.com/vaishnav-mv/LudusCode-Backend/internal/service"
)

type DuelHandler struct {
	duelService      *service.DuelService
	antiCheatService *service.AntiCheatService
}

func NewDuelHandler(duelService *service.DuelService, antiCheatService *service.AntiCheatService) *DuelHandler {
	return &DuelHandler{
		duelService:      duelService,
		antiCheatService: antiCheatService,
	}
}

type CreateDuelRequest struct {
	Difficulty models.Difficulty `json:"difficulty" binding:"required"`
	Wager      int64             `json:"wager" binding:"gte=0"`
	OpponentID string            `json:"opponentId" binding:"required"`
}

type CreateOpenDuelRequest struct {
	Difficulty models.Difficulty `json:"difficulty" binding:"required"`
	Wager      int64             `json:"wager" binding:"gte=0"`
}

type SubmitRequest struct {
	Code string `json:"code" binding:"required"`
}

type SummaryRequest struct {
	FinalStatus models.SubmissionStatus `json:"finalStatus" binding:"required"`
	FinalCode   string                  `json:"finalCode"`
}

type UpdateStateRequest struct {
	Status   models.DuelStatus `json:"status" binding:"required"`
	WinnerID *string           `json:"winnerId"`
}

// CreateDuel 상대를 지정한 듀얼 생성
func (h *DuelHandler) CreateDuel(c *gin.Context) {
	userID := c.GetString("userId")

	var req CreateDuelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	duel, err := h.duelService.Create(req.Difficulty, req.Wager, userID, req.OpponentID)
	if err != nil {
		respondDuelError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"duel": duel})
}

// CreateOpenDuel 오픈 챌린지 생성
func (h *DuelHandler) CreateOpenDuel(c *gin.Context) {
	userID := c.GetString("userId")

	var req CreateOpenDuelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	duel, err := h.duelService.CreateOpen(req.Difficulty, req.Wager, userID)
	if err != nil {
		respondDuelError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"duel": duel})
}

// ListOpenDuels 참가 가능한 듀얼 목록
func (h *DuelHandler) ListOpenDuels(c *gin.Context) {
	duels, err := h.duelService.ListOpen()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list duels"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"duels": duels})
}

// ListActiveDuels 내가 참가 중인 진행 중 듀얼 목록
func (h *DuelHandler) ListActiveDuels(c *gin.Context) {
	userID := c.GetString("userId")

	duels, err := h.duelService.ListActive(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list duels"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"duels": duels})
}

// GetDuel 듀얼 상세 조회
func (h *DuelHandler) GetDuel(c *gin.Context) {
	duel, err := h.duelService.Detail(c.Param("id"))
	if err != nil {
		respondDuelError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"duel": duel})
}

// JoinDuel 오픈 챌린지 참가
func (h *DuelHandler) JoinDuel(c *gin.Context) {
	userID := c.GetString("userId")

	duel, err := h.duelService.Join(c.Param("id"), userID)
	if err != nil {
		respondDuelError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"duel": duel})
}

// Submit 코드 제출 및 채점
func (h *DuelHandler) Submit(c *gin.Context) {
	userID := c.GetString("userId")

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	duel, result, err := h.duelService.SubmitSolution(c.Request.Context(), c.Param("id"), userID, req.Code)
	if err != nil {
		respondDuelError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"duel":   duel,
		"result": result,
	})
}

// Forfeit 기권
func (h *DuelHandler) Forfeit(c *gin.Context) {
	userID := c.GetString("userId")

	duel, err := h.duelService.Forfeit(c.Param("id"), userID)
	if err != nil {
		respondDuelError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"duel": duel})
}

// Cancel 듀얼 취소 (생성자만)
func (h *DuelHandler) Cancel(c *gin.Context) {
	userID := c.GetString("userId")

	duel, err := h.duelService.Cancel(c.Param("id"), userID)
	if err != nil {
		respondDuelError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"duel": duel})
}

// SetSummary 결과 화면용 요약 저장
func (h *DuelHandler) SetSummary(c *gin.Context) {
	var req SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	duel, err := h.duelService.SetSummary(c.Param("id"), req.FinalStatus, req.FinalCode)
	if err != nil {
		respondDuelError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"duel": duel})
}

// FinishDraw 무승부 강제 종료 (관리자)
func (h *DuelHandler) FinishDraw(c *gin.Context) {
	duel, err := h.duelService.FinishDraw(c.Param("id"))
	if err != nil {
		respondDuelError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"duel": duel})
}

// UpdateState 상태/승자 강제 변경 (관리자, 정산 없음)
func (h *DuelHandler) UpdateState(c *gin.Context) {
	var req UpdateStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	duel, err := h.duelService.UpdateState(c.Param("id"), req.Status, req.WinnerID)
	if err != nil {
		respondDuelError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"duel": duel})
}

// ScanAntiCheat 담합 의심 제출 검사 (관리자)
func (h *DuelHandler) ScanAntiCheat(c *gin.Context) {
	duel, err := h.duelService.Detail(c.Param("id"))
	if err != nil {
		respondDuelError(c, err)
		return
	}

	report := h.antiCheatService.ScanDuel(duel)

	c.JSON(http.StatusOK, gin.H{
		"suspect": report != nil,
		"report":  report,
	})
}

// respondDuelError 서비스 에러를 HTTP 상태로 변환
func respondDuelError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDuelNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrUsersNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrNoProblemsAvailable),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrCannotJoinOwnDuel),
		errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrAlreadyStarted),
		errors.Is(err, service.ErrDuelNotInProgress),
		errors.Is(err, service.ErrCannotCancelNotWaiting):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrNotAParticipant),
		errors.Is(err, service.ErrOnlyCreatorCanCancel),
		errors.Is(err, service.ErrUserBanned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrJudgeExecutionFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

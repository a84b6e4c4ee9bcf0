package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/buildops-leveling/internal/http/middleware"
	"github.com/nurpe/buildops-leveling/internal/service"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type Handler struct {
	leveling  *service.LevelingService
	snapshots *service.SnapshotService
	log       zerolog.Logger
}

func NewHandler(leveling *service.LevelingService, snapshots *service.SnapshotService, log zerolog.Logger) *Handler {
	return &Handler{leveling: leveling, snapshots: snapshots, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/projects/:projectId/leveling", h.getBoard)
	protected.POST("/projects/:projectId/trades/:tradeId/bids", h.addBid)
	protected.PATCH("/bids/:bidId/status", h.updateBidStatus)
	protected.PATCH("/bids/:bidId/amount", h.updateBidAmount)
	protected.DELETE("/bids/:bidId", h.removeBid)
	protected.PUT("/projects/:projectId/trades/:tradeId/budget", h.upsertBudget)
	protected.PUT("/bids/:bidId/alternates", h.replaceAlternates)

	protected.POST("/projects/:projectId/snapshots", h.createSnapshot)
	protected.GET("/projects/:projectId/snapshots", h.listSnapshots)
	protected.GET("/snapshots/:snapshotId", h.getSnapshot)
	protected.POST("/snapshots/:snapshotId/export", h.exportSnapshot)
	protected.POST("/snapshots/:snapshotId/export/pdf", h.exportSnapshotPDF)
}

func (h *Handler) getBoard(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	projectID, err := parseID(c.Param("projectId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
		return
	}

	board, err := h.leveling.GetBoard(c.Request.Context(), principal, projectID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

type addBidRequest struct {
	SubID string `json:"sub_id" binding:"required"`
}

func (h *Handler) addBid(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	projectID, err := parseID(c.Param("projectId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
		return
	}
	tradeID, err := parseID(c.Param("tradeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tradeId"})
		return
	}

	var req addBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	subID, err := parseID(req.SubID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sub_id"})
		return
	}

	bid, err := h.leveling.AddBid(c.Request.Context(), principal, service.AddBidInput{
		ProjectID: projectID,
		TradeID:   tradeID,
		SubID:     subID,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bid)
}

type updateBidStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) updateBidStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	bidID, err := parseID(c.Param("bidId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bidId"})
		return
	}

	var req updateBidStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bid, err := h.leveling.UpdateBidStatus(c.Request.Context(), principal, bidID, req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, bid)
}

type updateBidAmountRequest struct {
	Amount *float64 `json:"amount"`
	Notes  string   `json:"notes"`
}

func (h *Handler) updateBidAmount(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	bidID, err := parseID(c.Param("bidId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bidId"})
		return
	}

	var req updateBidAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bid, err := h.leveling.UpdateBidAmount(c.Request.Context(), principal, bidID, req.Amount, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, bid)
}

func (h *Handler) removeBid(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	bidID, err := parseID(c.Param("bidId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bidId"})
		return
	}

	if err := h.leveling.RemoveBid(c.Request.Context(), principal, bidID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type upsertBudgetRequest struct {
	Amount *float64 `json:"amount"`
	Notes  string   `json:"notes"`
}

func (h *Handler) upsertBudget(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	projectID, err := parseID(c.Param("projectId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
		return
	}
	tradeID, err := parseID(c.Param("tradeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tradeId"})
		return
	}

	var req upsertBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	budget, err := h.leveling.UpsertBudget(c.Request.Context(), principal, service.UpsertBudgetInput{
		ProjectID: projectID,
		TradeID:   tradeID,
		Amount:    req.Amount,
		Notes:     req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

type replaceAlternatesRequest struct {
	Alternates []service.AlternateInput `json:"alternates"`
}

func (h *Handler) replaceAlternates(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	bidID, err := parseID(c.Param("bidId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bidId"})
		return
	}

	var req replaceAlternatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alternates, err := h.leveling.ReplaceAlternates(c.Request.Context(), principal, bidID, req.Alternates)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alternates": alternates})
}

type createSnapshotRequest struct {
	Title string `json:"title" binding:"required"`
	Notes string `json:"notes"`
}

func (h *Handler) createSnapshot(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	projectID, err := parseID(c.Param("projectId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
		return
	}

	var req createSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.snapshots.Create(c.Request.Context(), principal, service.CreateSnapshotInput{
		ProjectID: projectID,
		Title:     req.Title,
		Notes:     req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

func (h *Handler) listSnapshots(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	projectID, err := parseID(c.Param("projectId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
		return
	}

	snapshots, err := h.snapshots.List(c.Request.Context(), principal, projectID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}

func (h *Handler) getSnapshot(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	snapshotID, err := parseID(c.Param("snapshotId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshotId"})
		return
	}

	view, err := h.snapshots.Get(c.Request.Context(), principal, snapshotID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) exportSnapshot(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	snapshotID, err := parseID(c.Param("snapshotId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshotId"})
		return
	}

	result, err := h.snapshots.ExportExcel(c.Request.Context(), principal, snapshotID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentTypeXLSX, result.Content)
}

func (h *Handler) exportSnapshotPDF(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	snapshotID, err := parseID(c.Param("snapshotId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshotId"})
		return
	}

	result, err := h.snapshots.ExportPDF(c.Request.Context(), principal, snapshotID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentTypePDF, result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(raw string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(raw))
}

package restapi

import (
	"net/http"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/domain/entity"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RebalanceHandler computes and looks up rebalance proposals.
type RebalanceHandler struct {
	service port.RebalanceService
}

// NewRebalanceHandler creates a new RebalanceHandler.
func NewRebalanceHandler(s port.RebalanceService) *RebalanceHandler {
	return &RebalanceHandler{service: s}
}

// PostRebalanceHandler computes a rebalance for the request body.
func (h *RebalanceHandler) PostRebalanceHandler(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		abortWithKind(c, http.StatusBadRequest, entity.KindInvalidInput, "failed to read request body")
		return
	}
	var req port.RebalanceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		abortWithKind(c, http.StatusBadRequest, entity.KindInvalidInput, "malformed request body: "+err.Error())
		return
	}
	if req.StrategyID == "" {
		abortWithKind(c, http.StatusBadRequest, entity.KindInvalidInput, "strategyId is required")
		return
	}

	out, err := h.service.Rebalance(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	message := "Rebalance computed."
	if !out.Valid {
		message = "Rebalance could not be funded: " + out.ErrorMessage
	}
	c.JSON(http.StatusOK, APIResponse{Data: out, StatusMessage: message})
}

// GetRebalanceHandler returns a previously computed rebalance by id.
func (h *RebalanceHandler) GetRebalanceHandler(c *gin.Context) {
	out, ok := h.service.Get(c.Param("id"))
	if !ok {
		abortWithKind(c, http.StatusNotFound, "NOT_FOUND", "rebalance "+c.Param("id")+" not found or expired")
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: out, StatusMessage: "Rebalance found."})
}

package rider

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	handlershared "github.com/haatbazar/internal/http/handlers/shared"
	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/repository"
	"github.com/haatbazar/internal/service"
)

func getRiderID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "rider_id")
}

func respondAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, "assignment not found")
	case errors.Is(err, service.ErrAssignmentNotOwned):
		response.Forbidden(c, "assignment does not belong to you")
	case errors.Is(err, service.ErrAssignmentStateError):
		response.Conflict(c, "assignment state does not allow this action")
	default:
		handlershared.RespondError(c, http.StatusInternalServerError, "failed to update assignment", err)
	}
}

// ListAssignments 当前骑手的配送指派列表
func (h *Handler) ListAssignments(c *gin.Context) {
	riderID, ok := getRiderID(c)
	if !ok {
		return
	}

	page, pageSize := handlershared.QueryPagination(c)
	assignments, total, err := h.DeliveryService.ListAssignments(repository.AssignmentListFilter{
		Page:     page,
		PageSize: pageSize,
		RiderID:  riderID,
		Status:   c.Query("status"),
	})
	if err != nil {
		handlershared.RespondError(c, http.StatusInternalServerError, "failed to list assignments", err)
		return
	}

	response.SuccessWithPage(c, assignments, response.NewPagination(page, pageSize, total))
}

// AcceptAssignment 接单
func (h *Handler) AcceptAssignment(c *gin.Context) {
	riderID, ok := getRiderID(c)
	if !ok {
		return
	}

	assignment, err := h.DeliveryService.Accept(c.Param("assignment_no"), riderID)
	if err != nil {
		respondAssignmentError(c, err)
		return
	}

	response.Success(c, assignment)
}

// RejectRequest 拒单请求
type RejectRequest struct {
	Reason string `json:"reason"`
}

// RejectAssignment 拒单（原因随指派记录存档）
func (h *Handler) RejectAssignment(c *gin.Context) {
	riderID, ok := getRiderID(c)
	if !ok {
		return
	}

	var req RejectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body")
			return
		}
	}

	assignment, err := h.DeliveryService.Reject(c.Param("assignment_no"), riderID, req.Reason)
	if err != nil {
		respondAssignmentError(c, err)
		return
	}

	response.Success(c, assignment)
}

// StartAssignment 取货出发
func (h *Handler) StartAssignment(c *gin.Context) {
	riderID, ok := getRiderID(c)
	if !ok {
		return
	}

	assignment, err := h.DeliveryService.Start(c.Param("assignment_no"), riderID)
	if err != nil {
		respondAssignmentError(c, err)
		return
	}

	response.Success(c, assignment)
}

// DeliverAssignment 确认送达（同时推进订单到已送达）
func (h *Handler) DeliverAssignment(c *gin.Context) {
	riderID, ok := getRiderID(c)
	if !ok {
		return
	}

	assignment, err := h.DeliveryService.Deliver(c.Param("assignment_no"), riderID)
	if err != nil {
		respondAssignmentError(c, err)
		return
	}

	response.Success(c, assignment)
}

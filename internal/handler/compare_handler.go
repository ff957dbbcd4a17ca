package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/insightlens/insightlens/internal/pkg/errcode"
	"github.com/insightlens/insightlens/internal/pkg/response"
	"github.com/insightlens/insightlens/internal/service"
)

type CompareHandler struct {
	compare *service.CompareService
}

func NewCompareHandler(compare *service.CompareService) *CompareHandler {
	return &CompareHandler{compare: compare}
}

type compareRequest struct {
	DocumentA string `json:"document_a"`
	DocumentB string `json:"document_b"`
}

// Submit queues an asynchronous comparison of two processed documents and
// returns the job to poll.
func (h *CompareHandler) Submit(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	job, err := h.compare.Submit(c.Request.Context(), req.DocumentA, req.DocumentB)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, job)
}

func (h *CompareHandler) JobStatus(c *gin.Context) {
	job, err := h.compare.JobStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, job)
}

func (h *CompareHandler) Get(c *gin.Context) {
	cmp, err := h.compare.GetComparison(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, cmp)
}

func (h *CompareHandler) ListByDocument(c *gin.Context) {
	limit := uint(0)
	if value := c.Query("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = uint(parsed)
		}
	}
	cmps, err := h.compare.ListByDocument(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, cmps)
}

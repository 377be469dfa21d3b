package admin

import (
	"strconv"

	"github.com/talowa-app/internal/http/handlers/shared"
	"github.com/talowa-app/internal/http/response"
	"github.com/talowa-app/internal/queue"
	"github.com/talowa-app/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListOrphans lists members waiting for a referrer.
func (h *Handler) ListOrphans(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	orphans, total, err := h.OrphanService.ListPending(repository.OrphanListFilter{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orphans, response.BuildPagination(page, pageSize, total))
}

// ResolveOrphan runs the resolver for one member.
func (h *Handler) ResolveOrphan(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.Error(c, response.KindInvalidFormat, "invalid member id")
		return
	}
	assignment, resolveErr := h.OrphanService.Resolve(uint(id))
	if resolveErr != nil {
		shared.RespondServiceError(c, resolveErr)
		return
	}
	response.Success(c, assignment)
}

// sweepRequest tunes a manual sweep run.
type sweepRequest struct {
	BatchSize int  `json:"batch_size"`
	Async     bool `json:"async"`
}

// SweepOrphans resolves all pending orphans, inline or via the queue.
func (h *Handler) SweepOrphans(c *gin.Context) {
	var req sweepRequest
	_ = c.ShouldBindJSON(&req)

	if req.Async && h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueOrphanSweep(queue.OrphanSweepPayload{BatchSize: req.BatchSize}); err != nil {
			shared.RespondServiceError(c, err)
			return
		}
		response.Success(c, gin.H{"enqueued": true})
		return
	}

	assignments, err := h.OrphanService.ResolveAll(req.BatchSize)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"assigned":    len(assignments),
		"assignments": assignments,
	})
}

package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/affectlab/affectchat/internal/common"
	"github.com/affectlab/affectchat/internal/policy"
	"github.com/affectlab/affectchat/internal/turn"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type respondReq struct {
	Text           string  `json:"text" binding:"required"`
	ConversationID string  `json:"conversationId"`
	Username       *string `json:"username"`
}

type analyzeReq struct {
	Text string `json:"text" binding:"required"`
}

func failTurn(c *gin.Context, err error) {
	switch turn.KindOf(err) {
	case turn.KindConversationNotFound:
		common.Fail(c, http.StatusNotFound, 40401, "conversation not found")
	case turn.KindVariantMismatch:
		common.Fail(c, http.StatusConflict, 40901, "conversation belongs to a different variant")
	case turn.KindClassificationUnavailable:
		common.Fail(c, http.StatusBadGateway, 50201, "stage 1 analysis failed")
	case turn.KindGenerationFailed:
		common.Fail(c, http.StatusBadGateway, 50202, "stage 2 response failed")
	case turn.KindPersistenceUnavailable:
		common.Fail(c, http.StatusInternalServerError, 50001, "storage unavailable")
	default:
		common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
	}
}

// Respond is the per-variant turn endpoint. The variant comes from the route
// the registry binds it to, never from the request body.
func (h *Handler) Respond(v policy.Variant) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req respondReq
		if err := c.ShouldBindJSON(&req); err != nil {
			common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
			return
		}

		res, err := h.Turns.Respond(c.Request.Context(), v, req.Text, req.ConversationID, req.Username)
		if err != nil {
			log.Printf("turn failed variant=%s kind=%s err=%v", v, turn.KindOf(err), err)
			failTurn(c, err)
			return
		}
		common.OK(c, res)
	}
}

// Analyze runs Stage-1 only, without touching any conversation.
func (h *Handler) Analyze(v policy.Variant) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req analyzeReq
		if err := c.ShouldBindJSON(&req); err != nil {
			common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
			return
		}

		rec, err := h.Turns.Analyze(c.Request.Context(), req.Text)
		if err != nil {
			log.Printf("analyze failed variant=%s err=%v", v, err)
			failTurn(c, err)
			return
		}
		common.OK(c, rec)
	}
}

// RespondAsync queues the turn for the worker and returns the job id plus
// the (possibly fresh) conversation id immediately.
func (h *Handler) RespondAsync(v policy.Variant) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.Rabbit == nil {
			common.Fail(c, http.StatusServiceUnavailable, 50301, "async turns not configured")
			return
		}

		var req respondReq
		if err := c.ShouldBindJSON(&req); err != nil {
			common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
			return
		}

		job, err := h.Turns.PrepareAsyncTurn(c.Request.Context(), v, req.Text, req.ConversationID, req.Username)
		if err != nil {
			log.Printf("enqueue turn failed variant=%s kind=%s err=%v", v, turn.KindOf(err), err)
			failTurn(c, err)
			return
		}

		if err := h.Rabbit.PublishJob(c.Request.Context(), job.ID); err != nil {
			log.Printf("publish turn job failed job=%s err=%v", job.ID, err)
			common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
			return
		}

		common.OK(c, gin.H{
			"job_id":         job.ID,
			"conversationId": job.ConversationID,
		})
	}
}

func (h *Handler) GetTurnJob(c *gin.Context) {
	jobID := c.Param("job_id")
	if jobID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "job_id required")
		return
	}

	j, err := h.Turns.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "job not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{
		"job": gin.H{
			"id":                j.ID,
			"conversation_id":   j.ConversationID,
			"variant":           j.Variant,
			"status":            j.Status,
			"result_message_id": j.ResultMessageID,
			"error":             j.Error,
			"created_at":        j.CreatedAt,
			"updated_at":        j.UpdatedAt,
		},
	})
}

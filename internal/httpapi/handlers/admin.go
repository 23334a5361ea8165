package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/affectlab/affectchat/internal/auth"
	"github.com/affectlab/affectchat/internal/common"
	"github.com/affectlab/affectchat/internal/export"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const adminTokenTTL = 12 * time.Hour

type adminLoginReq struct {
	Password string `json:"password" binding:"required"`
}

func (h *Handler) AdminLogin(c *gin.Context) {
	var req adminLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if !auth.CheckPassword(h.Cfg.AdminPasswordHash, req.Password) {
		common.Fail(c, http.StatusForbidden, 40302, "invalid password")
		return
	}

	token, err := auth.SignAdminJWT(h.Cfg.JWTSecret, adminTokenTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to sign token")
		return
	}
	common.OK(c, gin.H{"token": token})
}

// ListConversations returns conversation metadata newest first, without
// message bodies.
func (h *Handler) ListConversations(c *gin.Context) {
	convos, err := h.Repo.ListConversations(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to load conversations")
		return
	}
	common.OK(c, convos)
}

// ListConversationMessages returns one conversation's transcript oldest
// first, analysis included for user rows.
func (h *Handler) ListConversationMessages(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Repo.GetConversation(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "conversation not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to load conversation")
		return
	}

	msgs, err := h.Repo.ListMessages(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to load messages")
		return
	}
	common.OK(c, msgs)
}

func (h *Handler) DeleteConversation(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Repo.GetConversation(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "conversation not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to load conversation")
		return
	}

	if err := h.Repo.DeleteConversation(c.Request.Context(), id); err != nil {
		log.Printf("delete conversation failed id=%s err=%v", id, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to delete conversation")
		return
	}
	common.OK(c, gin.H{"deleted": id})
}

// ExportConversation streams one conversation as a CSV download.
func (h *Handler) ExportConversation(c *gin.Context) {
	id := c.Param("id")

	convo, err := h.Repo.GetConversation(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "conversation not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to load conversation")
		return
	}

	msgs, err := h.Repo.ListMessages(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to load messages")
		return
	}

	csvBytes, err := export.ConversationCSV(convo, msgs)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to build csv")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=conversation_%s.csv", id))
	c.Data(http.StatusOK, "text/csv", csvBytes)
}

// ExportAll streams every conversation's messages as one CSV download.
func (h *Handler) ExportAll(c *gin.Context) {
	convos, err := h.Repo.ListConversations(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to load conversations")
		return
	}
	msgs, err := h.Repo.ListAllMessages(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to load messages")
		return
	}

	csvBytes, err := export.AllCSV(convos, msgs)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to build csv")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=all_conversations_messages.csv")
	c.Data(http.StatusOK, "text/csv", csvBytes)
}

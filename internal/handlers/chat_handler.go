package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "dindin/internal/errors"
	"dindin/internal/models"
	"dindin/internal/session"
)

// ChatHandler exposes the session-only assistant thread. Messages are
// discarded on logout; the assistant reply is an explicit stub until a
// real model is wired up.
type ChatHandler struct {
	sessions *session.Registry
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(sessions *session.Registry) *ChatHandler {
	return &ChatHandler{sessions: sessions}
}

// SendMessageRequest carries one user message.
type SendMessageRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// ListMessages returns the session chat thread in order.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	sess, err := getSession(c, h.sessions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	messages, err := sess.Messages()
	if err != nil {
		respondWithError(c, err)
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage appends the user message and the assistant reply.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sess, err := getSession(c, h.sessions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	userMsg, reply, err := sess.SendMessage(req.Text)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": []models.ChatMessage{userMsg, reply},
	})
}

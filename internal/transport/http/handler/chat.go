package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mentorchat/internal/app"
	"mentorchat/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type ChatRequest struct {
	ConversationID uint   `json:"conversation_id"`
	Message        string `json:"message"`
	AttachmentIDs  []uint `json:"attachment_ids"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.Chat(c.Request.Context(), app.ChatInput{
		ConversationID: req.ConversationID,
		Message:        req.Message,
		AttachmentIDs:  req.AttachmentIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEmptyTurn):
			response.Error(c, http.StatusBadRequest, response.CodeEmptyTurn, err.Error())
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			// Provider failures surface with the provider's error text. The
			// user's turn stays persisted.
			response.Error(c, http.StatusInternalServerError, response.CodeProviderFailure, err.Error())
		}
		return
	}

	response.OK(c, result)
}

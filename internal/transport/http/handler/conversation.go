package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mentorchat/internal/app"
	"mentorchat/internal/transport/http/response"
)

type ConversationHandler struct {
	chatService *app.ChatService
}

func NewConversationHandler(chatService *app.ChatService) *ConversationHandler {
	return &ConversationHandler{chatService: chatService}
}

func (h *ConversationHandler) Create(c *gin.Context) {
	conversation, err := h.chatService.CreateConversation()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create conversation failed")
		return
	}
	response.OK(c, gin.H{"id": conversation.ID, "title": conversation.Title})
}

func (h *ConversationHandler) List(c *gin.Context) {
	conversations, err := h.chatService.ListConversations()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list conversations failed")
		return
	}
	response.OK(c, conversations)
}

func (h *ConversationHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid conversation id")
		return
	}

	if err := h.chatService.DeleteConversation(id); err != nil {
		switch {
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete conversation failed")
		}
		return
	}
	response.OK(c, gin.H{"ok": true})
}

func (h *ConversationHandler) Messages(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid conversation id")
		return
	}

	messages, err := h.chatService.GetMessages(id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list messages failed")
		}
		return
	}
	response.OK(c, messages)
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	u, err := strconv.ParseUint(c.Param(key), 10, 64)
	return uint(u), err
}

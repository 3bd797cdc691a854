package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mentorchat/internal/app"
	"mentorchat/internal/transport/http/response"
)

const maxUploadSize = 25 << 20 // 25 MB per file

type UploadHandler struct {
	chatService *app.ChatService
}

func NewUploadHandler(chatService *app.ChatService) *UploadHandler {
	return &UploadHandler{chatService: chatService}
}

// Upload accepts a multipart form with one or more "files" entries and an
// optional "conversation_id"; without one a new conversation is created.
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeNoFiles, "no files uploaded")
		return
	}

	uploads := make([]app.Upload, 0, len(files))
	for _, file := range files {
		if file.Filename == "" {
			continue
		}
		if file.Size > maxUploadSize {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 25MB)")
			return
		}

		f, err := file.Open()
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
			return
		}

		uploads = append(uploads, app.Upload{
			Filename: file.Filename,
			Mime:     file.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	result, err := h.chatService.SaveUploads(parseUintForm(c, "conversation_id"), uploads)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoFiles):
			response.Error(c, http.StatusBadRequest, response.CodeNoFiles, err.Error())
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed")
		}
		return
	}

	response.OK(c, result)
}

func parseUintForm(c *gin.Context, key string) uint {
	s := c.PostForm(key)
	if s == "" {
		return 0
	}
	u, _ := strconv.ParseUint(s, 10, 64)
	return uint(u)
}

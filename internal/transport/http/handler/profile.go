package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mentorchat/internal/app"
	"mentorchat/internal/transport/http/response"
)

type ProfileHandler struct {
	profileService *app.ProfileService
}

// UpdateProfileRequest uses pointer fields so absent keys leave the stored
// value unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Timezone *string `json:"timezone"`
	Tone     *string `json:"tone"`
	Notes    *string `json:"notes"`
}

func NewProfileHandler(profileService *app.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profileService.Ensure()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get profile failed")
		return
	}
	response.OK(c, profile)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	_, err := h.profileService.Update(app.UpdateProfileInput{
		Name:     req.Name,
		Timezone: req.Timezone,
		Tone:     req.Tone,
		Notes:    req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotesTooLong):
			response.Error(c, http.StatusBadRequest, response.CodeNotesTooLong, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update profile failed")
		}
		return
	}

	response.OK(c, gin.H{"ok": true})
}

func (h *ProfileHandler) Delete(c *gin.Context) {
	if err := h.profileService.Delete(); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete profile failed")
		return
	}
	response.OK(c, gin.H{"ok": true})
}

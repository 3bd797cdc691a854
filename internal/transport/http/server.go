package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"mentorchat/internal/ai"
	appsvc "mentorchat/internal/app"
	"mentorchat/internal/bootstrap"
	"mentorchat/internal/repository"
	"mentorchat/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), cors.Default())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	profileRepo := repository.NewProfileRepository(app.DB)
	conversationRepo := repository.NewConversationRepository(app.DB)
	messageRepo := repository.NewMessageRepository(app.DB)
	attachmentRepo := repository.NewAttachmentRepository(app.DB)

	profileService := appsvc.NewProfileService(profileRepo)
	chatService := appsvc.NewChatService(
		conversationRepo,
		messageRepo,
		attachmentRepo,
		profileService,
		app.Files,
		ai.NewOpenAICompatibleClient(),
		ai.ChatConfig{
			BaseURL: app.Config.LLM.BaseURL,
			APIKey:  app.Config.LLM.APIKey,
			Model:   app.Config.LLM.Model,
		},
		app.Logger,
	)

	profileHandler := handler.NewProfileHandler(profileService)
	conversationHandler := handler.NewConversationHandler(chatService)
	chatHandler := handler.NewChatHandler(chatService)
	uploadHandler := handler.NewUploadHandler(chatService)

	api := router.Group("/api")
	api.GET("/profile", profileHandler.Get)
	api.PUT("/profile", profileHandler.Update)
	api.DELETE("/profile", profileHandler.Delete)

	api.POST("/conversations", conversationHandler.Create)
	api.GET("/conversations", conversationHandler.List)
	api.DELETE("/conversations/:id", conversationHandler.Delete)
	api.GET("/messages/:id", conversationHandler.Messages)

	api.POST("/upload", uploadHandler.Upload)
	api.POST("/chat", chatHandler.Chat)

	return router
}

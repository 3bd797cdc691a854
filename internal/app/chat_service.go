package app

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"mentorchat/internal/ai"
	"mentorchat/internal/extract"
	"mentorchat/internal/model"
	"mentorchat/internal/pkg/filestore"
	"mentorchat/internal/repository"
)

const maxTitleChars = 40

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyTurn            = errors.New("message and attachments are both empty")
	ErrNoFiles              = errors.New("no files uploaded")
)

// CompletionClient is the external completion provider: messages in, reply
// text out, or failure.
type CompletionClient interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

type ChatService struct {
	conversationRepo *repository.ConversationRepository
	messageRepo      *repository.MessageRepository
	attachmentRepo   *repository.AttachmentRepository
	profiles         *ProfileService
	files            *filestore.Store
	llmClient        CompletionClient
	llmConfig        ai.ChatConfig
	logger           *zap.SugaredLogger
}

func NewChatService(
	conversationRepo *repository.ConversationRepository,
	messageRepo *repository.MessageRepository,
	attachmentRepo *repository.AttachmentRepository,
	profiles *ProfileService,
	files *filestore.Store,
	llmClient CompletionClient,
	llmConfig ai.ChatConfig,
	logger *zap.SugaredLogger,
) *ChatService {
	return &ChatService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		attachmentRepo:   attachmentRepo,
		profiles:         profiles,
		files:            files,
		llmClient:        llmClient,
		llmConfig:        llmConfig,
		logger:           logger,
	}
}

type ChatInput struct {
	ConversationID uint
	Message        string
	AttachmentIDs  []uint
}

type ChatResult struct {
	ConversationID uint   `json:"conversation_id"`
	Reply          string `json:"reply"`
}

// Upload is one file of a multipart upload request.
type Upload struct {
	Filename string
	Mime     string
	Data     []byte
}

type UploadResult struct {
	ConversationID uint               `json:"conversation_id"`
	Attachments    []model.Attachment `json:"attachments"`
}

func (s *ChatService) CreateConversation() (*model.Conversation, error) {
	conversation := &model.Conversation{Title: model.DefaultConversationTitle}
	if err := s.conversationRepo.Create(conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *ChatService) ListConversations() ([]model.Conversation, error) {
	return s.conversationRepo.List()
}

func (s *ChatService) DeleteConversation(id uint) error {
	if id == 0 {
		return ErrInvalidInput
	}
	conversation, err := s.conversationRepo.GetByID(id)
	if err != nil {
		return err
	}
	if conversation == nil {
		return ErrConversationNotFound
	}
	return s.conversationRepo.Delete(id)
}

func (s *ChatService) GetMessages(conversationID uint) ([]model.Message, error) {
	if conversationID == 0 {
		return nil, ErrInvalidInput
	}
	conversation, err := s.conversationRepo.GetByID(conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	return s.messageRepo.ListByConversationID(conversationID)
}

// SaveUploads stores the files on disk and records attachment rows. A zero
// conversation id creates a fresh conversation to own them.
func (s *ChatService) SaveUploads(conversationID uint, uploads []Upload) (*UploadResult, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}

	conversation, err := s.resolveConversation(conversationID)
	if err != nil {
		return nil, err
	}

	saved := make([]model.Attachment, 0, len(uploads))
	for _, upload := range uploads {
		if upload.Filename == "" {
			continue
		}

		path, size, err := s.files.Save(upload.Filename, upload.Data)
		if err != nil {
			return nil, err
		}

		mime := upload.Mime
		if mime == "" {
			mime = model.DefaultMime
		}
		attachment := &model.Attachment{
			ConversationID: conversation.ID,
			Filename:       filestore.SanitizeFilename(upload.Filename),
			Mime:           mime,
			Path:           path,
			Size:           size,
		}
		if err := s.attachmentRepo.Create(attachment); err != nil {
			return nil, err
		}
		saved = append(saved, *attachment)
	}

	if err := s.conversationRepo.Touch(conversation.ID); err != nil {
		return nil, err
	}

	s.logger.Infow("attachments saved", "conversation_id", conversation.ID, "count", len(saved))
	return &UploadResult{ConversationID: conversation.ID, Attachments: saved}, nil
}

// Chat runs one turn: persist the user message, assemble the prompt from
// history, profile and attachment content, call the provider, persist the
// reply. A provider failure leaves the already-persisted user message in
// place; there is no compensating rollback.
func (s *ChatService) Chat(ctx context.Context, input ChatInput) (*ChatResult, error) {
	text := strings.TrimSpace(input.Message)
	if text == "" && len(input.AttachmentIDs) == 0 {
		return nil, ErrEmptyTurn
	}

	conversation, err := s.resolveConversation(input.ConversationID)
	if err != nil {
		return nil, err
	}

	// Only attachments owned by this conversation are honored.
	attachments, err := s.attachmentRepo.ListByIDsAndConversationID(input.AttachmentIDs, conversation.ID)
	if err != nil {
		return nil, err
	}

	stored := text
	if stored == "" {
		stored = attachmentPlaceholder
	}
	userMessage := &model.Message{
		ConversationID: conversation.ID,
		Role:           model.RoleUser,
		Content:        stored,
	}
	if err := s.messageRepo.Create(userMessage); err != nil {
		return nil, err
	}
	if err := s.conversationRepo.Touch(conversation.ID); err != nil {
		return nil, err
	}

	history, err := s.messageRepo.ListByConversationID(conversation.ID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.Ensure()
	if err != nil {
		return nil, err
	}

	turn := TurnContent{Text: text}
	for _, attachment := range attachments {
		content := extract.FromAttachment(attachment)
		switch content.Kind {
		case extract.KindImage:
			turn.ImageURLs = append(turn.ImageURLs, content.DataURL)
		case extract.KindText:
			if content.Excerpt != "" {
				turn.Excerpts = append(turn.Excerpts, excerptLabel(attachment.Mime)+": "+attachment.Filename+"\n"+content.Excerpt)
			}
		}
	}

	promptMessages := buildPromptMessages(profile, history, turn)

	reply, err := s.llmClient.Complete(ctx, s.llmConfig, promptMessages)
	if err != nil {
		s.logger.Errorw("llm complete failed", "conversation_id", conversation.ID, "error", err)
		return nil, err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = "The model returned an empty response."
	}

	assistantMessage := &model.Message{
		ConversationID: conversation.ID,
		Role:           model.RoleAssistant,
		Content:        reply,
	}
	if err := s.messageRepo.Create(assistantMessage); err != nil {
		return nil, err
	}

	if conversation.Title == model.DefaultConversationTitle {
		if title := titleFromFirstUserMessage(history); title != "" {
			if err := s.conversationRepo.UpdateTitle(conversation.ID, title); err != nil {
				return nil, err
			}
		}
	}
	if err := s.conversationRepo.Touch(conversation.ID); err != nil {
		return nil, err
	}

	return &ChatResult{ConversationID: conversation.ID, Reply: reply}, nil
}

func (s *ChatService) resolveConversation(id uint) (*model.Conversation, error) {
	if id == 0 {
		return s.CreateConversation()
	}
	conversation, err := s.conversationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	return conversation, nil
}

// titleFromFirstUserMessage derives the auto-title: first line of the first
// user message, ellipsis-truncated past 40 characters.
func titleFromFirstUserMessage(history []model.Message) string {
	for _, message := range history {
		if message.Role != model.RoleUser {
			continue
		}
		line := strings.TrimSpace(message.Content)
		if idx := strings.IndexByte(line, '\n'); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		runes := []rune(line)
		if len(runes) > maxTitleChars {
			return string(runes[:maxTitleChars]) + "…"
		}
		return line
	}
	return ""
}

func excerptLabel(mime string) string {
	mime = strings.ToLower(mime)
	switch {
	case mime == "application/pdf":
		return "# PDF"
	case isDocMime(mime):
		return "# DOCX"
	case mime == "text/csv",
		mime == "application/vnd.ms-excel",
		mime == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "# CSV"
	default:
		return "# File"
	}
}

func isDocMime(mime string) bool {
	return mime == "application/msword" ||
		mime == "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

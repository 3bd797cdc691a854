package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mentorchat/internal/ai"
	"mentorchat/internal/model"
	"mentorchat/internal/pkg/filestore"
	"mentorchat/internal/repository"
)

type stubCompletion struct {
	reply string
	err   error
	calls [][]ai.ChatMessage
}

func (s *stubCompletion) Complete(_ context.Context, _ ai.ChatConfig, messages []ai.ChatMessage) (string, error) {
	s.calls = append(s.calls, messages)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type chatEnv struct {
	db      *gorm.DB
	svc     *ChatService
	stub    *stubCompletion
	msgRepo *repository.MessageRepository
	attRepo *repository.AttachmentRepository
}

func newChatEnv(t *testing.T) *chatEnv {
	t.Helper()

	db := newTestDB(t)
	files, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	stub := &stubCompletion{reply: "hello from the model"}
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	profileService := NewProfileService(repository.NewProfileRepository(db))

	svc := NewChatService(
		conversationRepo,
		messageRepo,
		attachmentRepo,
		profileService,
		files,
		stub,
		ai.ChatConfig{BaseURL: "http://llm.test", APIKey: "test", Model: "test-model"},
		zap.NewNop().Sugar(),
	)
	return &chatEnv{db: db, svc: svc, stub: stub, msgRepo: messageRepo, attRepo: attachmentRepo}
}

func (e *chatEnv) writeAttachment(t *testing.T, conversationID uint, filename, mime string, data []byte) *model.Attachment {
	t.Helper()

	path := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	attachment := &model.Attachment{
		ConversationID: conversationID,
		Filename:       filename,
		Mime:           mime,
		Path:           path,
		Size:           int64(len(data)),
	}
	require.NoError(t, e.attRepo.Create(attachment))
	return attachment
}

func TestChatRejectsEmptyTurnBeforePersisting(t *testing.T) {
	env := newChatEnv(t)

	_, err := env.svc.Chat(context.Background(), ChatInput{Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyTurn)

	var count int64
	require.NoError(t, env.db.Model(&model.Message{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, env.stub.calls)
}

func TestChatUnknownConversation(t *testing.T) {
	env := newChatEnv(t)

	_, err := env.svc.Chat(context.Background(), ChatInput{ConversationID: 42, Message: "hi"})
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestChatCreatesConversationAndPersistsBothTurns(t *testing.T) {
	env := newChatEnv(t)

	result, err := env.svc.Chat(context.Background(), ChatInput{Message: "Explain recursion in simple terms"})
	require.NoError(t, err)
	assert.NotZero(t, result.ConversationID)
	assert.Equal(t, "hello from the model", result.Reply)

	messages, err := env.svc.GetMessages(result.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, "Explain recursion in simple terms", messages[0].Content)
	assert.Equal(t, model.RoleAssistant, messages[1].Role)
	assert.Equal(t, "hello from the model", messages[1].Content)
}

func TestChatAutoTitle(t *testing.T) {
	env := newChatEnv(t)

	result, err := env.svc.Chat(context.Background(), ChatInput{Message: "Explain recursion in simple terms"})
	require.NoError(t, err)

	conversations, err := env.svc.ListConversations()
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "Explain recursion in simple terms", conversations[0].Title)

	// The title never changes after the first reply.
	_, err = env.svc.Chat(context.Background(), ChatInput{ConversationID: result.ConversationID, Message: "Another question entirely"})
	require.NoError(t, err)
	conversations, err = env.svc.ListConversations()
	require.NoError(t, err)
	assert.Equal(t, "Explain recursion in simple terms", conversations[0].Title)
}

func TestChatAutoTitleTruncation(t *testing.T) {
	env := newChatEnv(t)

	long := strings.Repeat("a", 50)
	_, err := env.svc.Chat(context.Background(), ChatInput{Message: long})
	require.NoError(t, err)

	conversations, err := env.svc.ListConversations()
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, strings.Repeat("a", 40)+"…", conversations[0].Title)
}

func TestChatAutoTitleUsesFirstLine(t *testing.T) {
	env := newChatEnv(t)

	_, err := env.svc.Chat(context.Background(), ChatInput{Message: "First line\nsecond line is ignored"})
	require.NoError(t, err)

	conversations, err := env.svc.ListConversations()
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "First line", conversations[0].Title)
}

func TestChatProviderFailureKeepsUserMessage(t *testing.T) {
	env := newChatEnv(t)
	env.stub.err = errors.New("provider exploded")

	conversation, err := env.svc.CreateConversation()
	require.NoError(t, err)

	_, err = env.svc.Chat(context.Background(), ChatInput{ConversationID: conversation.ID, Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider exploded")

	messages, err := env.svc.GetMessages(conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, "hi", messages[0].Content)
}

func TestChatAttachmentOnlyTurnStoresPlaceholder(t *testing.T) {
	env := newChatEnv(t)

	conversation, err := env.svc.CreateConversation()
	require.NoError(t, err)
	attachment := env.writeAttachment(t, conversation.ID, "notes.txt", "text/plain", []byte("some notes"))

	_, err = env.svc.Chat(context.Background(), ChatInput{
		ConversationID: conversation.ID,
		AttachmentIDs:  []uint{attachment.ID},
	})
	require.NoError(t, err)

	messages, err := env.svc.GetMessages(conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "[attachment(s) uploaded]", messages[0].Content)

	// The excerpt reaches the provider as a multimodal user turn.
	require.Len(t, env.stub.calls, 1)
	sent := env.stub.calls[0]
	last := sent[len(sent)-1]
	parts, ok := last.Content.([]ai.ContentPart)
	require.True(t, ok)
	require.NotEmpty(t, parts)
	assert.Contains(t, parts[len(parts)-1].Text, "some notes")
	assert.Contains(t, parts[len(parts)-1].Text, "# File: notes.txt")
}

func TestChatImageAttachmentBecomesDataURL(t *testing.T) {
	env := newChatEnv(t)

	conversation, err := env.svc.CreateConversation()
	require.NoError(t, err)
	attachment := env.writeAttachment(t, conversation.ID, "pic.png", "image/png", []byte{0x89, 'P', 'N', 'G'})

	_, err = env.svc.Chat(context.Background(), ChatInput{
		ConversationID: conversation.ID,
		Message:        "what is this?",
		AttachmentIDs:  []uint{attachment.ID},
	})
	require.NoError(t, err)

	require.Len(t, env.stub.calls, 1)
	sent := env.stub.calls[0]
	last := sent[len(sent)-1]
	parts, ok := last.Content.([]ai.ContentPart)
	require.True(t, ok)
	require.Len(t, parts, 2)
	assert.Equal(t, "what is this?", parts[0].Text)
	require.NotNil(t, parts[1].ImageURL)
	assert.True(t, strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,"))

	// The plain-text user turn was replaced, not duplicated.
	textTurns := 0
	for _, m := range sent {
		if s, ok := m.Content.(string); ok && s == "what is this?" {
			textTurns++
		}
	}
	assert.Zero(t, textTurns)
}

func TestChatIgnoresForeignAttachments(t *testing.T) {
	env := newChatEnv(t)

	mine, err := env.svc.CreateConversation()
	require.NoError(t, err)
	other, err := env.svc.CreateConversation()
	require.NoError(t, err)
	foreign := env.writeAttachment(t, other.ID, "secret.txt", "text/plain", []byte("secret content"))

	_, err = env.svc.Chat(context.Background(), ChatInput{
		ConversationID: mine.ID,
		Message:        "hi",
		AttachmentIDs:  []uint{foreign.ID},
	})
	require.NoError(t, err)

	require.Len(t, env.stub.calls, 1)
	for _, m := range env.stub.calls[0] {
		if s, ok := m.Content.(string); ok {
			assert.NotContains(t, s, "secret content")
		}
	}
	// No substitution happened: the last entry is still the plain text turn.
	sent := env.stub.calls[0]
	assert.Equal(t, "hi", sent[len(sent)-1].Content)
}

func TestDeleteConversationCascades(t *testing.T) {
	env := newChatEnv(t)

	result, err := env.svc.Chat(context.Background(), ChatInput{Message: "hello"})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteConversation(result.ConversationID))

	_, err = env.svc.GetMessages(result.ConversationID)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	var count int64
	require.NoError(t, env.db.Model(&model.Message{}).Where("conversation_id = ?", result.ConversationID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteConversationNotFound(t *testing.T) {
	env := newChatEnv(t)
	assert.ErrorIs(t, env.svc.DeleteConversation(99), ErrConversationNotFound)
}

func TestListConversationsOrdersByRecency(t *testing.T) {
	env := newChatEnv(t)

	first, err := env.svc.CreateConversation()
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := env.svc.CreateConversation()
	require.NoError(t, err)

	conversations, err := env.svc.ListConversations()
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, second.ID, conversations[0].ID)

	// Activity on the older conversation moves it back to the front.
	time.Sleep(5 * time.Millisecond)
	_, err = env.svc.Chat(context.Background(), ChatInput{ConversationID: first.ID, Message: "bump"})
	require.NoError(t, err)

	conversations, err = env.svc.ListConversations()
	require.NoError(t, err)
	assert.Equal(t, first.ID, conversations[0].ID)
}

func TestChatMessageOrderingSurvivesManyTurns(t *testing.T) {
	env := newChatEnv(t)

	result, err := env.svc.Chat(context.Background(), ChatInput{Message: "turn 0"})
	require.NoError(t, err)
	for i := 1; i < 5; i++ {
		_, err := env.svc.Chat(context.Background(), ChatInput{
			ConversationID: result.ConversationID,
			Message:        "turn " + strings.Repeat("x", i),
		})
		require.NoError(t, err)
	}

	messages, err := env.svc.GetMessages(result.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 10)
	for i := 0; i < len(messages); i += 2 {
		assert.Equal(t, model.RoleUser, messages[i].Role)
		assert.Equal(t, model.RoleAssistant, messages[i+1].Role)
	}
	for i := 1; i < len(messages); i++ {
		assert.Greater(t, messages[i].ID, messages[i-1].ID)
	}
}

func TestChatEmptyProviderReplyIsNormalized(t *testing.T) {
	env := newChatEnv(t)
	env.stub.reply = "   "

	result, err := env.svc.Chat(context.Background(), ChatInput{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "The model returned an empty response.", result.Reply)
}

func TestSaveUploadsCreatesConversationWhenMissing(t *testing.T) {
	env := newChatEnv(t)

	result, err := env.svc.SaveUploads(0, []Upload{
		{Filename: "report.csv", Mime: "text/csv", Data: []byte("a,b\n1,2\n")},
	})
	require.NoError(t, err)
	assert.NotZero(t, result.ConversationID)
	require.Len(t, result.Attachments, 1)
	assert.Equal(t, "report.csv", result.Attachments[0].Filename)
	assert.Equal(t, "text/csv", result.Attachments[0].Mime)
	assert.Equal(t, int64(8), result.Attachments[0].Size)
	assert.FileExists(t, result.Attachments[0].Path)
}

func TestSaveUploadsRejectsEmpty(t *testing.T) {
	env := newChatEnv(t)
	_, err := env.svc.SaveUploads(0, nil)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestSaveUploadsUnknownConversation(t *testing.T) {
	env := newChatEnv(t)
	_, err := env.svc.SaveUploads(77, []Upload{{Filename: "a.txt", Data: []byte("x")}})
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestSaveUploadsDefaultsMime(t *testing.T) {
	env := newChatEnv(t)

	result, err := env.svc.SaveUploads(0, []Upload{{Filename: "blob.bin", Data: []byte{1, 2, 3}}})
	require.NoError(t, err)
	require.Len(t, result.Attachments, 1)
	assert.Equal(t, "application/octet-stream", result.Attachments[0].Mime)
}

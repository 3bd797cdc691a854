package repository

import (
	"fmt"

	"gorm.io/gorm"

	"mentorchat/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListByConversationID returns messages in creation order.
func (r *MessageRepository) ListByConversationID(conversationID uint) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("conversation_id = ?", conversationID).Order("id ASC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

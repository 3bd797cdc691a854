package repository

import (
	"fmt"

	"gorm.io/gorm"

	"mentorchat/internal/model"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(attachment *model.Attachment) error {
	if err := r.db.Create(attachment).Error; err != nil {
		return fmt.Errorf("create attachment failed: %w", err)
	}
	return nil
}

// ListByIDsAndConversationID returns only attachments owned by the given
// conversation, so a turn can never pull in another conversation's files.
func (r *AttachmentRepository) ListByIDsAndConversationID(ids []uint, conversationID uint) ([]model.Attachment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var attachments []model.Attachment
	if err := r.db.Where("id IN ? AND conversation_id = ?", ids, conversationID).Find(&attachments).Error; err != nil {
		return nil, fmt.Errorf("list attachments failed: %w", err)
	}
	return attachments, nil
}

func (r *AttachmentRepository) ListByConversationID(conversationID uint) ([]model.Attachment, error) {
	var attachments []model.Attachment
	if err := r.db.Where("conversation_id = ?", conversationID).Order("id ASC").Find(&attachments).Error; err != nil {
		return nil, fmt.Errorf("list attachments failed: %w", err)
	}
	return attachments, nil
}

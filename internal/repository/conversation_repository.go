package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mentorchat/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conversation *model.Conversation) error {
	if conversation.Title == "" {
		conversation.Title = model.DefaultConversationTitle
	}
	if err := r.db.Create(conversation).Error; err != nil {
		return fmt.Errorf("create conversation failed: %w", err)
	}
	return nil
}

func (r *ConversationRepository) List() ([]model.Conversation, error) {
	var conversations []model.Conversation
	if err := r.db.Order("updated_at DESC").Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}
	return conversations, nil
}

func (r *ConversationRepository) GetByID(id uint) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.First(&conversation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation failed: %w", err)
	}
	return &conversation, nil
}

// Delete removes the conversation together with its messages and attachment
// rows so no child row can outlive its parent.
func (r *ConversationRepository) Delete(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Conversation{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete conversation failed: %w", err)
	}
	return nil
}

func (r *ConversationRepository) UpdateTitle(id uint, title string) error {
	if err := r.db.Model(&model.Conversation{}).Where("id = ?", id).Update("title", title).Error; err != nil {
		return fmt.Errorf("update conversation title failed: %w", err)
	}
	return nil
}

// Touch bumps updated_at so recency ordering reflects the latest activity.
func (r *ConversationRepository) Touch(id uint) error {
	if err := r.db.Model(&model.Conversation{}).Where("id = ?", id).Update("updated_at", time.Now()).Error; err != nil {
		return fmt.Errorf("touch conversation failed: %w", err)
	}
	return nil
}

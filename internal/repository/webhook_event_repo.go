package repository

import (
	"context"

	"storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookEventRepo interface {
	// MarkProcessed inserts the event id; reports false when the event was
	// already recorded (duplicate delivery).
	MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error)
}

type webhookEventRepo struct{ db *gorm.DB }

func NewWebhookEventRepo(db *gorm.DB) WebhookEventRepo { return &webhookEventRepo{db: db} }

func (r *webhookEventRepo) MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	rec := models.WebhookEvent{EventID: eventID, EventType: eventType}
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(&rec)
	return tx.RowsAffected > 0, tx.Error
}

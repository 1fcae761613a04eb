package repository

import "gorm.io/gorm"

type Repository struct {
	DB            *gorm.DB
	Products      ProductRepo
	Variants      VariantRepo
	Orders        OrderRepo
	OrderLines    OrderLineRepo
	WebhookEvents WebhookEventRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:            db,
		Products:      NewProductRepo(db),
		Variants:      NewVariantRepo(db),
		Orders:        NewOrderRepo(db),
		OrderLines:    NewOrderLineRepo(db),
		WebhookEvents: NewWebhookEventRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

package migrate

import (
	"context"

	"storefront/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto for gen_random_uuid
	CreateChecks           bool // CHECK constraints for integrity
	CreateIndexes          bool // extra indexes beyond gorm tags
	CreateUpdatedAtTrigger bool // updated_at trigger
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateUpdatedAtTrigger: true,
	}
}

func MigrateStorefrontDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("running storefront migrations")

	if opt.CreateExtensions {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("enable pgcrypto failed", zap.Error(err))
			return err
		}
	}

	if err := db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.Order{},
		&models.OrderLine{},
		&models.WebhookEvent{},
	); err != nil {
		log.Error("auto migrate failed", zap.Error(err))
		return err
	}

	if opt.CreateUpdatedAtTrigger {
		if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_orders_updated ON orders;
CREATE TRIGGER trg_orders_updated
BEFORE UPDATE ON orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_products_updated ON products;
CREATE TRIGGER trg_products_updated
BEFORE UPDATE ON products
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_variants_updated ON product_variants;
CREATE TRIGGER trg_variants_updated
BEFORE UPDATE ON product_variants
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("create updated_at triggers failed", zap.Error(err))
			return err
		}
	}

	if opt.CreateChecks {
		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_status_allowed
  CHECK (status IN ('PENDING','PAID','CANCELED'));
`).Error; err != nil {
			log.Error("create orders status check failed", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_payment_method_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_payment_method_allowed
  CHECK (payment_method IN ('PIX','CREDIT_CARD'));
`).Error; err != nil {
			log.Error("create orders payment method check failed", zap.Error(err))
			return err
		}

		// stock can never go negative, whatever the application does
		if err := db.Exec(`
ALTER TABLE product_variants
  DROP CONSTRAINT IF EXISTS chk_variants_quantity_non_negative;
ALTER TABLE product_variants
  ADD CONSTRAINT chk_variants_quantity_non_negative
  CHECK (quantity >= 0);
`).Error; err != nil {
			log.Error("create variant quantity check failed", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE products
  DROP CONSTRAINT IF EXISTS chk_products_total_stock_non_negative;
ALTER TABLE products
  ADD CONSTRAINT chk_products_total_stock_non_negative
  CHECK (total_stock >= 0);
`).Error; err != nil {
			log.Error("create total stock check failed", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE order_lines
  DROP CONSTRAINT IF EXISTS chk_order_lines_quantity_gt_zero;
ALTER TABLE order_lines
  ADD CONSTRAINT chk_order_lines_quantity_gt_zero
  CHECK (quantity > 0);
`).Error; err != nil {
			log.Error("create order line quantity check failed", zap.Error(err))
			return err
		}
	}

	if opt.CreateIndexes {
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_status_created_at
  ON orders (status, created_at);
`).Error; err != nil {
			log.Error("create orders sweep index failed", zap.Error(err))
			return err
		}
	}

	log.Info("storefront migrations done")
	return nil
}

package migrate

import (
	"context"

	"github.com/raquelxaviert/micangaria-sub002/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto
	CreateChecks           bool // CHECK-constraint для целостности
	CreateIndexes          bool // индексы и UNIQUE (включая частичный)
	CreateUpdatedAtTrigger bool // триггер обновления updated_at
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateUpdatedAtTrigger: true,
	}
}

func MigrateCheckoutDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы данных чекаута")

	if opt.CreateExtensions {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("Не удалось включить расширение pgcrypto", zap.Error(err))
			return err
		}
	}

	log.Info("Создание таблиц reservations, orders и order_items")
	if err := db.AutoMigrate(&models.Reservation{}, &models.Order{}, &models.OrderItem{}); err != nil {
		log.Error("Не удалось создать таблицы", zap.Error(err))
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
`).Error; err != nil {
			log.Error("Не удалось создать триггер updated_at", zap.Error(err))
			return err
		}
	}

	if opt.CreateChecks {
		log.Info("Создание CHECK-ограничений")

		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_status_allowed
  CHECK (status IN ('pending','processing','paid','payment_failed','cancelled','refunded'));
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для статусов заказа", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE reservations
  DROP CONSTRAINT IF EXISTS chk_reservations_status_allowed;
ALTER TABLE reservations
  ADD CONSTRAINT chk_reservations_status_allowed
  CHECK (status IN ('active','cancelled','expired','consumed'));
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для статусов резервации", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE reservations
  DROP CONSTRAINT IF EXISTS chk_reservations_quantity_gt_zero;
ALTER TABLE reservations
  ADD CONSTRAINT chk_reservations_quantity_gt_zero
  CHECK (quantity > 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для reservations.quantity", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_quantity_gt_zero;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_quantity_gt_zero
  CHECK (quantity > 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для order_items.quantity", zap.Error(err))
			return err
		}
	}

	if opt.CreateIndexes {
		log.Info("Создание индексов")

		// Авторитет против двойной продажи: не более одной активной
		// резервации на товар. Ленивое протухание переводит старые строки
		// в 'expired' до вставки новой.
		if err := db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_reservations_product_active
ON reservations (product_id)
WHERE status = 'active';
`).Error; err != nil {
			log.Error("Не удалось создать частичный уникальный индекс по активным резервациям", zap.Error(err))
			return err
		}

		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_reservations_holder_status
ON reservations (holder_id, status, expires_at);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_reservations_holder_status", zap.Error(err))
			return err
		}

		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_status_created
ON orders (status, created_at DESC);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_orders_status_created", zap.Error(err))
			return err
		}
	}

	log.Info("Миграция базы данных чекаута успешно завершена")
	return nil
}

package query

import (
	"fmt"

	"gorm.io/gorm"
	"kalshitrader/internal/model/entity"
)

// AutoMigrate 创建或更新所有业务表
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(entity.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

package entity

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/plugin/soft_delete"
)

// Strategy 策略定义，name 对应注册表中的工厂
type Strategy struct {
	ID          int64                 `gorm:"column:id;primaryKey" json:"id"`
	Name        string                `gorm:"column:name;type:varchar(100);not null;uniqueIndex" json:"name"`
	Enabled     bool                  `gorm:"column:enabled;not null;index" json:"enabled"`
	Config      datatypes.JSONMap     `gorm:"column:config" json:"config"`
	Description string                `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time             `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time             `gorm:"column:updated_at" json:"updated_at"`
	IsDel       soft_delete.DeletedAt `gorm:"column:is_del;softDelete:flag" json:"-"`
}

func (Strategy) TableName() string {
	return "strategies"
}

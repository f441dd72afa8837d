package model

import (
	"time"
)

// Account 文件拥有者的用量台账，镜像上游身份服务中的主体.
// StorageUsed 只能经由原子自增/自减更新，不允许读改写.
type Account struct {
	UserID      string    `gorm:"primaryKey;size:255" json:"user_id"`
	StorageUsed int64     `json:"storage_used"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

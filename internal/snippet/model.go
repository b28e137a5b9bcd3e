package snippet

import (
	"time"
)

// Snippet is a saved copy of the shared buffer.
// Every save creates a new row; Version is always recorded as 1.
type Snippet struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"type:text"`
	User      string    `json:"user" gorm:"column:user_name;index"`
	Version   int       `json:"version" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
}

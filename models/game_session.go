package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	GameTypeOnline = "online"
)

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// GameSession records one server-run online match. A row is created when both
// players are ready and the room starts playing, and completed exactly once
// when a score reaches the win threshold. Matches abandoned by disconnect
// never complete their row.
type GameSession struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	GameType string `gorm:"type:varchar(16);not null" json:"game_type"` // online (local play never reaches the server)

	Player1ID uint `gorm:"index;not null" json:"player1_id"`
	Player2ID uint `gorm:"index;not null" json:"player2_id"`

	// Final outcome
	Player1Score int    `json:"player1_score" gorm:"default:0"`
	Player2Score int    `json:"player2_score" gorm:"default:0"`
	Status       string `json:"status" gorm:"type:varchar(16);default:'active';check:status IN ('active','completed')"`
	DurationSec  int    `json:"duration_sec" gorm:"default:0"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// services/session_service.go
package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"game-match-service/models"
)

// SessionStore is the persistence gateway the match subsystem depends on.
// Both calls are best effort: a room logs failures and keeps playing.
type SessionStore interface {
	CreateSession(gameType string, player1ID, player2ID uint) (string, error)
	CompleteSession(sessionID string, player1Score, player2Score, durationSec int) error
}

// SessionService is the production SessionStore backed by Postgres.
type SessionService struct {
	DB *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{DB: db}
}

func (s *SessionService) CreateSession(gameType string, player1ID, player2ID uint) (string, error) {
	session := models.GameSession{
		ID:        uuid.NewString(),
		GameType:  gameType,
		Player1ID: player1ID,
		Player2ID: player2ID,
		Status:    models.SessionStatusActive,
	}
	if err := s.DB.Create(&session).Error; err != nil {
		return "", err
	}
	return session.ID, nil
}

func (s *SessionService) CompleteSession(sessionID string, player1Score, player2Score, durationSec int) error {
	return s.DB.Model(&models.GameSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"player1_score": player1Score,
			"player2_score": player2Score,
			"duration_sec":  durationSec,
			"status":        models.SessionStatusCompleted,
		}).Error
}

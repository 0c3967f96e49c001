package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultElo 신규 사용자의 시작 레이팅
const DefaultElo = 1200

type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // JSON에서 숨김
	Elo          int       `json:"elo" db:"elo"`
	DuelsWon     int       `json:"duelsWon" db:"duels_won"`
	DuelsLost    int       `json:"duelsLost" db:"duels_lost"`
	IsAdmin      bool      `json:"isAdmin" db:"is_admin"`
	IsBanned     bool      `json:"isBanned" db:"is_banned"`
	IsPremium    bool      `json:"isPremium" db:"is_premium"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// HashPassword 비밀번호 해싱
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword 비밀번호 검증
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

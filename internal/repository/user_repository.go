package repository

import (
	"database/sql"
	"fmt"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/database"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, elo, duels_won, duels_lost,
	       is_admin, is_banned, is_premium, created_at, updated_at`

// Create 새 사용자 생성
func (r *UserRepository) Create(id, username, email, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, email, password_hash, elo)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(query, id, username, email, passwordHash, models.DefaultElo))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// FindByID ID로 사용자 찾기
func (r *UserRepository) FindByID(id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// FindByEmail 이메일로 사용자 찾기
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// UpdateDuelStats 듀얼 종료 후 레이팅/전적 업데이트
func (r *UserRepository) UpdateDuelStats(id string, newElo int, won bool) error {
	query := `
		UPDATE users
		SET elo = $1,
		    duels_won = duels_won + $2,
		    duels_lost = duels_lost + $3,
		    updated_at = NOW()
		WHERE id = $4
	`

	wonInc := 0
	lostInc := 0
	if won {
		wonInc = 1
	} else {
		lostInc = 1
	}

	if _, err := r.db.Exec(query, newElo, wonInc, lostInc, id); err != nil {
		return fmt.Errorf("failed to update duel stats: %w", err)
	}

	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Elo,
		&user.DuelsWon,
		&user.DuelsLost,
		&user.IsAdmin,
		&user.IsBanned,
		&user.IsPremium,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

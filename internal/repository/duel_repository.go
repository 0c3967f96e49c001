package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/database"
)

type DuelRepository struct {
	db *database.DB
}

func NewDuelRepository(db *database.DB) *DuelRepository {
	return &DuelRepository{db: db}
}

const duelColumns = `id, problem, player1_id, player1_warnings, player2_id, player2_warnings,
	       status, start_time, winner_id, wager, submissions,
	       final_overall_status, final_user_code, created_at, updated_at`

// Create 새 듀얼 생성
func (r *DuelRepository) Create(duel *models.Duel) (*models.Duel, error) {
	problemJSON, err := json.Marshal(duel.Problem)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal problem snapshot: %w", err)
	}

	submissionsJSON, err := json.Marshal(duel.Submissions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal submissions: %w", err)
	}

	query := `
		INSERT INTO duels (id, problem, player1_id, player1_warnings, player2_id, player2_warnings,
		                   status, start_time, winner_id, wager, submissions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + duelColumns

	row := r.db.QueryRow(query,
		duel.ID,
		problemJSON,
		duel.Player1ID,
		duel.Player1Warnings,
		duel.Player2ID,
		duel.Player2Warnings,
		duel.Status,
		duel.StartTime,
		duel.WinnerID,
		duel.Wager,
		submissionsJSON,
	)

	created, err := scanDuel(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create duel: %w", err)
	}

	return created, nil
}

// FindByID ID로 듀얼 찾기
func (r *DuelRepository) FindByID(id string) (*models.Duel, error) {
	query := `SELECT ` + duelColumns + ` FROM duels WHERE id = $1`

	duel, err := scanDuel(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find duel: %w", err)
	}

	return duel, nil
}

// FindByStatus 상태별 듀얼 목록 (최신순)
func (r *DuelRepository) FindByStatus(status models.DuelStatus) ([]*models.Duel, error) {
	query := `SELECT ` + duelColumns + ` FROM duels WHERE status = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query duels: %w", err)
	}
	defer rows.Close()

	return scanDuels(rows)
}

// FindActiveByUser 해당 사용자가 참가 중인 In Progress 듀얼 목록
func (r *DuelRepository) FindActiveByUser(userID string) ([]*models.Duel, error) {
	query := `
		SELECT ` + duelColumns + `
		FROM duels
		WHERE status = $1 AND (player1_id = $2 OR player2_id = $2)
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, models.DuelStatusInProgress, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active duels: %w", err)
	}
	defer rows.Close()

	return scanDuels(rows)
}

// FindInProgressBefore 지정 시각 이전에 시작된 In Progress 듀얼 목록 (스위퍼용)
func (r *DuelRepository) FindInProgressBefore(before time.Time) ([]*models.Duel, error) {
	query := `SELECT ` + duelColumns + ` FROM duels WHERE status = $1 AND start_time < $2`

	rows, err := r.db.Query(query, models.DuelStatusInProgress, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale duels: %w", err)
	}
	defer rows.Close()

	return scanDuels(rows)
}

// AttemptJoin 조건부 참가: 상태가 Waiting일 때만 player2 설정 + In Progress 전환
// 경쟁에서 밀린 경우(이미 참가됨/취소됨/종료됨) nil 반환
func (r *DuelRepository) AttemptJoin(duelID, player2ID string) (*models.Duel, error) {
	query := `
		UPDATE duels
		SET player2_id = $1,
		    player2_warnings = 0,
		    status = $2,
		    start_time = NOW(),
		    updated_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING ` + duelColumns

	duel, err := scanDuel(r.db.QueryRow(query, player2ID, models.DuelStatusInProgress, duelID, models.DuelStatusWaiting))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to join duel: %w", err)
	}

	return duel, nil
}

// AttemptFinish 조건부 종료: 상태가 In Progress일 때만 최종 상태로 전환
// 동시에 들어온 두 종료 요청 중 하나만 성공하며, 밀린 쪽은 nil을 받음
func (r *DuelRepository) AttemptFinish(duelID string, winnerID *string, finalStatus models.DuelStatus) (*models.Duel, error) {
	query := `
		UPDATE duels
		SET status = $1,
		    winner_id = $2,
		    updated_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING ` + duelColumns

	duel, err := scanDuel(r.db.QueryRow(query, finalStatus, winnerID, duelID, models.DuelStatusInProgress))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to finish duel: %w", err)
	}

	return duel, nil
}

// AttemptCancel 조건부 취소: 상태가 Waiting일 때만 Cancelled로 전환
func (r *DuelRepository) AttemptCancel(duelID string) (*models.Duel, error) {
	query := `
		UPDATE duels
		SET status = $1,
		    winner_id = NULL,
		    updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING ` + duelColumns

	duel, err := scanDuel(r.db.QueryRow(query, models.DuelStatusCancelled, duelID, models.DuelStatusWaiting))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel duel: %w", err)
	}

	return duel, nil
}

// UpdateSubmissions 제출 목록 갱신 (상태 전환 없음, 일반 업데이트)
func (r *DuelRepository) UpdateSubmissions(duelID string, submissions []models.DuelSubmission) error {
	submissionsJSON, err := json.Marshal(submissions)
	if err != nil {
		return fmt.Errorf("failed to marshal submissions: %w", err)
	}

	query := `UPDATE duels SET submissions = $1, updated_at = NOW() WHERE id = $2`

	if _, err := r.db.Exec(query, submissionsJSON, duelID); err != nil {
		return fmt.Errorf("failed to update submissions: %w", err)
	}

	return nil
}

// SetSummary 결과 화면용 요약 필드 저장
func (r *DuelRepository) SetSummary(duelID string, finalStatus models.SubmissionStatus, finalCode string) error {
	query := `
		UPDATE duels
		SET final_overall_status = $1, final_user_code = $2, updated_at = NOW()
		WHERE id = $3
	`

	if _, err := r.db.Exec(query, finalStatus, finalCode, duelID); err != nil {
		return fmt.Errorf("failed to set summary: %w", err)
	}

	return nil
}

// UpdateState 관리자용 상태/승자 직접 변경 (조건 없는 일반 업데이트)
// 돈이 움직이는 전환에는 절대 사용하지 않는다
func (r *DuelRepository) UpdateState(duelID string, status models.DuelStatus, winnerID *string) (*models.Duel, error) {
	query := `
		UPDATE duels
		SET status = $1, winner_id = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + duelColumns

	duel, err := scanDuel(r.db.QueryRow(query, status, winnerID, duelID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update duel state: %w", err)
	}

	return duel, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanDuel 단일 행에서 듀얼 스캔 (problem/submissions는 jsonb)
func scanDuel(row rowScanner) (*models.Duel, error) {
	duel := &models.Duel{}
	var problemJSON, submissionsJSON []byte

	err := row.Scan(
		&duel.ID,
		&problemJSON,
		&duel.Player1ID,
		&duel.Player1Warnings,
		&duel.Player2ID,
		&duel.Player2Warnings,
		&duel.Status,
		&duel.StartTime,
		&duel.WinnerID,
		&duel.Wager,
		&submissionsJSON,
		&duel.FinalOverallStatus,
		&duel.FinalUserCode,
		&duel.CreatedAt,
		&duel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(problemJSON, &duel.Problem); err != nil {
		return nil, fmt.Errorf("failed to unmarshal problem snapshot: %w", err)
	}
	if len(submissionsJSON) > 0 {
		if err := json.Unmarshal(submissionsJSON, &duel.Submissions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal submissions: %w", err)
		}
	}

	return duel, nil
}

func scanDuels(rows *sql.Rows) ([]*models.Duel, error) {
	var duels []*models.Duel
	for rows.Next() {
		duel, err := scanDuel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan duel: %w", err)
		}
		duels = append(duels, duel)
	}
	return duels, rows.Err()
}

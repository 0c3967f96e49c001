package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/database"
)

type ProblemRepository struct {
	db *database.DB
}

func NewProblemRepository(db *database.DB) *ProblemRepository {
	return &ProblemRepository{db: db}
}

const problemColumns = `id, title, description, difficulty, test_cases, solution,
	       starter_code, function_name, created_at, updated_at`

// FindByID ID로 문제 찾기
func (r *ProblemRepository) FindByID(id string) (*models.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = $1`

	problem, err := scanProblem(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find problem: %w", err)
	}

	return problem, nil
}

// FindRandomByDifficulty 해당 난이도 문제 중 무작위 선택
// 난이도에 맞는 문제가 없으면 전체에서 무작위 선택, 카탈로그가 비어 있으면 nil
func (r *ProblemRepository) FindRandomByDifficulty(difficulty models.Difficulty) (*models.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE difficulty = $1 ORDER BY RANDOM() LIMIT 1`

	problem, err := scanProblem(r.db.QueryRow(query, difficulty))
	if err == sql.ErrNoRows {
		// 난이도 매칭 실패 시 전체에서 선택
		return r.findAnyRandom()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find problem: %w", err)
	}

	return problem, nil
}

func (r *ProblemRepository) findAnyRandom() (*models.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems ORDER BY RANDOM() LIMIT 1`

	problem, err := scanProblem(r.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find problem: %w", err)
	}

	return problem, nil
}

func scanProblem(row rowScanner) (*models.Problem, error) {
	problem := &models.Problem{}
	var testCasesJSON []byte
	var solutionJSON []byte

	err := row.Scan(
		&problem.ID,
		&problem.Title,
		&problem.Description,
		&problem.Difficulty,
		&testCasesJSON,
		&solutionJSON,
		&problem.StarterCode,
		&problem.FunctionName,
		&problem.CreatedAt,
		&problem.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(testCasesJSON) > 0 {
		if err := json.Unmarshal(testCasesJSON, &problem.TestCases); err != nil {
			return nil, fmt.Errorf("failed to unmarshal test cases: %w", err)
		}
	}
	if len(solutionJSON) > 0 {
		if err := json.Unmarshal(solutionJSON, &problem.Solution); err != nil {
			return nil, fmt.Errorf("failed to unmarshal solution: %w", err)
		}
	}

	return problem, nil
}

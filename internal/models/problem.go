package models

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

type TestCase struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	IsSample bool   `json:"isSample,omitempty"`
}

// Solution 문제의 레퍼런스 솔루션
type Solution struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

type Problem struct {
	ID           string     `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description" db:"description"`
	Difficulty   Difficulty `json:"difficulty" db:"difficulty"`
	TestCases    []TestCase `json:"testCases" db:"test_cases"`
	Solution     *Solution  `json:"solution,omitempty" db:"solution"`
	StarterCode  string     `json:"starterCode" db:"starter_code"`
	FunctionName string     `json:"functionName" db:"function_name"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

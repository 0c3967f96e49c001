package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set in environment")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	err = db.Ping()
	if err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	fmt.Println("✅ Connected to database successfully!")

	// Insert Two Sum problem
	query := `
		INSERT INTO problems (id, title, description, difficulty, test_cases, solution, starter_code, function_name)
		VALUES
		    (
		        $1,
		        'Two Sum',
		        'Given an array of integers nums and an integer target, return indices of the two numbers such that they add up to target.',
		        'Easy',
		        '[{"input": "[2,7,11,15], 9", "output": "[0,1]", "isSample": true}, {"input": "[3,2,4], 6", "output": "[1,2]"}, {"input": "[3,3], 6", "output": "[0,1]"}]'::jsonb,
		        '{"language": "javascript", "code": "function twoSum(nums, target) {\n  const seen = new Map()\n  for (let i = 0; i < nums.length; i++) {\n    const rest = target - nums[i]\n    if (seen.has(rest)) return [seen.get(rest), i]\n    seen.set(nums[i], i)\n  }\n  return []\n}"}'::jsonb,
		        'function twoSum(nums, target) {\n  // your code here\n}',
		        'twoSum'
		    )
		ON CONFLICT (title) DO UPDATE SET
		    description = EXCLUDED.description,
		    difficulty = EXCLUDED.difficulty,
		    test_cases = EXCLUDED.test_cases,
		    solution = EXCLUDED.solution,
		    starter_code = EXCLUDED.starter_code,
		    function_name = EXCLUDED.function_name,
		    updated_at = NOW()
	`

	_, err = db.Exec(query, uuid.NewString())
	if err != nil {
		log.Fatal("Failed to insert Two Sum problem:", err)
	}

	fmt.Println("✅ Two Sum problem added successfully!")

	// List all problems
	fmt.Println("\n📋 All available problems:")
	rows, err := db.Query("SELECT id, title, difficulty FROM problems ORDER BY title")
	if err != nil {
		log.Fatal("Failed to query problems:", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, title, difficulty string
		err := rows.Scan(&id, &title, &difficulty)
		if err != nil {
			log.Fatal("Failed to scan problem:", err)
		}
		fmt.Printf("  - %s: %s (%s)\n", id, title, difficulty)
	}
}

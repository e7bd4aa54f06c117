// Command seed writes a small sample observations store for local runs.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"climate-api/internal/db/fixture"
)

func main() {
	_ = godotenv.Load()

	dbPath := os.Getenv("SQLITE_PATH")
	if dbPath == "" {
		dbPath = "Resources/hawaii.sqlite"
	}
	dbPath = filepath.Clean(dbPath)

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <command>\n  create  write the sample store to SQLITE_PATH\n  sql     print the sample store as a SQL script\n", os.Args[0])
		os.Exit(1)
	}

	switch os.Args[1] {
	case "create":
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
			os.Exit(1)
		}
		if err := fixture.Create(dbPath); err != nil {
			fmt.Fprintf(os.Stderr, "create: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("sample store written to %s\n", dbPath)
	case "sql":
		script, err := fixture.Script()
		if err != nil {
			fmt.Fprintf(os.Stderr, "sql: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(script)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

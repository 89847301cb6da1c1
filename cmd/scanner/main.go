package main

import (
	"os"

	"github.com/wonny/bullscan/cmd/scanner/commands"
)

// ⭐ 통합 CLI 진입점: go run ./cmd/scanner [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

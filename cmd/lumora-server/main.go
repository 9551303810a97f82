package main

import (
	"os"

	"github.com/lumora-ai/lumora-server/journalservice"
)

func main() {
	if err := journalservice.Run(); err != nil {
		os.Exit(1)
	}
}

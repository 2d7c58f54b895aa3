package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/zava/storefront-chat/internal/cli"
)

func main() {
	_ = godotenv.Load()

	if err := cli.NewApp().Execute(); err != nil {
		if !errors.Is(err, cli.ErrSendFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

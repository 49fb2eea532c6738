package main

import (
	"fmt"
	"os"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "auctus: %v\n", err)
		os.Exit(1)
	}
}

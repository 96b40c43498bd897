package main

import (
	"os"

	"github.com/zymptek/zymptek-api/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

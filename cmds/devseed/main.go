package main

import (
	"context"

	"github.com/dza1/devseed/logger"
)

var log = logger.GetLogger("main")

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}

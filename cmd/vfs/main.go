package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/jmgilman/go/vfs/internal/cmd"
)

func main() {
	if err := fang.Execute(context.Background(), cmd.NewRootCmd()); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"

	"github.com/bashfulrobot/debdesk/cmd/debdesk"
	"github.com/charmbracelet/fang"
)

func main() {
	cmd := debdesk.NewRootCmd()
	if err := fang.Execute(context.Background(), cmd,
		fang.WithVersion(debdesk.Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

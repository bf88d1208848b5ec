package main

import (
	"fmt"
	"os"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

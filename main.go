// ABOUTME: Entry point for the dealdesk CLI, REST API, and MCP server
// ABOUTME: Hands the command line to the cobra command tree
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/harperreed/dealdesk/cli"
)

const version = "0.2.0"

func main() {
	if err := cli.Run(context.Background(), version, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

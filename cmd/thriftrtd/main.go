// Command thriftrtd runs a standalone thriftrt server: a reactor, a
// server-role dispatcher driving a demo Runner, and an admin HTTP endpoint
// for health checks and Prometheus scraping.
package main

import (
	"fmt"
	"os"

	"github.com/marmos91/thriftrt/cmd/thriftrtd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Command pulse runs the market sentiment pipeline on demand: one analysis
// cycle, the daily digest, ad-hoc scoring and cache queries.
package main

import (
	"fmt"
	"os"

	"market-pulse/internal/handler/http/respond"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd(os.Stdout, defaultBuilder).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", respond.SanitizeError(err))
		os.Exit(1)
	}
}

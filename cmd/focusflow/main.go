// Command focusflow manages the local FocusFlow store: raw record access,
// guarded edits, backups, milestones and the shared-note server.
package main

import (
	"os"

	"github.com/mesh-intelligence/focusflow/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

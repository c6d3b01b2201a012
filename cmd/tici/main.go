// Command tici saves and restores tmux sessions per directory.
package main

import "github.com/d-kuro/tici/internal/cmd"

func main() {
	cmd.Execute()
}

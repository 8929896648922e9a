// Command battlehub-cli is an operator/debugging tool for the battle
// engine, grounded on the teacher's cmd/goby-cli layout (a thin main.go
// delegating to cmd.Execute).
package main

import "github.com/nfrund/battlehub/cmd/battlehub-cli/cmd"

func main() {
	cmd.Execute()
}

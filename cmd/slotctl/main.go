package main

import "github.com/mr-karan/slotdb/cmd/slotctl/cmd"

func main() {
	cmd.Execute()
}

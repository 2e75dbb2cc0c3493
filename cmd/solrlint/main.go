package main

import "github.com/jacoelho/solrschema/cmd/solrlint/internal/command"

func main() {
	command.Execute()
}

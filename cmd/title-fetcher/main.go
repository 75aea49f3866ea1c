package main

import cmd "github.com/rohmanhakim/title-fetcher/internal/cli"

func main() {
	cmd.Execute()
}

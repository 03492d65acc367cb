package main

import "github.com/nfrund/accountdash/cmd/server/cmd"

func main() {
	cmd.Execute()
}

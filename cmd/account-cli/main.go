package main

import "github.com/nfrund/accountdash/cmd/account-cli/cmd"

func main() {
	cmd.Execute()
}

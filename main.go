package main

import "github.com/frahmantamala/vesta-ledger/cmd"

func main() {
	cmd.Execute()
}

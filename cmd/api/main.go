package main

import "airledger-backend/internal/interfaces/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/Domenick1991/seatbooking/internal/cli"

func main() {
	cli.Execute()
}

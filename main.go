package main

import "airdrop-rewards-system/cli"

func main() {
	cli.Execute()
}

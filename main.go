package main

import "rank-api/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/balancer/solver-scripts/cmd"

func main() {
	cmd.Execute()
}

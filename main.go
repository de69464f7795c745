package main

import "github.com/papapumpkin/pagerank/cmd"

func main() {
	cmd.Execute()
}

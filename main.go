package main

import "github.com/frahmantamala/research-analytics/cmd"

func main() {
	cmd.Execute()
}

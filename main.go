package main

import "github.com/harrisonrobin/habitask/pkg/cli"

func main() {
	cli.Execute()
}

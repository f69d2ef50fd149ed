/*
	Copyright 2023 Markus Papenbrock
*/

package main

import "github.com/mpapenbr/turtlerace/cmd"

func main() {
	cmd.Execute()
}

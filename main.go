package main

import "ci-mirrors/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/inkpost/imgup/cmd"

func main() {
	cmd.Execute()
}

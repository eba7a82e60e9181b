package main

import "github.com/duffleit/quill/cmd"

func main() {
	cmd.Execute()
}

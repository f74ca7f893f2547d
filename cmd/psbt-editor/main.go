package main

import "psbt-editor/cmd/psbt-editor/cmd"

func main() {
	cmd.Execute()
}

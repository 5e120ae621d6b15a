package main

import "drive-json-publisher/cmd"

func main() {
	cmd.Execute()
}

package main

import "dxf/cmd/dxftool/cmd"

func main() {
	cmd.Execute()
}

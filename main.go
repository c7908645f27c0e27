package main

import "github.com/ebrainte/rd-dav-server/internal/cmd"

func main() {
	cmd.Execute()
}

package main

import (
	"deposbank/cmd"
	"fmt"
)

var (
	version string
	commit  string
)

func main() {
	ver := fmt.Sprintf("%s-%s", version, commit)
	cmd.Execute(ver)
}

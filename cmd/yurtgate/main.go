package main

import "github.com/Erkan3034/yurtgate/cmd/yurtgate/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/KaramelBytes/tipsight/cmd"

func main() {
	cmd.Execute()
}

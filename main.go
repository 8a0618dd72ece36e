package main

import "github.com/manikhere79/devops-metrics-agent/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/iksnae/weather-chat/cmd"

func main() {
	cmd.Execute()
}

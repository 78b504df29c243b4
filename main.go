package main

import "weather-lookup/cli"

func main() {
	cli.Execute()
}

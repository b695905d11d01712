package main

import "example.com/backstage/services/catalog/cmd"

func main() {
	cmd.Execute()
}

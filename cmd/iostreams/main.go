/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/iostreams/cmd/iostreams/cmd"

func main() {
	cmd.Execute()
}

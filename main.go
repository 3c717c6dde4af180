/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/gmaffy/assembly-pipeline/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/cmd"

func main() {
	cmd.Execute()
}

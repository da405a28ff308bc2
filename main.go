package main

import "github.com/lucidpath/wellness-api/cmd"

func main() {
	cmd.Execute()
}

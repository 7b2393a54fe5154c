package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("start")
	defer fmt.Println("never")
	os.Exit(1) // want "not recommended function"
}

func exit() {
	os.Exit(2)
}

package main

import "github.com/eleven-am/aura-studio/internal/bootstrap"

func main() {
	bootstrap.Run()
}

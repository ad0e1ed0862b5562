package main

import (
	"io"
	"os"
	"time"
)

// Environment is what a command may touch outside its arguments. Tests
// swap in buffers and a fixed clock.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time

	// OnListen receives the server base URL once serve has bound its
	// listener. Nil outside tests.
	OnListen func(baseURL string)
}

// DefaultEnv wires the process streams and the wall clock.
func DefaultEnv() *Environment {
	return &Environment{Stdout: os.Stdout, Stderr: os.Stderr, Now: time.Now}
}

package main

import "github.com/entropy-sentinel/sentinel/cmd/sentinel"

func main() { sentinel.Execute() }

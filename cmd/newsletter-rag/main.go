package main

import "newsletter-rag/cmd/newsletter-rag/cmd"

func main() {
	cmd.Execute()
}

package main

import (
	"fmt"
	"os"

	"resume-management-backend/pkg/auth"
)

// Prints bcrypt hashes for seeding accounts by hand:
//
//	go run ./scripts/genhash.go <password>...
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: genhash <password>...")
		os.Exit(2)
	}

	for _, pass := range os.Args[1:] {
		hash, err := auth.HashPassword(pass)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		fmt.Printf("Password: %s\nHash: %s\n\n", pass, hash)
	}
}

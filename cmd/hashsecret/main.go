// Command hashsecret prints an Argon2id hash suitable for ADMIN_PASSWORD_HASH.
//
//	go run ./cmd/hashsecret 'my admin secret'
//
// With no argument the secret is read from the first line of stdin.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/AnshRaj112/emotional-diary-backend/pkg/utils"
)

func main() {
	secret, err := readSecret()
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashsecret:", err)
		os.Exit(1)
	}

	hash, err := utils.HashSecret(secret)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashsecret:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

func readSecret() (string, error) {
	if len(os.Args) > 1 {
		return os.Args[1], nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return "", fmt.Errorf("empty secret")
	}
	return line, nil
}

// hash-gen produces bcrypt hashes for seeding user rows (the admin and the
// platform fee account) directly in the database. It hashes an account
// password by default; -pin hashes a 4-6 digit wallet PIN instead, which uses
// a lighter bcrypt cost.
package main

import (
	"flag"
	"fmt"
	"log"

	"campus-market.backend/pkg/crypto"
)

var (
	printfFn = fmt.Printf
	fatalfFn = log.Fatalf
)

func resolveSecret(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "Campus.Market-26"
}

func generateHash(secret string, asPin bool) (string, error) {
	if asPin {
		if !crypto.ValidatePinFormat(secret) {
			return "", fmt.Errorf("pin must be 4-6 digits, got %q", secret)
		}
		return crypto.HashPin(secret)
	}
	return crypto.HashPassword(secret)
}

func run(asPin bool, args []string) {
	secret := resolveSecret(args)

	hash, err := generateHash(secret, asPin)
	if err != nil {
		fatalfFn("Failed to hash: %v", err)
	}

	kind := "password"
	if asPin {
		kind = "pin"
	}
	printfFn("Generating hash for %s: %s\n", kind, secret)
	printfFn("Bcrypt Hash: %s\n", hash)
}

func main() {
	asPin := flag.Bool("pin", false, "hash a wallet PIN instead of a password")
	flag.Parse()

	run(*asPin, flag.Args())
}

package main

import (
	"fmt"
	"os"
)

func main() {
	// This is in .env file
	apiKey := os.Getenv("API_KEY")

	// This is only in exported environment (not in .env)
	ciToken := os.Getenv("ENVCHECK_E2E_CI_TOKEN")

	// This is missing (not in .env or exported)
	missingVar, _ := os.LookupEnv("ENVCHECK_E2E_MISSING")

	fmt.Println(apiKey, ciToken, missingVar)
}

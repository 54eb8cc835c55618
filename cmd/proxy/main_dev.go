//go:build dev

package main

import "github.com/joho/godotenv"

// Dev builds pick up SAPPHIRE_PROXY_* settings from a local .env file.
func init() {
	_ = godotenv.Load()
}

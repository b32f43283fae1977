package config

import "github.com/joho/godotenv"

// LoadDotEnv loads a local .env file into the process environment when one
// exists. Missing files are not an error; deployed environments configure
// through real environment variables.
func LoadDotEnv() {
	_ = godotenv.Load()
}

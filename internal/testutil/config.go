package testutil

import "os"

const (
	// TestPokemonAPIKey is the environment variable consulted for a live
	// card API key.
	TestPokemonAPIKey = "TEST_POKEMON_API_KEY"

	// DefaultTestKey is used when the environment provides nothing.
	DefaultTestKey = "test-key"
)

// GetTestToken returns a test token from environment variable or default
func GetTestToken(envVar, defaultValue string) string {
	if token := os.Getenv(envVar); token != "" {
		return token
	}
	return defaultValue
}

// GetTestPokemonAPIKey returns the API key tests send upstream. Fake
// servers accept anything; exporting TEST_POKEMON_API_KEY lets the same
// tests run against the real service.
func GetTestPokemonAPIKey() string {
	return GetTestToken(TestPokemonAPIKey, DefaultTestKey)
}

package testutil

import (
	"os"
	"testing"
)

// RequireTestEnvironment fails the test unless GO_ENV is "test". The suites
// swap in global config and database handles, so running them in any other
// environment risks touching a real database.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("tests must run with GO_ENV=test, got %q", env)
	}
}

// MustSetTestEnvironment forces GO_ENV=test for the process and verifies it
// took. Call it from suite setup before loading configuration.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("failed to set GO_ENV=test: %v", err)
	}
	RequireTestEnvironment(t)
}

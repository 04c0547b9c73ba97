package config

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	secretService = "agentcore"
	apiTokenKey   = "api_token"
)

// Keychain abstracts the platform secret store.
type Keychain interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

// NewKeychain returns the platform secret store: macOS Keychain via the
// security CLI, a mode-0600 JSON file under the data dir elsewhere.
func NewKeychain() Keychain {
	return platformKeychain{}
}

// GetAPIToken returns the bearer token shared between the CLI and the local
// daemon, generating and persisting one on first use.
func GetAPIToken(kc Keychain) (string, error) {
	token, err := kc.Get(secretService, apiTokenKey)
	if err == nil && token != "" {
		return token, nil
	}

	token = uuid.New().String()
	if err := kc.Set(secretService, apiTokenKey, token); err != nil {
		return "", fmt.Errorf("storing API token: %w", err)
	}
	return token, nil
}

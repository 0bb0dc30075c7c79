package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups this app's secrets in the OS keychain.
	KeyringService = "leadscout"

	placesAccount = "leadscout:places:api_key"
)

// GetPlacesAPIKey reads the places provider key from the OS keychain. The key
// never lives in the config file.
func GetPlacesAPIKey() (string, error) {
	key, err := keyring.Get(KeyringService, placesAccount)
	if err != nil || strings.TrimSpace(key) == "" {
		return "", errors.New("places API key not found (set it via the secrets endpoint)")
	}
	return key, nil
}

func SetPlacesAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("API key is empty")
	}
	return keyring.Set(KeyringService, placesAccount, key)
}

func DeletePlacesAPIKey() error {
	return keyring.Delete(KeyringService, placesAccount)
}

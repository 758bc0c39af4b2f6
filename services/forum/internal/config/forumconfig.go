package config

import (
	"errors"
	"os"
	"strings"
)

type ForumConfig struct {
	JWTSecret []byte

	// Ledger is the external content-ledger API.
	LedgerBaseURL   string
	LedgerAuthToken string

	// Storage encodes reply payloads before they hit the ledger.
	StorageBaseURL string

	// AppID identifies content published through this deployment;
	// ledger items carrying a different app id are shown as foreign.
	AppID string

	// NATSURL is optional. When empty the event publisher and the
	// counter worker are disabled and the service runs standalone.
	NATSURL string
}

func LoadForum() (ForumConfig, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return ForumConfig{}, errors.New("JWT_SECRET is required")
	}
	ledgerURL := strings.TrimSpace(os.Getenv("LEDGER_BASE_URL"))
	if ledgerURL == "" {
		return ForumConfig{}, errors.New("LEDGER_BASE_URL is required")
	}
	storageURL := strings.TrimSpace(os.Getenv("STORAGE_BASE_URL"))
	if storageURL == "" {
		return ForumConfig{}, errors.New("STORAGE_BASE_URL is required")
	}
	appID := strings.TrimSpace(os.Getenv("APP_ID"))
	if appID == "" {
		return ForumConfig{}, errors.New("APP_ID is required")
	}
	return ForumConfig{
		JWTSecret:       []byte(secret),
		LedgerBaseURL:   ledgerURL,
		LedgerAuthToken: strings.TrimSpace(os.Getenv("LEDGER_AUTH_TOKEN")),
		StorageBaseURL:  storageURL,
		AppID:           appID,
		NATSURL:         strings.TrimSpace(os.Getenv("NATS_URL")),
	}, nil
}

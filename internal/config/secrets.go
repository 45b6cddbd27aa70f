package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Default mount point for the Firebase service-account credential on
// hosting platforms that support secret files.
const DefaultCredentialsPath = "/etc/secrets/firebase_config.json"

// Secrets holds the credentials the application refuses to start without.
// They come from the environment (or a mounted secret file), never from
// the TOML config.
type Secrets struct {
	SecretKey           []byte // signs session cookies
	FirebaseCredentials []byte // serialized service-account JSON
	JamendoClientID     string
}

// LoadSecrets resolves secrets from the environment. The Firebase
// credential is read from credPath when the file exists, falling back to
// the FIREBASE_CONFIG environment variable. jamendoRequired should be set
// when catalog search is enabled in the configuration.
func LoadSecrets(credPath string, jamendoRequired bool) (*Secrets, error) {
	s := &Secrets{}

	key := os.Getenv("SECRET_KEY")
	if key == "" {
		return nil, fmt.Errorf("SECRET_KEY environment variable is not set")
	}
	s.SecretKey = []byte(key)

	if credPath == "" {
		credPath = DefaultCredentialsPath
	}
	if _, err := os.Stat(credPath); err == nil {
		creds, err := os.ReadFile(credPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credential file %s: %w", credPath, err)
		}
		s.FirebaseCredentials = creds
	} else {
		raw := os.Getenv("FIREBASE_CONFIG")
		if raw == "" {
			return nil, fmt.Errorf("firebase credentials not found: mount a secret file at %s or set the FIREBASE_CONFIG environment variable", credPath)
		}
		s.FirebaseCredentials = []byte(raw)
	}

	if !json.Valid(s.FirebaseCredentials) {
		return nil, fmt.Errorf("firebase credentials are not valid JSON")
	}

	s.JamendoClientID = os.Getenv("JAMENDO_CLIENT_ID")
	if jamendoRequired && s.JamendoClientID == "" {
		return nil, fmt.Errorf("JAMENDO_CLIENT_ID environment variable is not set (required while catalog search is enabled)")
	}

	return s, nil
}

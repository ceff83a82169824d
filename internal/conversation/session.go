package conversation

import "github.com/google/uuid"

// NewSessionKey returns a fresh opaque session key (UUIDv7).
func NewSessionKey() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ValidSessionKey reports whether key looks like one issued by NewSessionKey.
func ValidSessionKey(key string) bool {
	_, err := uuid.Parse(key)
	return err == nil
}

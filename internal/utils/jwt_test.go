package utils

import "testing"

func TestRoomTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateRoomToken("sess-1", "user-1", secret)
	if err != nil {
		t.Fatalf("GenerateRoomToken: %v", err)
	}

	sessionID, userID, err := ValidateRoomToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateRoomToken: %v", err)
	}
	if sessionID != "sess-1" || userID != "user-1" {
		t.Fatalf("claims mismatch: %s %s", sessionID, userID)
	}
}

func TestRoomTokenWrongSecret(t *testing.T) {
	token, err := GenerateRoomToken("sess-1", "user-1", []byte("secret-a"))
	if err != nil {
		t.Fatalf("GenerateRoomToken: %v", err)
	}

	if _, _, err := ValidateRoomToken(token, []byte("secret-b")); err == nil {
		t.Fatalf("expected validation failure with foreign secret")
	}
}

func TestRoomTokenGarbage(t *testing.T) {
	if _, _, err := ValidateRoomToken("not-a-token", []byte("secret")); err == nil {
		t.Fatalf("expected failure for malformed token")
	}
}

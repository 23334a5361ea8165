package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "wrong horse") {
		t.Fatalf("wrong password accepted")
	}
	if CheckPassword("not-a-bcrypt-hash", "correct horse") {
		t.Fatalf("malformed hash accepted")
	}
}

func TestAdminJWT(t *testing.T) {
	token, err := SignAdminJWT("secret-a", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := VerifyAdminJWT(token, "secret-a"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := VerifyAdminJWT(token, "secret-b"); err == nil {
		t.Fatalf("token verified under the wrong secret")
	}
}

func TestAdminJWTExpiry(t *testing.T) {
	token, err := SignAdminJWT("secret", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := VerifyAdminJWT(token, "secret"); err == nil {
		t.Fatalf("expired token accepted")
	}
}

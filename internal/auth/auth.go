package auth

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mr-tron/base58"
)

const (
	tokenMaxAge   = 24 * time.Hour
	challengeSkew = 5 * time.Minute
)

// VerifyWalletSignature checks that signature is a valid ed25519
// signature of message by the wallet key, and that the message is a
// fresh login challenge of the form "ark:login:<unix-seconds>".
func VerifyWalletSignature(wallet, message, signature string, now time.Time) error {
	ts, ok := strings.CutPrefix(message, "ark:login:")
	if !ok {
		return fmt.Errorf("malformed challenge")
	}
	issued, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid challenge timestamp: %w", err)
	}
	age := now.Sub(time.Unix(issued, 0))
	if age > challengeSkew || age < -challengeSkew {
		return fmt.Errorf("challenge expired")
	}

	pub, err := base58.Decode(wallet)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid wallet key")
	}
	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("invalid signature encoding")
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

// Sign issues a bearer token binding a wallet address to an expiry.
// The token format is "<wallet>.<expires-unix>.<hex hmac>".
func Sign(wallet, secret string, now time.Time) string {
	expires := now.Add(tokenMaxAge).Unix()
	payload := fmt.Sprintf("%s.%d", wallet, expires)
	mac := hex.EncodeToString(hmacSHA256([]byte(secret), []byte(payload)))
	return payload + "." + mac
}

// Verify checks a bearer token and returns the wallet it was issued for.
func Verify(token, secret string, now time.Time) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed token")
	}
	wallet, expiresStr, receivedMAC := parts[0], parts[1], parts[2]

	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid expiry: %w", err)
	}
	if now.Unix() > expires {
		return "", fmt.Errorf("token expired")
	}

	payload := wallet + "." + expiresStr
	computed := hex.EncodeToString(hmacSHA256([]byte(secret), []byte(payload)))
	if !hmac.Equal([]byte(computed), []byte(receivedMAC)) {
		return "", fmt.Errorf("signature mismatch")
	}

	return wallet, nil
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// StampLayout keeps string order equal to time order for log records.
const StampLayout = "2006-01-02 15:04:05"

func NowStamp() string {
	return time.Now().Format(StampLayout)
}

func HMACSHA256Hex(secret, msg string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

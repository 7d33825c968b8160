package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SpreadsheetID            string
	GoogleServiceAccountJSON string

	// SessionCodes maps a session label to its 6-digit desk code.
	// Read-only after FromEnv.
	SessionCodes map[string]string
	AdminSecret  string

	BackupCSVPath string

	RosterTTL   time.Duration
	LogCacheTTL time.Duration

	HTTPAddr string

	// optional Telegram admin notifications
	TelegramToken string
	AdminChatID   int64
}

func FromEnv() (Config, error) {
	var c Config
	c.SpreadsheetID = strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"))
	c.GoogleServiceAccountJSON = strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	c.AdminSecret = strings.TrimSpace(os.Getenv("ADMIN_SECRET"))

	c.BackupCSVPath = strings.TrimSpace(os.Getenv("BACKUP_CSV_PATH"))
	if c.BackupCSVPath == "" {
		c.BackupCSVPath = "checkin_backup.csv"
	}

	c.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}

	c.RosterTTL = secondsEnv("ROSTER_TTL_SECONDS", 600)
	c.LogCacheTTL = secondsEnv("LOG_CACHE_TTL_SECONDS", 30)

	c.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if raw := strings.TrimSpace(os.Getenv("ADMIN_CHAT_ID")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c, fmt.Errorf("ADMIN_CHAT_ID: %w", err)
		}
		c.AdminChatID = v
	}

	if c.SpreadsheetID == "" {
		return c, fmt.Errorf("GOOGLE_SHEETS_SPREADSHEET_ID is empty")
	}
	if c.GoogleServiceAccountJSON == "" {
		return c, fmt.Errorf("GOOGLE_SERVICE_ACCOUNT_JSON is empty")
	}
	if c.AdminSecret == "" {
		return c, fmt.Errorf("ADMIN_SECRET is empty")
	}

	codes, err := ParseSessionCodes(os.Getenv("SESSION_CODES"))
	if err != nil {
		return c, err
	}
	if len(codes) == 0 {
		return c, fmt.Errorf("SESSION_CODES is empty")
	}
	c.SessionCodes = codes

	return c, nil
}

// ParseSessionCodes parses "label=code,label=code". Labels may contain
// spaces; codes must be exactly 6 digits.
func ParseSessionCodes(raw string) (map[string]string, error) {
	m := map[string]string{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return m, nil
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		label, code, found := strings.Cut(part, "=")
		label = strings.TrimSpace(label)
		code = strings.TrimSpace(code)
		if !found || label == "" {
			return nil, fmt.Errorf("SESSION_CODES: bad entry %q", part)
		}
		if len(code) != 6 {
			return nil, fmt.Errorf("SESSION_CODES: code for %q must be 6 digits", label)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				return nil, fmt.Errorf("SESSION_CODES: code for %q must be 6 digits", label)
			}
		}
		m[label] = code
	}
	return m, nil
}

func secondsEnv(key string, def int) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(def) * time.Second
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return time.Duration(def) * time.Second
	}
	return time.Duration(v) * time.Second
}

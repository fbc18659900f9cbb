package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// GenerateSecureToken returns a hex token of length bytes of entropy.
func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// PtrTime returns pointer to time.Time
func PtrTime(t time.Time) *time.Time { return &t }

func PtrUint(v uint) *uint { return &v }

// ParseDate accepts "2006-01-02" or RFC3339 and returns UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339, s)
		if err2 != nil {
			return time.Time{}, err
		}
		t = t2
	}
	return DateOnly(t), nil
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

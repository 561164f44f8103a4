package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const DefaultMaxMessageLen = 2000

type MessageID string

// Message is immutable once persisted. Seq is assigned by the store.
type Message struct {
	ID         MessageID `json:"id"`
	RoomID     RoomID    `json:"roomId"`
	SenderID   UserID    `json:"senderId"`
	SenderName string    `json:"username"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	Seq        uint64    `json:"seq"`
}

// NormalizeText trims the text and enforces the length cap, counted in runes.
func NormalizeText(text string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLen
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", Validation("message text is required")
	}
	if utf8.RuneCountInString(text) > maxLen {
		return "", Validation("message text exceeds %d characters", maxLen)
	}
	return text, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/maheshrc27/postbridge/internal/models"
)

type captionEntry struct {
	Caption *string `json:"caption"`
}

// CaptionTable maps account key to that account's weekday captions. Entries
// are decoded on lookup so a malformed entry only affects its own account.
type CaptionTable map[string]json.RawMessage

type CaptionService interface {
	Resolve(ctx context.Context, acc models.Account, now time.Time) string
}

type captionService struct {
	path string
	loc  *time.Location
}

func NewCaptionService(path string, loc *time.Location) CaptionService {
	if loc == nil {
		loc = time.UTC
	}
	return &captionService{path: path, loc: loc}
}

// Resolve reloads the caption file on every call and never fails.
func (s *captionService) Resolve(ctx context.Context, acc models.Account, now time.Time) string {
	weekday := now.In(s.loc).Weekday()

	table, err := LoadCaptionTable(s.path)
	if err != nil {
		slog.Warn("Could not load caption from config", "account", acc.Name, "error", err)
		return FallbackCaption(acc.Name)
	}

	caption, ok := ResolveCaption(table, acc.Key(), acc.Name, weekday)
	if !ok {
		slog.Warn("No caption scheduled, using default", "account", acc.Name, "weekday", weekday.String())
	}
	return caption
}

func LoadCaptionTable(path string) (CaptionTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading caption file: %w", err)
	}

	var table CaptionTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("error parsing caption file: %w", err)
	}
	return table, nil
}

// ResolveCaption returns the caption for accountKey on weekday. ok is false
// when the fallback was used.
func ResolveCaption(table CaptionTable, accountKey, accountName string, weekday time.Weekday) (string, bool) {
	raw, ok := table[accountKey]
	if !ok {
		return FallbackCaption(accountName), false
	}

	var days map[string]json.RawMessage
	if err := json.Unmarshal(raw, &days); err != nil {
		return FallbackCaption(accountName), false
	}
	day, ok := days[weekday.String()]
	if !ok {
		return FallbackCaption(accountName), false
	}

	var entry captionEntry
	if err := json.Unmarshal(day, &entry); err != nil || entry.Caption == nil {
		return FallbackCaption(accountName), false
	}
	return *entry.Caption, true
}

func FallbackCaption(accountName string) string {
	return fmt.Sprintf("✨ #%s ✨", accountName)
}

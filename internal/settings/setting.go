package settings

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sitesettings/sitesettings/internal/db/models"
)

// Setting is one named configuration value with its version bookkeeping.
// History is only filled when explicitly requested.
type Setting struct {
	ID             string         `json:"id"`
	Key            string         `json:"key"`
	Value          Value          `json:"value"`
	Type           Type           `json:"type"`
	Category       string         `json:"category"`
	Label          string         `json:"label"`
	Description    string         `json:"description"`
	CurrentVersion int            `json:"current_version"`
	History        []HistoryEntry `json:"history,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
	UpdatedBy      string         `json:"updated_by"`
	CreatedAt      time.Time      `json:"created_at"`
}

// HistoryEntry records a value that was current for Version and who replaced it when.
type HistoryEntry struct {
	Version   int       `json:"version"`
	Value     Value     `json:"value"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

// storedEntry is the persisted form of a HistoryEntry, its value is decoded with the setting's type.
type storedEntry struct {
	Version   int             `json:"version"`
	Value     json.RawMessage `json:"value"`
	ChangedBy string          `json:"changed_by"`
	ChangedAt time.Time       `json:"changed_at"`
}

// fromModel converts a stored row. Stored values are only checked for shape.
func fromModel(row *models.Setting, withHistory bool) (*Setting, error) {
	t := Type(row.Type)

	value, err := Decode(t, row.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: stored value of %q is malformed: %v", ErrStorage, row.Key, err) //nolint:errorlint
	}

	s := &Setting{
		ID:             row.ID,
		Key:            row.Key,
		Value:          value,
		Type:           t,
		Category:       row.Category,
		Label:          row.Label,
		Description:    row.Description,
		CurrentVersion: row.CurrentVersion,
		UpdatedAt:      row.UpdatedAt,
		UpdatedBy:      row.UpdatedBy,
		CreatedAt:      row.CreatedAt,
	}

	if !withHistory {
		return s, nil
	}

	s.History, err = decodeHistory(row.Key, t, row.History)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func decodeHistory(key string, t Type, raw []byte) ([]HistoryEntry, error) {
	if len(raw) == 0 {
		return []HistoryEntry{}, nil
	}

	var stored []storedEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("%w: stored history of %q is malformed: %v", ErrStorage, key, err) //nolint:errorlint
	}

	history := make([]HistoryEntry, 0, len(stored))

	for _, e := range stored {
		value, err := Decode(t, e.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: history version %d of %q is malformed: %v", ErrStorage, e.Version, key, err) //nolint:errorlint
		}

		history = append(history, HistoryEntry{
			Version:   e.Version,
			Value:     value,
			ChangedBy: e.ChangedBy,
			ChangedAt: e.ChangedAt,
		})
	}

	return history, nil
}

func encodeHistory(history []HistoryEntry) ([]byte, error) {
	if history == nil {
		history = []HistoryEntry{}
	}

	return json.Marshal(history)
}

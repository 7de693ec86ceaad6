package models

import (
	"time"

	"github.com/google/uuid"
)

// Translation maps to the translations table. Rows are immutable once
// written; repeated requests for the same language accumulate new rows.
type Translation struct {
	ID             uuid.UUID `json:"id"`
	ScriptID       uuid.UUID `json:"script_id"`
	TargetLanguage string    `json:"target_language"`
	TranslatedText string    `json:"translated_text"`
	Segments       []Segment `json:"segments"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

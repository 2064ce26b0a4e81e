package diagnosis

import (
	"time"
)

// Record is one completed pipeline run. Records are insert-only: the
// system never updates or deletes them.
type Record struct {
	ID         string    `json:"id,omitempty" bson:"-"`
	UserID     string    `json:"userId" bson:"userId"`
	Diagnosis  string    `json:"diagnosis" bson:"diagnosis"`
	Transcript string    `json:"transcript" bson:"transcript"`
	AudioURL   string    `json:"audioUrl,omitempty" bson:"audioUrl,omitempty"`
	ImageURL   string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	TTSURL     string    `json:"ttsUrl,omitempty" bson:"ttsUrl,omitempty"`
	Symptom    string    `json:"symptom,omitempty" bson:"symptom,omitempty"`
	FrontendID string    `json:"frontendId" bson:"frontendId"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// PlaceholderUserID marks records created through the unauthenticated
// chat pipeline.
const PlaceholderUserID = "guest"

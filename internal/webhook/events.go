package webhook

import (
	"encoding/json"
	"time"

	"github.com/Ashivkar123/Image-Resizer/internal/catalog"
	"github.com/google/uuid"
)

const (
	EventImageResized   = "image.resized"
	EventImageEdited    = "image.edited"
	EventImageDeleted   = "image.deleted"
	EventBatchCompleted = "batch.completed"
)

var ValidEventTypes = map[string]bool{
	EventImageResized:   true,
	EventImageEdited:    true,
	EventImageDeleted:   true,
	EventBatchCompleted: true,
}

type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	Data      json.RawMessage `json:"data"`
}

type ImageData struct {
	ImageID   int64  `json:"image_id"`
	ParentID  *int64 `json:"parent_id,omitempty"`
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	Format    string `json:"format"`
	SizeBytes int64  `json:"size_bytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type BatchCompletedData struct {
	BatchID    string `json:"batch_id,omitempty"`
	Total      int    `json:"total"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
	Cancelled  int    `json:"cancelled"`
	DurationMs int64  `json:"duration_ms"`
}

func NewEvent(eventType string, data any) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		CreatedAt: time.Now().UTC(),
		Data:      dataBytes,
	}, nil
}

func NewImageEvent(eventType string, rec *catalog.Record) (*Event, error) {
	return NewEvent(eventType, ImageData{
		ImageID:   rec.ID,
		ParentID:  rec.ParentID,
		Name:      rec.OriginalName,
		Filename:  rec.Filename,
		Format:    rec.Format,
		SizeBytes: rec.FileSize,
		Width:     rec.ResizedWidth,
		Height:    rec.ResizedHeight,
	})
}

func NewBatchCompletedEvent(data BatchCompletedData) (*Event, error) {
	return NewEvent(EventBatchCompleted, data)
}

func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

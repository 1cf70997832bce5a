package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"daybook/internal/core"
)

// DayUpdatedMessage announces that the editable fields of a day changed.
// It only carries the date; consumers reload the entry from the ledger.
type DayUpdatedMessage struct {
	ID        string    `json:"id"`
	Date      core.Date `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDayUpdatedMessage(date core.Date) *DayUpdatedMessage {
	return &DayUpdatedMessage{
		ID:        uuid.NewString(),
		Date:      date,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DayUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DayUpdatedMessageFromJSON decodes a message and rejects ones without a date.
func DayUpdatedMessageFromJSON(data []byte) (*DayUpdatedMessage, error) {
	var raw struct {
		ID        string     `json:"id"`
		Date      *core.Date `json:"date"`
		Timestamp time.Time  `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Date == nil {
		return nil, fmt.Errorf("message %q has no date", raw.ID)
	}
	return &DayUpdatedMessage{ID: raw.ID, Date: *raw.Date, Timestamp: raw.Timestamp}, nil
}

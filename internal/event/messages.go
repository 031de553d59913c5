package event

import (
	"encoding/json"
	"time"
)

// UploadProcessedMessage describes one completed upload cycle: how many
// dataset rows validated to each side, and how many rows the upload added.
type UploadProcessedMessage struct {
	GoodRecords  int       `json:"good_records"`
	BadRecords   int       `json:"bad_records"`
	UploadedRows int       `json:"uploaded_rows"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewUploadProcessedMessage(good, bad, uploaded int) *UploadProcessedMessage {
	return &UploadProcessedMessage{
		GoodRecords:  good,
		BadRecords:   bad,
		UploadedRows: uploaded,
		Timestamp:    time.Now(),
	}
}

func (m *UploadProcessedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func UploadProcessedMessageFromJSON(data []byte) (*UploadProcessedMessage, error) {
	var msg UploadProcessedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

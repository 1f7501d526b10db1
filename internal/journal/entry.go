// Package journal persists the push messages screens apply, so a session can
// be inspected and its view states rebuilt by folding the messages again.
package journal

import (
	"encoding/json"
	"time"

	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

// Entry is one applied push. Seq orders entries within a session.
type Entry struct {
	ID         uint   `gorm:"primaryKey"`
	SessionID  string `gorm:"index:idx_session_seq,priority:1;not null"`
	Seq        int64  `gorm:"index:idx_session_seq,priority:2;not null"`
	ScreenID   string `gorm:"index;not null"`
	Screen     string `gorm:"not null"`
	Topic      string `gorm:"not null"`
	SubKey     string
	Type       string `gorm:"not null"`
	UserID     string
	MessageID  string
	Data       string `gorm:"type:jsonb"`
	ReceivedAt time.Time
}

func (Entry) TableName() string { return "push_journal" }

// Push rebuilds the message the entry was recorded from.
func (e Entry) Push() types.PushMessage {
	m := types.PushMessage{Type: e.Type, UserID: e.UserID, ID: e.MessageID}
	if e.Data != "" {
		m.Data = json.RawMessage(e.Data)
	}
	return m
}

func Pushes(entries []Entry) []types.PushMessage {
	out := make([]types.PushMessage, len(entries))
	for i, e := range entries {
		out[i] = e.Push()
	}
	return out
}

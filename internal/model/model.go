// Package model defines the gorm persistence models for accepted
// messages.
package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// Message is the persisted form of one accepted datalink message.
type Message struct {
	ID           uint      `gorm:"primarykey"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UID          string    `gorm:"size:64;uniqueIndex"`
	Timestamp    float64   `gorm:"index"`
	StationID    string    `gorm:"size:64;index"`
	Link         string    `gorm:"size:16;index"`
	Freq         float64
	Level        float64
	Error        int
	Label        string `gorm:"size:32;index"`
	LabelType    string `gorm:"size:128"`
	Mode         string `gorm:"size:32"`
	BlockID      string `gorm:"size:32"`
	Ack          string `gorm:"size:32"`
	Msgno        string `gorm:"size:32;index"`
	MsgnoParts   string `gorm:"size:128"`
	Tail         string `gorm:"size:32;index"`
	Flight       string `gorm:"size:32;index"`
	ICAOHex      string `gorm:"size:32;index"`
	ToAddr       int
	FromAddr     int
	Text         string `gorm:"type:text"`
	Data         string `gorm:"type:text"`
	DecodedText  string `gorm:"type:text"`
	Libacars     datatypes.JSON
	Depa         string `gorm:"size:32;index"`
	Dsta         string `gorm:"size:32;index"`
	Eta          string `gorm:"size:32"`
	Gtout        string `gorm:"size:32"`
	Gtin         string `gorm:"size:32"`
	Wloff        string `gorm:"size:32"`
	Wlin         string `gorm:"size:32"`
	Lat          *float64
	Lon          *float64
	Alt          *float64
	IsResponse   bool
	IsOnground   bool
	Duplicates   int
	Matched      bool `gorm:"index"`
	MatchedTerms datatypes.JSON
}

// TableName sets the messages table name.
func (Message) TableName() string {
	return "messages"
}

// FromCore converts a correlated message into its persisted form.
func FromCore(m *core.Message) Message {
	rec := Message{
		UID:         m.UID,
		Timestamp:   m.Timestamp,
		StationID:   m.StationID,
		Link:        string(m.Link),
		Freq:        m.Freq,
		Level:       m.Level,
		Error:       m.Error,
		Label:       m.Label,
		LabelType:   m.LabelType,
		Mode:        m.Mode,
		BlockID:     m.BlockID,
		Ack:         m.Ack,
		Msgno:       m.Msgno,
		MsgnoParts:  m.MsgnoParts,
		Tail:        m.Tail,
		Flight:      m.Flight,
		ICAOHex:     m.ICAOHex,
		ToAddr:      m.ToAddr,
		FromAddr:    m.FromAddr,
		Text:        m.Text,
		Data:        m.Data,
		DecodedText: m.DecodedText,
		Depa:        m.Depa,
		Dsta:        m.Dsta,
		Eta:         m.Eta,
		Gtout:       m.Gtout,
		Gtin:        m.Gtin,
		Wloff:       m.Wloff,
		Wlin:        m.Wlin,
		Lat:         m.Latitude,
		Lon:         m.Longitude,
		Alt:         m.Altitude,
		IsResponse:  m.IsResponse,
		IsOnground:  m.IsOnground,
		Duplicates:  m.Duplicates,
		Matched:     m.Matched,
	}
	if len(m.Libacars) > 0 {
		if b, err := json.Marshal(m.Libacars); err == nil {
			rec.Libacars = datatypes.JSON(b)
		}
	}
	if len(m.MatchedTerms) > 0 {
		if b, err := json.Marshal(m.MatchedTerms); err == nil {
			rec.MatchedTerms = datatypes.JSON(b)
		}
	}
	return rec
}

// DatabaseModels lists every model migrated at startup.
var DatabaseModels = []any{
	&Message{},
}

// Migrate runs schema migration for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(DatabaseModels...)
}

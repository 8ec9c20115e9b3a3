package model

import (
	"time"
)

// DocumentSnapshot die versionierte Dokumentzeile des Datenbank-Backends.
// Version wird bei jedem erfolgreichen Schreiben hochgezählt und dient als
// Versionsmarke für Compare-and-Swap.
type DocumentSnapshot struct {
	ID        uint      `gorm:"primaryKey"`
	Key       string    `gorm:"column:doc_key;uniqueIndex;size:191;not null"`
	Content   string    `gorm:"type:longtext;not null"`
	Version   int64     `gorm:"not null;default:1"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (DocumentSnapshot) TableName() string {
	return "document_snapshots"
}

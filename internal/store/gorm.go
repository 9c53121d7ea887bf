package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inboxpilot/internal/agent"
)

// MemorySnapshot is the database row holding one named memory document.
type MemorySnapshot struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Data      datatypes.JSON `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// GormStore persists agent memory as a JSON column in the relational
// database, one row per named snapshot.
type GormStore struct {
	db   *gorm.DB
	name string
}

func NewGormStore(db *gorm.DB, name string) *GormStore {
	return &GormStore{db: db, name: name}
}

func (s *GormStore) Load() (*agent.Memory, error) {
	var snap MemorySnapshot
	err := s.db.Where("name = ?", s.name).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load memory snapshot: %w", err)
	}
	var mem agent.Memory
	if err := json.Unmarshal(snap.Data, &mem); err != nil {
		return nil, fmt.Errorf("parse memory snapshot: %w", err)
	}
	return &mem, nil
}

func (s *GormStore) Save(mem *agent.Memory) error {
	data, err := json.Marshal(mem)
	if err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}
	snap := MemorySnapshot{Name: s.name, Data: data}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		return fmt.Errorf("save memory snapshot: %w", err)
	}
	return nil
}

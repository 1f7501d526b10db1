package journal

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const batchSize = 100

// Appender is where a Writer flushes to.
type Appender interface {
	Append(ctx context.Context, entries []Entry) error
}

type Store struct {
	db *gorm.DB
}

// Open connects to postgres and migrates the journal table.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("journal: connect: %w", err)
	}
	s := &Store{db: db}
	if err := s.AutoMigrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("journal: migrate: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(entries, batchSize).Error; err != nil {
		return fmt.Errorf("journal: append: %w", err)
	}
	return nil
}

// Load returns a session's entries in recording order. An empty screenID
// loads every screen.
func (s *Store) Load(ctx context.Context, sessionID, screenID string) ([]Entry, error) {
	q := s.db.WithContext(ctx).Where("session_id = ?", sessionID)
	if screenID != "" {
		q = q.Where("screen_id = ?", screenID)
	}
	var out []Entry
	if err := q.Order("seq").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("journal: load %s: %w", sessionID, err)
	}
	return out, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

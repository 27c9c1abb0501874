// Package history keeps an optional MySQL journal of completed
// verifications, so past verdicts survive the process that produced them.
package history

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sceptre-labs/sceptre/src/verify"
)

// Entry is one journaled verification. The payload itself is not stored,
// only a fingerprint, so the journal stays small and holds no raw content.
type Entry struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	Modality    string `gorm:"size:8;not null"`
	Fingerprint string `gorm:"size:16;index;not null"`
	Assessment  string `gorm:"size:32;not null"`
	Score       float64
	Summary     string `gorm:"type:text"`
	SessionID   string `gorm:"size:32;index"`
	CreatedAt   time.Time
}

func (Entry) TableName() string { return "verifications" }

// Journal is the gorm-backed store for entries.
type Journal struct {
	db *gorm.DB
}

// Open connects with the same defaults the rest of the tooling uses and
// migrates the journal table.
func Open(dsn string) (*Journal, error) {
	db, err := connectMySQL(dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// NewWithDB wraps an existing gorm handle. Used by tests.
func NewWithDB(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

// Record journals one completed verification.
func (j *Journal) Record(ctx context.Context, sub verify.Submission, res *verify.Result, sessionID string) error {
	entry := Entry{
		Modality:    sub.Modality.String(),
		Fingerprint: Fingerprint(sub),
		Assessment:  res.CredibilityAssessment,
		Score:       res.ClassificationScore,
		Summary:     res.Summary,
		SessionID:   sessionID,
		CreatedAt:   time.Now(),
	}
	if err := j.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record verification: %w", err)
	}
	return nil
}

// Recent returns the latest n entries, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	var entries []Entry
	err := j.db.WithContext(ctx).Order("id DESC").Limit(n).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	return entries, nil
}

// Fingerprint hashes the submission payload to a stable 64-bit hex token,
// enough to spot repeat submissions without retaining the content.
func Fingerprint(sub verify.Submission) string {
	h := xxhash.New64()
	switch sub.Modality {
	case verify.ModalityText:
		h.WriteString(sub.Content)
	case verify.ModalityURL:
		h.WriteString(sub.Link)
	case verify.ModalityFile:
		h.Write(sub.Data)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// connectMySQL opens a gorm DB with sane defaults.
func connectMySQL(dsn string) (*gorm.DB, error) {
	dsn = ensureParam(dsn, "parseTime", "true")
	if !strings.Contains(dsn, "charset=") {
		dsn = ensureParam(dsn, "charset", "utf8mb4")
	}

	gormLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	return gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
}

func ensureParam(dsn, key, val string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + val
}

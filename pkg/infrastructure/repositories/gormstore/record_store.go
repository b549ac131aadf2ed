package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// recordRow stores every collection in one table with the fields as JSONB
type recordRow struct {
	ID         string         `gorm:"primaryKey;size:36"`
	Collection string         `gorm:"size:64;not null;index"`
	Fields     map[string]any `gorm:"serializer:json;type:jsonb;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (recordRow) TableName() string {
	return "records"
}

// RecordStore is a PostgreSQL-backed RecordStore
type RecordStore struct {
	db *gorm.DB
}

// Verify interface compliance
var _ repositories.RecordStore = (*RecordStore)(nil)

// Open connects to PostgreSQL and migrates the records table
func Open(dsn string, verbose bool) (*RecordStore, error) {
	level := logger.Silent
	if verbose {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db)
}

// New wraps an existing gorm connection and migrates the records table
func New(db *gorm.DB) (*RecordStore, error) {
	if err := db.AutoMigrate(&recordRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate records table: %w", err)
	}
	return &RecordStore{db: db}, nil
}

// Get returns a record by id
func (s *RecordStore) Get(ctx context.Context, collection, id string) (*repositories.Record, error) {
	var row recordRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return row.toRecord(), nil
}

// Find returns the records of a collection matching the query
func (s *RecordStore) Find(ctx context.Context, collection string, query repositories.Query) ([]*repositories.Record, error) {
	tx := s.db.WithContext(ctx).Where("collection = ?", collection)
	for field, value := range query.Filter {
		if field == "id" {
			tx = tx.Where("id = ?", fmt.Sprint(value))
			continue
		}
		tx = tx.Where("fields->>? = ?", field, fmt.Sprint(value))
	}

	if query.Sort != "" {
		tx = tx.Order(orderBy(query.Sort))
	} else {
		tx = tx.Order("created_at")
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}

	var rows []recordRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", collection, err)
	}

	records := make([]*repositories.Record, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toRecord())
	}
	return records, nil
}

// Create stores a new record with a generated id
func (s *RecordStore) Create(ctx context.Context, collection string, fields map[string]any) (*repositories.Record, error) {
	row := recordRow{
		ID:         uuid.New().String(),
		Collection: collection,
		Fields:     fields,
	}
	if row.Fields == nil {
		row.Fields = map[string]any{}
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create %s record: %w", collection, err)
	}
	return row.toRecord(), nil
}

// Update merges fields into an existing record under a row lock
func (s *RecordStore) Update(ctx context.Context, collection, id string, fields map[string]any) (*repositories.Record, error) {
	var row recordRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("collection = ? AND id = ?", collection, id).
			First(&row).Error
		if err != nil {
			return err
		}
		if row.Fields == nil {
			row.Fields = map[string]any{}
		}
		for k, v := range fields {
			row.Fields[k] = v
		}
		return tx.Save(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return row.toRecord(), nil
}

// Delete removes a record
func (s *RecordStore) Delete(ctx context.Context, collection, id string) error {
	result := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&recordRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, repositories.ErrNotFound)
	}
	return nil
}

func orderBy(sort string) clause.OrderBy {
	field := strings.TrimPrefix(sort, "-")
	desc := strings.HasPrefix(sort, "-")
	direction := "ASC"
	if desc {
		direction = "DESC"
	}

	switch field {
	case "id":
		return clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "id"}, Desc: desc}}}
	case "created":
		return clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "created_at"}, Desc: desc}}}
	case "updated":
		return clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "updated_at"}, Desc: desc}}}
	default:
		return clause.OrderBy{Expression: clause.Expr{SQL: "fields->>? " + direction, Vars: []any{field}}}
	}
}

func (r *recordRow) toRecord() *repositories.Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return &repositories.Record{
		ID:         r.ID,
		Collection: r.Collection,
		Fields:     fields,
		Created:    r.CreatedAt,
		Updated:    r.UpdatedAt,
	}
}

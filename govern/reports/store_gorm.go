package reports

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// GormReportStore persists reports in SQL (sqlite or postgres) via gorm.
type GormReportStore struct {
	DB *gorm.DB
}

func NewGormReportStore(db *gorm.DB) (*GormReportStore, error) {
	if err := db.AutoMigrate(&Report{}); err != nil {
		return nil, fmt.Errorf("migrating report schema: %w", err)
	}
	return &GormReportStore{DB: db}, nil
}

func (s *GormReportStore) Create(ctx context.Context, report *Report) error {
	return s.DB.WithContext(ctx).Create(report).Error
}

func (s *GormReportStore) Get(ctx context.Context, id string) (*Report, error) {
	var r Report
	if err := s.DB.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormReportStore) ListByContent(ctx context.Context, contentID string) ([]Report, error) {
	var out []Report
	err := s.DB.WithContext(ctx).Where("content_id = ?", contentID).Order("id").Find(&out).Error
	return out, err
}

func (s *GormReportStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	res := s.DB.WithContext(ctx).Model(&Report{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("report not found: %s", id)
	}
	return nil
}

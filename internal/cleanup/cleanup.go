package cleanup

import (
	"fmt"
	"log"
	"time"

	"imobiliaria-portal/internal/models"

	"gorm.io/gorm"
)

// Unlinker removes a stored upload by its public URL.
type Unlinker interface {
	Remove(publicURL string) error
}

// Deindexer removes a listing from the search index.
type Deindexer interface {
	DeleteImovel(id uint) error
}

// Service physically deletes listings that have been inactive past the
// retention window, unlinking their uploads from disk. Archived backup
// copies are never touched.
type Service struct {
	db      *gorm.DB
	uploads Unlinker
	search  Deindexer
}

// NewService creates a cleanup service. search may be nil.
func NewService(db *gorm.DB, uploads Unlinker, search Deindexer) *Service {
	return &Service{db: db, uploads: uploads, search: search}
}

// Config holds configuration for cleanup operations
type Config struct {
	RetentionDays    int  // Days an inactive listing is kept before deletion
	MaxDeletionCount int  // Safety limit per run
	DryRun           bool // Log what would be deleted without deleting
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		RetentionDays:    90,
		MaxDeletionCount: 1000,
		DryRun:           false,
	}
}

// Result holds the result of a cleanup operation
type Result struct {
	TargetCount    int       `json:"target_count"`
	DeletedCount   int       `json:"deleted_count"`
	ErrorCount     int       `json:"error_count"`
	DryRun         bool      `json:"dry_run"`
	ExecutedAt     time.Time `json:"executed_at"`
	DeletedCodigos []string  `json:"deleted_codigos"`
	Errors         []string  `json:"errors,omitempty"`
}

// FindExpired finds inactive listings older than the retention window
func (s *Service) FindExpired(retentionDays int) ([]models.Imovel, error) {
	var imoveis []models.Imovel

	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	err := s.db.Where("status = ? AND updated_at < ?",
		models.ImovelStatusInativo,
		cutoffDate,
	).Find(&imoveis).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired listings: %w", err)
	}

	return imoveis, nil
}

// Run performs physical deletion of expired listings
func (s *Service) Run(config Config) (*Result, error) {
	result := &Result{
		DryRun:     config.DryRun,
		ExecutedAt: time.Now(),
	}

	expired, err := s.FindExpired(config.RetentionDays)
	if err != nil {
		return nil, err
	}

	result.TargetCount = len(expired)

	if result.TargetCount == 0 {
		log.Println("Cleanup: No expired listings found")
		return result, nil
	}

	if result.TargetCount > config.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d listings exceed max deletion limit of %d",
			result.TargetCount, config.MaxDeletionCount)
	}

	log.Printf("Cleanup: %d listings to delete (retention: %d days, dry-run: %v)",
		result.TargetCount, config.RetentionDays, config.DryRun)

	for i := range expired {
		imovel := &expired[i]

		if config.DryRun {
			log.Printf("Cleanup: [DRY-RUN] Would delete %s (%s)", imovel.Codigo, imovel.Titulo)
			result.DeletedCodigos = append(result.DeletedCodigos, imovel.Codigo)
			result.DeletedCount++
			continue
		}

		if err := s.deleteOne(imovel); err != nil {
			errMsg := fmt.Sprintf("Failed to delete %s: %v", imovel.Codigo, err)
			log.Printf("Cleanup: ERROR: %s", errMsg)
			result.Errors = append(result.Errors, errMsg)
			result.ErrorCount++
			continue
		}

		log.Printf("Cleanup: Deleted %s (%s)", imovel.Codigo, imovel.Titulo)
		result.DeletedCodigos = append(result.DeletedCodigos, imovel.Codigo)
		result.DeletedCount++
	}

	log.Printf("Cleanup: Completed. %d/%d deleted, %d errors (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.ErrorCount, config.DryRun)

	return result, nil
}

// deleteOne removes one listing: delete log + row in a transaction, then
// disk unlink and search de-index (both best-effort).
func (s *Service) deleteOne(imovel *models.Imovel) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		deleteLog := models.DeleteLog{
			ImovelID: imovel.ID,
			Codigo:   imovel.Codigo,
			Titulo:   imovel.Titulo,
			Reason:   models.DeleteReasonExpired,
		}
		if err := tx.Create(&deleteLog).Error; err != nil {
			return err
		}
		return tx.Delete(imovel).Error
	})
	if err != nil {
		return err
	}

	for _, url := range imovel.MediaURLs() {
		if err := s.uploads.Remove(url); err != nil {
			log.Printf("Cleanup: Failed to unlink %s: %v", url, err)
		}
	}

	if s.search != nil {
		if err := s.search.DeleteImovel(imovel.ID); err != nil {
			log.Printf("Cleanup: Failed to de-index imovel %d: %v", imovel.ID, err)
		}
	}

	return nil
}

// GetRecentDeleteLogs returns recent delete log entries
func (s *Service) GetRecentDeleteLogs(limit int) ([]models.DeleteLog, error) {
	var logs []models.DeleteLog
	err := s.db.Order("deleted_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

package sync

import (
	"encoding/json"
	"log"
	"strconv"

	"imobiliaria-portal/internal/models"
)

// ImovelSource loads listings from the primary store.
type ImovelSource interface {
	GetImovelByID(id uint) (*models.Imovel, error)
	GetAllImoveis() ([]models.Imovel, error)
}

// CMS is the external content system the bridge reconciles against.
type CMS interface {
	FindByIntegrationID(integrationID string) ([]Entry, error)
	Create(payload StrapiImovel) (json.RawMessage, error)
	Update(entryID int, payload StrapiImovel) (json.RawMessage, error)
	Delete(entryID int) error
}

// Service pushes listings into the external CMS, upserting by integration
// id (the local surrogate key as a string).
type Service struct {
	imoveis ImovelSource
	cms     CMS
	baseURL string
}

// NewService creates a sync service. baseURL is the public site domain used
// for canonical listing URLs.
func NewService(imoveis ImovelSource, cms CMS, baseURL string) *Service {
	return &Service{
		imoveis: imoveis,
		cms:     cms,
		baseURL: baseURL,
	}
}

// Result describes what one sync invocation did.
type Result struct {
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// SyncImovel reconciles one listing with the CMS: create when absent,
// update when present. An error from the property load (including absence)
// is returned as-is for the handler to classify.
func (s *Service) SyncImovel(id uint) (*Result, error) {
	imovel, err := s.imoveis.GetImovelByID(id)
	if err != nil {
		return nil, err
	}
	return s.syncLoaded(imovel)
}

func (s *Service) syncLoaded(imovel *models.Imovel) (*Result, error) {
	payload := MapImovel(imovel, s.baseURL)

	entries, err := s.cms.FindByIntegrationID(payload.IntegrationID)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		data, err := s.cms.Create(payload)
		if err != nil {
			return nil, err
		}
		log.Printf("[Sync] imovel_id=%d created", imovel.ID)
		return &Result{Operation: "create", Data: data}, nil
	}

	if len(entries) > 1 {
		log.Printf("[Sync] imovel_id=%d has %d external matches, updating the first", imovel.ID, len(entries))
	}

	data, err := s.cms.Update(entries[0].ID, payload)
	if err != nil {
		return nil, err
	}
	log.Printf("[Sync] imovel_id=%d updated (entry=%d)", imovel.ID, entries[0].ID)
	return &Result{Operation: "update", Data: data}, nil
}

// DeleteImovel removes the external record for a listing. A listing with no
// external record is already consistent and reports a no-op.
func (s *Service) DeleteImovel(id uint) (*Result, error) {
	integrationID := strconv.FormatUint(uint64(id), 10)

	entries, err := s.cms.FindByIntegrationID(integrationID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return &Result{Operation: "noop"}, nil
	}

	if err := s.cms.Delete(entries[0].ID); err != nil {
		return nil, err
	}
	log.Printf("[Sync] imovel_id=%d external entry %d deleted", id, entries[0].ID)
	return &Result{Operation: "delete"}, nil
}

// BatchError is one failed listing inside a batch run.
type BatchError struct {
	ImovelID uint   `json:"imovel_id"`
	Error    string `json:"error"`
}

// BatchResult tallies a full sync run. SuccessCount+ErrorCount always
// equals Total.
type BatchResult struct {
	Total        int          `json:"total"`
	SuccessCount int          `json:"successCount"`
	ErrorCount   int          `json:"errorCount"`
	Errors       []BatchError `json:"errors"`
}

// SyncAll pushes every listing sequentially. A single failure never aborts
// the batch; the final tally is always reported.
func (s *Service) SyncAll() (*BatchResult, error) {
	imoveis, err := s.imoveis.GetAllImoveis()
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		Total:  len(imoveis),
		Errors: []BatchError{},
	}

	for i := range imoveis {
		if _, err := s.syncLoaded(&imoveis[i]); err != nil {
			log.Printf("[Sync] imovel_id=%d failed: %v", imoveis[i].ID, err)
			result.ErrorCount++
			result.Errors = append(result.Errors, BatchError{
				ImovelID: imoveis[i].ID,
				Error:    err.Error(),
			})
			continue
		}
		result.SuccessCount++
	}

	log.Printf("[Sync] Batch completed. Total: %d, Success: %d, Errors: %d",
		result.Total, result.SuccessCount, result.ErrorCount)

	return result, nil
}

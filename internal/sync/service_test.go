package sync

import (
	"encoding/json"
	"errors"
	"testing"

	"imobiliaria-portal/internal/database"
	"imobiliaria-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	imoveis map[uint]*models.Imovel
}

func (f *fakeSource) GetImovelByID(id uint) (*models.Imovel, error) {
	imovel, ok := f.imoveis[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return imovel, nil
}

func (f *fakeSource) GetAllImoveis() ([]models.Imovel, error) {
	all := []models.Imovel{}
	for _, i := range f.imoveis {
		all = append(all, *i)
	}
	return all, nil
}

type fakeCMS struct {
	entries map[string][]Entry

	created []StrapiImovel
	updated map[int]StrapiImovel
	deleted []int

	failFor map[string]error
}

func newFakeCMS() *fakeCMS {
	return &fakeCMS{
		entries: map[string][]Entry{},
		updated: map[int]StrapiImovel{},
		failFor: map[string]error{},
	}
}

func (f *fakeCMS) FindByIntegrationID(integrationID string) ([]Entry, error) {
	if err := f.failFor[integrationID]; err != nil {
		return nil, err
	}
	return f.entries[integrationID], nil
}

func (f *fakeCMS) Create(payload StrapiImovel) (json.RawMessage, error) {
	f.created = append(f.created, payload)
	return json.RawMessage(`{"data":{"id":1}}`), nil
}

func (f *fakeCMS) Update(entryID int, payload StrapiImovel) (json.RawMessage, error) {
	f.updated[entryID] = payload
	return json.RawMessage(`{"data":{"id":1}}`), nil
}

func (f *fakeCMS) Delete(entryID int) error {
	f.deleted = append(f.deleted, entryID)
	return nil
}

func newTestService(source *fakeSource, cms *fakeCMS) *Service {
	return NewService(source, cms, "https://www.example.com.br")
}

func TestSyncImovelCreatesWhenAbsent(t *testing.T) {
	source := &fakeSource{imoveis: map[uint]*models.Imovel{
		1: {ID: 1, Titulo: "Casa", Tipo: models.ImovelTipoCasa, Finalidade: models.FinalidadeVenda, Status: models.ImovelStatusAtivo},
	}}
	cms := newFakeCMS()

	result, err := newTestService(source, cms).SyncImovel(1)

	require.NoError(t, err)
	assert.Equal(t, "create", result.Operation)
	require.Len(t, cms.created, 1)
	assert.Equal(t, "1", cms.created[0].IntegrationID)
	assert.Empty(t, cms.updated)
}

func TestSyncImovelUpdatesWhenPresent(t *testing.T) {
	source := &fakeSource{imoveis: map[uint]*models.Imovel{
		1: {ID: 1, Titulo: "Casa", Tipo: models.ImovelTipoCasa, Finalidade: models.FinalidadeVenda},
	}}
	cms := newFakeCMS()
	cms.entries["1"] = []Entry{{ID: 99}}

	result, err := newTestService(source, cms).SyncImovel(1)

	require.NoError(t, err)
	assert.Equal(t, "update", result.Operation)
	assert.Empty(t, cms.created)
	assert.Contains(t, cms.updated, 99)
}

func TestSyncImovelUpdatesFirstOfDuplicates(t *testing.T) {
	source := &fakeSource{imoveis: map[uint]*models.Imovel{
		1: {ID: 1, Titulo: "Casa", Tipo: models.ImovelTipoCasa, Finalidade: models.FinalidadeVenda},
	}}
	cms := newFakeCMS()
	cms.entries["1"] = []Entry{{ID: 10}, {ID: 11}}

	result, err := newTestService(source, cms).SyncImovel(1)

	require.NoError(t, err)
	assert.Equal(t, "update", result.Operation)
	assert.Contains(t, cms.updated, 10)
	assert.NotContains(t, cms.updated, 11)
}

func TestSyncImovelPropagatesNotFound(t *testing.T) {
	source := &fakeSource{imoveis: map[uint]*models.Imovel{}}

	_, err := newTestService(source, newFakeCMS()).SyncImovel(123)

	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestDeleteImovelNoopWhenAbsent(t *testing.T) {
	cms := newFakeCMS()

	result, err := newTestService(&fakeSource{}, cms).DeleteImovel(5)

	require.NoError(t, err)
	assert.Equal(t, "noop", result.Operation)
	assert.Empty(t, cms.deleted)
}

func TestDeleteImovelRemovesExternalEntry(t *testing.T) {
	cms := newFakeCMS()
	cms.entries["5"] = []Entry{{ID: 77}}

	result, err := newTestService(&fakeSource{}, cms).DeleteImovel(5)

	require.NoError(t, err)
	assert.Equal(t, "delete", result.Operation)
	assert.Equal(t, []int{77}, cms.deleted)
}

func TestSyncAllTallyAddsUp(t *testing.T) {
	source := &fakeSource{imoveis: map[uint]*models.Imovel{
		1: {ID: 1, Titulo: "A", Tipo: models.ImovelTipoCasa, Finalidade: models.FinalidadeVenda},
		2: {ID: 2, Titulo: "B", Tipo: models.ImovelTipoCasa, Finalidade: models.FinalidadeVenda},
		3: {ID: 3, Titulo: "C", Tipo: models.ImovelTipoCasa, Finalidade: models.FinalidadeVenda},
	}}
	cms := newFakeCMS()
	cms.failFor["2"] = errors.New("cms unavailable")

	result, err := newTestService(source, cms).SyncAll()

	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, result.Total, result.SuccessCount+result.ErrorCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, uint(2), result.Errors[0].ImovelID)
}

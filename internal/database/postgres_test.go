package database

import (
	"testing"
	"time"

	"imobiliaria-portal/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockBackupDB(t *testing.T) (*BackupDB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewBackupDBFromConn(conn), mock
}

func TestInsertMedia(t *testing.T) {
	db, mock := newMockBackupDB(t)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO midias_backup").
		WithArgs(uint(7), "/uploads/imoveis/a.jpg", "imagem", "a.jpg",
			"image/jpeg", []byte("bytes"), int64(5), "abc123", []byte(`{"extensao":".jpg"}`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(42, now))

	media := &models.MidiaBackup{
		ImovelID:    7,
		URLOriginal: "/uploads/imoveis/a.jpg",
		TipoMidia:   models.MidiaTipoImagem,
		NomeArquivo: "a.jpg",
		MimeType:    "image/jpeg",
		Dados:       []byte("bytes"),
		Tamanho:     5,
		Checksum:    "abc123",
		Metadados:   []byte(`{"extensao":".jpg"}`),
	}
	require.NoError(t, db.InsertMedia(media))

	assert.Equal(t, uint(42), media.ID)
	assert.Equal(t, now, media.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMediaByIDNotFound(t *testing.T) {
	db, mock := newMockBackupDB(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM midias_backup\s+WHERE id = \$1`).
		WithArgs(uint(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := db.GetMediaByID(99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMediaByIDReturnsBytes(t *testing.T) {
	db, mock := newMockBackupDB(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "imovel_id", "url_original", "tipo_midia", "nome_arquivo",
		"mime_type", "dados", "tamanho", "checksum", "metadados", "created_at",
	}).AddRow(1, 7, "/uploads/imoveis/a.jpg", "imagem", "a.jpg",
		"image/jpeg", []byte("raw"), 3, "sum", []byte(`{}`), now)

	mock.ExpectQuery(`(?s)SELECT .+ FROM midias_backup\s+WHERE id = \$1`).
		WithArgs(uint(1)).
		WillReturnRows(rows)

	media, err := db.GetMediaByID(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), media.Dados)
	assert.Equal(t, "image/jpeg", media.MimeType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMediaFiltersAndPaginates(t *testing.T) {
	db, mock := newMockBackupDB(t)

	imovelID := uint(7)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM midias_backup WHERE imovel_id = \$1 AND tipo_midia = \$2`).
		WithArgs(imovelID, "imagem").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	listRows := sqlmock.NewRows([]string{
		"id", "imovel_id", "url_original", "tipo_midia", "nome_arquivo",
		"mime_type", "tamanho", "checksum", "metadados", "created_at",
	}).AddRow(2, 7, "/uploads/imoveis/b.jpg", "imagem", "b.jpg", "image/jpeg", 10, "s2", nil, now).
		AddRow(1, 7, "/uploads/imoveis/a.jpg", "imagem", "a.jpg", "image/jpeg", 5, "s1", nil, now)

	mock.ExpectQuery(`(?s)SELECT .+ FROM midias_backup WHERE imovel_id = \$1 AND tipo_midia = \$2\s+ORDER BY created_at DESC\s+LIMIT \$3 OFFSET \$4`).
		WithArgs(imovelID, "imagem", 10, 10).
		WillReturnRows(listRows)

	medias, total, err := db.ListMedia(MediaFilters{
		ImovelID: &imovelID,
		Tipo:     "imagem",
		Page:     2,
		Limit:    10,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(25), total)
	require.Len(t, medias, 2)
	// List rows never carry raw bytes
	assert.Nil(t, medias[0].Dados)
	assert.Equal(t, "b.jpg", medias[0].NomeArquivo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStats(t *testing.T) {
	db, mock := newMockBackupDB(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COUNT\(DISTINCT imovel_id\), COALESCE\(SUM\(tamanho\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "imoveis", "bytes"}).
			AddRow(10, 4, int64(3*1024*1024)))

	mock.ExpectQuery("SELECT tipo_midia, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"tipo_midia", "count"}).
			AddRow("imagem", 8).
			AddRow("video", 2))

	stats, err := db.GetStats(MediaFilters{})
	require.NoError(t, err)

	assert.Equal(t, int64(10), stats.TotalBackups)
	assert.Equal(t, int64(4), stats.TotalImoveis)
	assert.Equal(t, 3.0, stats.TamanhoMB)
	assert.Equal(t, int64(8), stats.PorTipo["imagem"])
	assert.Equal(t, int64(2), stats.PorTipo["video"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStatsSeedsZeroCounts(t *testing.T) {
	db, mock := newMockBackupDB(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COUNT\(DISTINCT imovel_id\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "imoveis", "bytes"}).AddRow(0, 0, 0))
	mock.ExpectQuery("SELECT tipo_midia, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"tipo_midia", "count"}))

	stats, err := db.GetStats(MediaFilters{})
	require.NoError(t, err)

	// Both kinds are always present in the breakdown
	assert.Equal(t, int64(0), stats.PorTipo[models.MidiaTipoImagem])
	assert.Equal(t, int64(0), stats.PorTipo[models.MidiaTipoVideo])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFormatCodigo(t *testing.T) {
	assert.Equal(t, "IMV-000001", FormatCodigo(1))
	assert.Equal(t, "IMV-000123", FormatCodigo(123))
	assert.Equal(t, "IMV-1234567", FormatCodigo(1234567))
}

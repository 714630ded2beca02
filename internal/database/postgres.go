package database

import (
	"database/sql"
	"fmt"

	"imobiliaria-portal/internal/models"

	_ "github.com/lib/pq"
)

// BackupDB is the accessor for the secondary archival database. All access
// is raw parameterized SQL; the table is append-only from the application's
// point of view.
type BackupDB struct {
	conn *sql.DB
}

func NewBackupDB(host, port, user, password, dbname, sslmode string) (*BackupDB, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &BackupDB{conn: conn}, nil
}

// NewBackupDBFromConn wraps an existing connection (used by tests)
func NewBackupDBFromConn(conn *sql.DB) *BackupDB {
	return &BackupDB{conn: conn}
}

func (db *BackupDB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the backup table if it doesn't exist
func (db *BackupDB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS midias_backup (
		id SERIAL PRIMARY KEY,
		imovel_id BIGINT NOT NULL,
		url_original TEXT NOT NULL,
		tipo_midia VARCHAR(10) NOT NULL,
		nome_arquivo TEXT NOT NULL,
		mime_type VARCHAR(100),
		dados BYTEA NOT NULL,
		tamanho BIGINT NOT NULL,
		checksum VARCHAR(64),
		metadados JSONB,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_midias_backup_imovel_id ON midias_backup(imovel_id);
	CREATE INDEX IF NOT EXISTS idx_midias_backup_tipo ON midias_backup(tipo_midia);
	CREATE INDEX IF NOT EXISTS idx_midias_backup_created_at ON midias_backup(created_at DESC);
	`
	_, err := db.conn.Exec(query)
	return err
}

// InsertMedia appends one archived copy. Re-archiving the same file inserts
// a new row; there is no dedup by checksum.
func (db *BackupDB) InsertMedia(m *models.MidiaBackup) error {
	query := `
	INSERT INTO midias_backup (
		imovel_id, url_original, tipo_midia, nome_arquivo,
		mime_type, dados, tamanho, checksum, metadados, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	RETURNING id, created_at
	`
	var metadados interface{}
	if len(m.Metadados) > 0 {
		metadados = []byte(m.Metadados)
	}
	return db.conn.QueryRow(query,
		m.ImovelID, m.URLOriginal, m.TipoMidia, m.NomeArquivo,
		m.MimeType, m.Dados, m.Tamanho, m.Checksum, metadados,
	).Scan(&m.ID, &m.CreatedAt)
}

// GetMediaByID retrieves one archived copy including its raw bytes
func (db *BackupDB) GetMediaByID(id uint) (*models.MidiaBackup, error) {
	query := `
		SELECT id, imovel_id, url_original, tipo_midia, nome_arquivo,
			   mime_type, dados, tamanho, checksum, metadados, created_at
		FROM midias_backup
		WHERE id = $1
	`

	var m models.MidiaBackup
	var mimeType, checksum sql.NullString
	var metadados []byte
	err := db.conn.QueryRow(query, id).Scan(
		&m.ID, &m.ImovelID, &m.URLOriginal, &m.TipoMidia, &m.NomeArquivo,
		&mimeType, &m.Dados, &m.Tamanho, &checksum, &metadados, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.MimeType = mimeType.String
	m.Checksum = checksum.String
	m.Metadados = metadados

	return &m, nil
}

// MediaFilters narrows backup inventory queries.
type MediaFilters struct {
	ImovelID *uint
	Tipo     string
	Page     int
	Limit    int
}

// ListMedia retrieves one page of backup rows without the raw bytes.
func (db *BackupDB) ListMedia(filters MediaFilters) ([]models.MidiaBackup, int64, error) {
	where, args := buildMediaWhere(filters)

	var total int64
	countQuery := "SELECT COUNT(*) FROM midias_backup" + where
	if err := db.conn.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, imovel_id, url_original, tipo_midia, nome_arquivo,
			   mime_type, tamanho, checksum, metadados, created_at
		FROM midias_backup` + where + fmt.Sprintf(`
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	args = append(args, limit, (page-1)*limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	medias := []models.MidiaBackup{}
	for rows.Next() {
		var m models.MidiaBackup
		var mimeType, checksum sql.NullString
		var metadados []byte
		err := rows.Scan(
			&m.ID, &m.ImovelID, &m.URLOriginal, &m.TipoMidia, &m.NomeArquivo,
			&mimeType, &m.Tamanho, &checksum, &metadados, &m.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		m.MimeType = mimeType.String
		m.Checksum = checksum.String
		m.Metadados = metadados
		medias = append(medias, m)
	}

	return medias, total, rows.Err()
}

// ListMediaByImovel retrieves all backup rows for one listing, without bytes
func (db *BackupDB) ListMediaByImovel(imovelID uint) ([]models.MidiaBackup, error) {
	id := imovelID
	medias, _, err := db.ListMedia(MediaFilters{ImovelID: &id, Limit: 100})
	return medias, err
}

// GetStats aggregates the backup inventory under the given filters
func (db *BackupDB) GetStats(filters MediaFilters) (*models.BackupStats, error) {
	where, args := buildMediaWhere(filters)

	stats := &models.BackupStats{
		PorTipo: map[string]int64{
			models.MidiaTipoImagem: 0,
			models.MidiaTipoVideo:  0,
		},
	}

	query := `
		SELECT COUNT(*), COUNT(DISTINCT imovel_id), COALESCE(SUM(tamanho), 0)
		FROM midias_backup` + where
	var totalBytes int64
	if err := db.conn.QueryRow(query, args...).Scan(&stats.TotalBackups, &stats.TotalImoveis, &totalBytes); err != nil {
		return nil, err
	}
	stats.TamanhoMB = roundMB(float64(totalBytes) / (1024 * 1024))
	stats.TamanhoGB = roundMB(float64(totalBytes) / (1024 * 1024 * 1024))

	tipoQuery := "SELECT tipo_midia, COUNT(*) FROM midias_backup" + where + " GROUP BY tipo_midia"
	rows, err := db.conn.Query(tipoQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tipo string
		var count int64
		if err := rows.Scan(&tipo, &count); err != nil {
			return nil, err
		}
		stats.PorTipo[tipo] = count
	}

	return stats, rows.Err()
}

// buildMediaWhere builds the WHERE clause with positional bindings. Values
// are always bound, never interpolated.
func buildMediaWhere(filters MediaFilters) (string, []interface{}) {
	where := ""
	args := []interface{}{}

	addCond := func(cond string, value interface{}) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		args = append(args, value)
		where += fmt.Sprintf(cond, len(args))
	}

	if filters.ImovelID != nil {
		addCond("imovel_id = $%d", *filters.ImovelID)
	}
	if filters.Tipo != "" {
		addCond("tipo_midia = $%d", filters.Tipo)
	}

	return where, args
}

func roundMB(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

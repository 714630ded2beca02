package models

import (
	"encoding/json"
	"time"
)

// Media kind constants for backup rows
const (
	MidiaTipoImagem = "imagem"
	MidiaTipoVideo  = "video"
)

// MidiaBackup is one archived copy of an uploaded media file. Rows live in
// the secondary backup database and are append-only: re-backing-up the same
// file inserts a new row. ImovelID may dangle after the listing is deleted.
type MidiaBackup struct {
	ID          uint            `json:"id"`
	ImovelID    uint            `json:"imovel_id"`
	URLOriginal string          `json:"url_original"`
	TipoMidia   string          `json:"tipo_midia"`
	NomeArquivo string          `json:"nome_arquivo"`
	MimeType    string          `json:"mime_type"`
	Dados       []byte          `json:"-"`
	Tamanho     int64           `json:"tamanho"`
	Checksum    string          `json:"checksum"`
	Metadados   json.RawMessage `json:"metadados,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TamanhoMB returns the archived size in megabytes.
func (m *MidiaBackup) TamanhoMB() float64 {
	return float64(m.Tamanho) / (1024 * 1024)
}

// BackupStats aggregates the backup inventory.
type BackupStats struct {
	TotalBackups int64            `json:"total_backups"`
	TotalImoveis int64            `json:"total_imoveis"`
	TamanhoMB    float64          `json:"tamanho_total_mb"`
	TamanhoGB    float64          `json:"tamanho_total_gb"`
	PorTipo      map[string]int64 `json:"por_tipo"`
}

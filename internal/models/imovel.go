package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Imovel represents a property listing managed by the brokerage.
type Imovel struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Codigo string `gorm:"type:varchar(20);not null;uniqueIndex" json:"codigo"`

	Titulo    string `gorm:"type:varchar(255);not null" json:"titulo"`
	Descricao string `gorm:"type:text" json:"descricao,omitempty"`

	Tipo       ImovelTipo       `gorm:"type:varchar(20);not null;index" json:"tipo"`
	Finalidade ImovelFinalidade `gorm:"type:varchar(20);not null;index" json:"finalidade"`

	Preco          *float64 `gorm:"type:decimal(14,2);index" json:"preco,omitempty"`
	AreaConstruida float64  `gorm:"type:decimal(10,2)" json:"area_construida,omitempty"`
	AreaTotal      float64  `gorm:"type:decimal(10,2)" json:"area_total,omitempty"`
	Quartos        int      `gorm:"type:int" json:"quartos,omitempty"`
	Banheiros      int      `gorm:"type:int" json:"banheiros,omitempty"`
	Vagas          int      `gorm:"type:int" json:"vagas,omitempty"`

	Endereco  string   `gorm:"type:varchar(255)" json:"endereco,omitempty"`
	Bairro    string   `gorm:"type:varchar(100);index" json:"bairro,omitempty"`
	Cidade    string   `gorm:"type:varchar(100);index" json:"cidade,omitempty"`
	Estado    string   `gorm:"type:varchar(2)" json:"estado,omitempty"`
	CEP       string   `gorm:"type:varchar(10)" json:"cep,omitempty"`
	Latitude  *float64 `gorm:"type:decimal(10,7)" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"type:decimal(10,7)" json:"longitude,omitempty"`

	// JSON-encoded string arrays. Fotos and Videos hold URLs under the
	// public uploads prefix; Caracteristicas holds free-form tags.
	Caracteristicas datatypes.JSON `gorm:"type:json" json:"caracteristicas,omitempty"`
	Fotos           datatypes.JSON `gorm:"type:json" json:"fotos,omitempty"`
	Videos          datatypes.JSON `gorm:"type:json" json:"videos,omitempty"`

	CorretorID *uint `gorm:"index" json:"corretor_id,omitempty"`

	Status   ImovelStatus `gorm:"type:varchar(20);not null;default:'ativo';index" json:"status"`
	Destaque bool         `gorm:"not null;default:false;index" json:"destaque"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_imoveis_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Imovel) TableName() string {
	return "imoveis"
}

// ImovelTipo is the property category
type ImovelTipo string

const (
	ImovelTipoCasa        ImovelTipo = "casa"
	ImovelTipoApartamento ImovelTipo = "apartamento"
	ImovelTipoTerreno     ImovelTipo = "terreno"
	ImovelTipoComercial   ImovelTipo = "comercial"
	ImovelTipoRural       ImovelTipo = "rural"
)

// ImovelFinalidade is the contract purpose (sale or rent)
type ImovelFinalidade string

const (
	FinalidadeVenda   ImovelFinalidade = "venda"
	FinalidadeAluguel ImovelFinalidade = "aluguel"
)

// ImovelStatus is the listing lifecycle status
type ImovelStatus string

const (
	ImovelStatusAtivo   ImovelStatus = "ativo"
	ImovelStatusInativo ImovelStatus = "inativo"
	ImovelStatusVendido ImovelStatus = "vendido"
	ImovelStatusAlugado ImovelStatus = "alugado"
)

// IsAtivo reports whether the listing is publicly visible
func (i *Imovel) IsAtivo() bool {
	return i.Status == ImovelStatusAtivo
}

// FotoURLs decodes the Fotos JSON column into a string slice.
// A missing or malformed column yields an empty slice.
func (i *Imovel) FotoURLs() []string {
	return decodeURLList(i.Fotos)
}

// VideoURLs decodes the Videos JSON column into a string slice.
func (i *Imovel) VideoURLs() []string {
	return decodeURLList(i.Videos)
}

// MediaURLs returns all photo and video URLs, photos first.
func (i *Imovel) MediaURLs() []string {
	return append(i.FotoURLs(), i.VideoURLs()...)
}

func decodeURLList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return nil
	}
	return urls
}

// EncodeURLList encodes a URL slice for storage in a JSON column.
func EncodeURLList(urls []string) datatypes.JSON {
	if urls == nil {
		urls = []string{}
	}
	data, _ := json.Marshal(urls)
	return datatypes.JSON(data)
}

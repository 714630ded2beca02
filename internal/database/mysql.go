package database

import (
	"errors"
	"fmt"
	"time"

	"imobiliaria-portal/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Imovel{},
		&models.Corretor{},
		&models.Contato{},
		&models.DeleteLog{},
	)
}

// ---- Imoveis ----

// ImovelFilters narrows public and admin listing queries.
type ImovelFilters struct {
	Tipo       string
	Finalidade string
	Cidade     string
	Bairro     string
	MinPreco   *float64
	MaxPreco   *float64
	MinQuartos *int
	Status     string
	Destaque   *bool
	CorretorID *uint
	SortBy     string
	Page       int
	Limit      int
}

// ImovelPage is one page of listing results.
type ImovelPage struct {
	Imoveis    []models.Imovel `json:"imoveis"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// CreateImovel inserts a listing and assigns its sequential codigo.
func (gdb *GormDB) CreateImovel(i *models.Imovel) error {
	if i.Status == "" {
		i.Status = models.ImovelStatusAtivo
	}
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var maxID int64
		if err := tx.Model(&models.Imovel{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return err
		}
		i.Codigo = FormatCodigo(uint(maxID) + 1)
		return tx.Create(i).Error
	})
}

// FormatCodigo renders the human-readable sequential property code.
func FormatCodigo(seq uint) string {
	return fmt.Sprintf("IMV-%06d", seq)
}

// GetImovelByID retrieves a listing by surrogate key
func (gdb *GormDB) GetImovelByID(id uint) (*models.Imovel, error) {
	var imovel models.Imovel
	err := gdb.db.Where("id = ?", id).First(&imovel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &imovel, nil
}

// GetImovelByCodigo retrieves a listing by its human-readable code
func (gdb *GormDB) GetImovelByCodigo(codigo string) (*models.Imovel, error) {
	var imovel models.Imovel
	err := gdb.db.Where("codigo = ?", codigo).First(&imovel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &imovel, nil
}

// ResolveCodigo maps a codigo to the listing's surrogate key.
func (gdb *GormDB) ResolveCodigo(codigo string) (uint, error) {
	var imovel models.Imovel
	err := gdb.db.Select("id").Where("codigo = ?", codigo).First(&imovel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return imovel.ID, nil
}

// SaveImovel updates a listing, preserving codigo and CreatedAt.
func (gdb *GormDB) SaveImovel(i *models.Imovel) error {
	var existing models.Imovel
	err := gdb.db.Where("id = ?", i.ID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	i.Codigo = existing.Codigo
	i.CreatedAt = existing.CreatedAt
	return gdb.db.Save(i).Error
}

// DeleteImovel removes the listing row.
func (gdb *GormDB) DeleteImovel(id uint) error {
	result := gdb.db.Delete(&models.Imovel{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAllImoveis retrieves every listing, newest first.
func (gdb *GormDB) GetAllImoveis() ([]models.Imovel, error) {
	var imoveis []models.Imovel
	err := gdb.db.Order("created_at DESC").Find(&imoveis).Error
	return imoveis, err
}

// ListImoveis retrieves a filtered, paginated page of listings.
func (gdb *GormDB) ListImoveis(filters ImovelFilters) (*ImovelPage, error) {
	query := gdb.db.Model(&models.Imovel{})

	if filters.Tipo != "" {
		query = query.Where("tipo = ?", filters.Tipo)
	}
	if filters.Finalidade != "" {
		query = query.Where("finalidade = ?", filters.Finalidade)
	}
	if filters.Cidade != "" {
		query = query.Where("cidade = ?", filters.Cidade)
	}
	if filters.Bairro != "" {
		query = query.Where("bairro = ?", filters.Bairro)
	}
	if filters.MinPreco != nil {
		query = query.Where("preco >= ?", *filters.MinPreco)
	}
	if filters.MaxPreco != nil {
		query = query.Where("preco <= ?", *filters.MaxPreco)
	}
	if filters.MinQuartos != nil {
		query = query.Where("quartos >= ?", *filters.MinQuartos)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Destaque != nil {
		query = query.Where("destaque = ?", *filters.Destaque)
	}
	if filters.CorretorID != nil {
		query = query.Where("corretor_id = ?", *filters.CorretorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	// NULL prices sort last regardless of direction (MySQL syntax)
	var orderClause string
	switch filters.SortBy {
	case "preco_asc":
		orderClause = "CASE WHEN preco IS NULL THEN 1 ELSE 0 END, preco ASC"
	case "preco_desc":
		orderClause = "CASE WHEN preco IS NULL THEN 1 ELSE 0 END, preco DESC"
	case "area_desc":
		orderClause = "area_total DESC"
	case "antigos":
		orderClause = "created_at ASC"
	default:
		orderClause = "created_at DESC"
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var imoveis []models.Imovel
	err := query.Order(orderClause).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&imoveis).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ImovelPage{
		Imoveis:    imoveis,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// ---- Corretores ----

// CreateCorretor inserts a broker account
func (gdb *GormDB) CreateCorretor(c *models.Corretor) error {
	return gdb.db.Create(c).Error
}

// GetCorretorByID retrieves a broker by id
func (gdb *GormDB) GetCorretorByID(id uint) (*models.Corretor, error) {
	var corretor models.Corretor
	err := gdb.db.Where("id = ?", id).First(&corretor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &corretor, nil
}

// GetCorretorByEmail retrieves a broker by email
func (gdb *GormDB) GetCorretorByEmail(email string) (*models.Corretor, error) {
	var corretor models.Corretor
	err := gdb.db.Where("email = ?", email).First(&corretor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &corretor, nil
}

// ListCorretores retrieves all brokers, newest first
func (gdb *GormDB) ListCorretores() ([]models.Corretor, error) {
	var corretores []models.Corretor
	err := gdb.db.Order("created_at DESC").Find(&corretores).Error
	return corretores, err
}

// SaveCorretor updates a broker account
func (gdb *GormDB) SaveCorretor(c *models.Corretor) error {
	return gdb.db.Save(c).Error
}

// DeleteCorretor removes a broker account
func (gdb *GormDB) DeleteCorretor(id uint) error {
	result := gdb.db.Delete(&models.Corretor{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- Contatos ----

// CreateContato inserts an inbound lead
func (gdb *GormDB) CreateContato(c *models.Contato) error {
	if c.Status == "" {
		c.Status = models.ContatoStatusNovo
	}
	return gdb.db.Create(c).Error
}

// GetContatoByID retrieves a lead by id
func (gdb *GormDB) GetContatoByID(id uint) (*models.Contato, error) {
	var contato models.Contato
	err := gdb.db.Where("id = ?", id).First(&contato).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &contato, nil
}

// ListContatos retrieves leads, optionally filtered by status
func (gdb *GormDB) ListContatos(status string, limit int) ([]models.Contato, error) {
	query := gdb.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var contatos []models.Contato
	err := query.Find(&contatos).Error
	return contatos, err
}

// UpdateContatoStatus moves a lead through its handling states
func (gdb *GormDB) UpdateContatoStatus(id uint, status models.ContatoStatus) error {
	result := gdb.db.Model(&models.Contato{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteContato removes a lead
func (gdb *GormDB) DeleteContato(id uint) error {
	result := gdb.db.Delete(&models.Contato{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

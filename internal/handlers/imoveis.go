package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"imobiliaria-portal/internal/backup"
	"imobiliaria-portal/internal/database"
	"imobiliaria-portal/internal/models"
	"imobiliaria-portal/internal/search"
	"imobiliaria-portal/internal/upload"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ImovelHandler serves the admin listing CRUD. Mutations fan out to the
// uploads directory, the backup worker and the search index.
type ImovelHandler struct {
	db      *database.GormDB
	uploads *upload.Storage
	backup  *backup.Worker
	search  *search.SearchClient
}

// NewImovelHandler creates a listing handler. search may be nil.
func NewImovelHandler(db *database.GormDB, uploads *upload.Storage, worker *backup.Worker, searchClient *search.SearchClient) *ImovelHandler {
	return &ImovelHandler{
		db:      db,
		uploads: uploads,
		backup:  worker,
		search:  searchClient,
	}
}

// List returns listings for the admin panel, any status.
// GET /api/admin/imoveis
func (h *ImovelHandler) List(c *gin.Context) {
	filters := imovelFiltersFromQuery(c)

	page, err := h.db.ListImoveis(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar imóveis"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get returns one listing by id.
// GET /api/admin/imoveis/:id
func (h *ImovelHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	imovel, err := h.db.GetImovelByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Imóvel não encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar imóvel"})
		return
	}
	c.JSON(http.StatusOK, imovel)
}

// Create inserts a listing from a multipart form. Uploaded photos and videos
// land on disk first; their archival copy is queued on the backup worker.
// POST /api/admin/imoveis
func (h *ImovelHandler) Create(c *gin.Context) {
	var imovel models.Imovel
	if err := applyImovelForm(c, &imovel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if imovel.Titulo == "" || imovel.Tipo == "" || imovel.Finalidade == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Título, tipo e finalidade são obrigatórios"})
		return
	}

	fotos, err := h.saveFiles(c, "fotos")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar fotos"})
		return
	}
	videos, err := h.saveFiles(c, "videos")
	if err != nil {
		h.removeFiles(fotos)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar vídeos"})
		return
	}

	imovel.Fotos = models.EncodeURLList(fotos)
	imovel.Videos = models.EncodeURLList(videos)

	if err := h.db.CreateImovel(&imovel); err != nil {
		h.removeFiles(fotos)
		h.removeFiles(videos)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar imóvel"})
		return
	}

	job := h.backup.Enqueue(imovel.ID, fotos, videos)
	if c.Query("aguardarBackup") == "true" {
		job.Wait(10 * time.Second)
	}

	h.indexImovel(&imovel)

	c.JSON(http.StatusCreated, imovel)
}

// Update rewrites a listing from a multipart form. New uploads are appended
// and queued for backup; URLs listed in remover_fotos / remover_videos are
// dropped and unlinked from disk.
// PUT /api/admin/imoveis/:id
func (h *ImovelHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	imovel, err := h.db.GetImovelByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Imóvel não encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar imóvel"})
		return
	}

	if err := applyImovelForm(c, imovel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	removedFotos := parseURLListField(c, "remover_fotos")
	removedVideos := parseURLListField(c, "remover_videos")
	fotos := removeURLs(imovel.FotoURLs(), removedFotos)
	videos := removeURLs(imovel.VideoURLs(), removedVideos)

	newFotos, err := h.saveFiles(c, "fotos")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar fotos"})
		return
	}
	newVideos, err := h.saveFiles(c, "videos")
	if err != nil {
		h.removeFiles(newFotos)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar vídeos"})
		return
	}

	imovel.Fotos = models.EncodeURLList(append(fotos, newFotos...))
	imovel.Videos = models.EncodeURLList(append(videos, newVideos...))

	if err := h.db.SaveImovel(imovel); err != nil {
		h.removeFiles(newFotos)
		h.removeFiles(newVideos)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar imóvel"})
		return
	}

	// Unlink dropped files only after the row is saved. Backup copies in
	// the archival store stay untouched.
	h.removeFiles(removedFotos)
	h.removeFiles(removedVideos)

	if len(newFotos)+len(newVideos) > 0 {
		job := h.backup.Enqueue(imovel.ID, newFotos, newVideos)
		if c.Query("aguardarBackup") == "true" {
			job.Wait(10 * time.Second)
		}
	}

	h.indexImovel(imovel)

	c.JSON(http.StatusOK, imovel)
}

// Delete removes a listing, its disk uploads and its search document, and
// records a delete log entry. Backup rows are never deleted.
// DELETE /api/admin/imoveis/:id
func (h *ImovelHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	imovel, err := h.db.GetImovelByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Imóvel não encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar imóvel"})
		return
	}

	err = h.db.DB().Transaction(func(tx *gorm.DB) error {
		deleteLog := models.DeleteLog{
			ImovelID: imovel.ID,
			Codigo:   imovel.Codigo,
			Titulo:   imovel.Titulo,
			Reason:   models.DeleteReasonManual,
		}
		if err := tx.Create(&deleteLog).Error; err != nil {
			return err
		}
		return tx.Delete(imovel).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao excluir imóvel"})
		return
	}

	h.removeFiles(imovel.MediaURLs())

	if h.search != nil {
		if err := h.search.DeleteImovel(imovel.ID); err != nil {
			log.Printf("[Imoveis] Failed to de-index imovel %d: %v", imovel.ID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Imóvel excluído", "codigo": imovel.Codigo})
}

// Reindex rebuilds the search index from the primary store.
// POST /api/admin/search/reindex
func (h *ImovelHandler) Reindex(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Busca indisponível"})
		return
	}

	imoveis, err := h.db.GetAllImoveis()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar imóveis"})
		return
	}

	if err := h.search.IndexImoveis(imoveis); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao reindexar imóveis"})
		return
	}

	log.Printf("[Reindex] Reindexed %d listings", len(imoveis))
	c.JSON(http.StatusOK, gin.H{"message": "Reindexação concluída", "total": len(imoveis)})
}

func (h *ImovelHandler) saveFiles(c *gin.Context, field string) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	var urls []string
	for _, file := range form.File[field] {
		url, err := h.uploads.Save(file, "imoveis")
		if err != nil {
			h.removeFiles(urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (h *ImovelHandler) removeFiles(urls []string) {
	for _, url := range urls {
		if err := h.uploads.Remove(url); err != nil {
			log.Printf("[Imoveis] Failed to unlink %s: %v", url, err)
		}
	}
}

func (h *ImovelHandler) indexImovel(i *models.Imovel) {
	if h.search == nil {
		return
	}
	if err := h.search.IndexImovel(i); err != nil {
		log.Printf("[Imoveis] Failed to index imovel %d: %v", i.ID, err)
	}
}

// ---- form parsing ----

func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// applyImovelForm copies posted form fields onto the listing. Absent fields
// leave the current value alone, so the same function serves create and
// update.
func applyImovelForm(c *gin.Context, i *models.Imovel) error {
	if v, ok := c.GetPostForm("titulo"); ok {
		i.Titulo = v
	}
	if v, ok := c.GetPostForm("descricao"); ok {
		i.Descricao = v
	}
	if v, ok := c.GetPostForm("tipo"); ok {
		if !validTipo(v) {
			return errors.New("Tipo de imóvel inválido")
		}
		i.Tipo = models.ImovelTipo(v)
	}
	if v, ok := c.GetPostForm("finalidade"); ok {
		if v != string(models.FinalidadeVenda) && v != string(models.FinalidadeAluguel) {
			return errors.New("Finalidade inválida")
		}
		i.Finalidade = models.ImovelFinalidade(v)
	}
	if v, ok := c.GetPostForm("status"); ok {
		if !validStatus(v) {
			return errors.New("Status inválido")
		}
		i.Status = models.ImovelStatus(v)
	}

	if v, ok := c.GetPostForm("preco"); ok {
		if v == "" {
			i.Preco = nil
		} else {
			preco, err := strconv.ParseFloat(v, 64)
			if err != nil || preco < 0 {
				return errors.New("Preço inválido")
			}
			i.Preco = &preco
		}
	}

	var err error
	if i.AreaConstruida, err = formFloat(c, "area_construida", i.AreaConstruida); err != nil {
		return errors.New("Área construída inválida")
	}
	if i.AreaTotal, err = formFloat(c, "area_total", i.AreaTotal); err != nil {
		return errors.New("Área total inválida")
	}
	if i.Quartos, err = formInt(c, "quartos", i.Quartos); err != nil {
		return errors.New("Número de quartos inválido")
	}
	if i.Banheiros, err = formInt(c, "banheiros", i.Banheiros); err != nil {
		return errors.New("Número de banheiros inválido")
	}
	if i.Vagas, err = formInt(c, "vagas", i.Vagas); err != nil {
		return errors.New("Número de vagas inválido")
	}

	if v, ok := c.GetPostForm("endereco"); ok {
		i.Endereco = v
	}
	if v, ok := c.GetPostForm("bairro"); ok {
		i.Bairro = v
	}
	if v, ok := c.GetPostForm("cidade"); ok {
		i.Cidade = v
	}
	if v, ok := c.GetPostForm("estado"); ok {
		i.Estado = v
	}
	if v, ok := c.GetPostForm("cep"); ok {
		i.CEP = v
	}

	if v, ok := c.GetPostForm("latitude"); ok && v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.New("Latitude inválida")
		}
		i.Latitude = &lat
	}
	if v, ok := c.GetPostForm("longitude"); ok && v != "" {
		lng, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.New("Longitude inválida")
		}
		i.Longitude = &lng
	}

	if v, ok := c.GetPostForm("caracteristicas"); ok && v != "" {
		var tags []string
		if err := json.Unmarshal([]byte(v), &tags); err != nil {
			return errors.New("Características devem ser um array JSON de strings")
		}
		i.Caracteristicas = models.EncodeURLList(tags)
	}

	if v, ok := c.GetPostForm("destaque"); ok {
		i.Destaque = v == "true" || v == "1"
	}

	if v, ok := c.GetPostForm("corretor_id"); ok {
		if v == "" {
			i.CorretorID = nil
		} else {
			cid, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return errors.New("Corretor inválido")
			}
			id := uint(cid)
			i.CorretorID = &id
		}
	}

	return nil
}

func formFloat(c *gin.Context, field string, current float64) (float64, error) {
	v, ok := c.GetPostForm(field)
	if !ok || v == "" {
		return current, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil || parsed < 0 {
		return current, errors.New("invalid")
	}
	return parsed, nil
}

func formInt(c *gin.Context, field string, current int) (int, error) {
	v, ok := c.GetPostForm(field)
	if !ok || v == "" {
		return current, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return current, errors.New("invalid")
	}
	return parsed, nil
}

func parseURLListField(c *gin.Context, field string) []string {
	v, ok := c.GetPostForm(field)
	if !ok || v == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(v), &urls); err != nil {
		return nil
	}
	return urls
}

func removeURLs(urls, removed []string) []string {
	if len(removed) == 0 {
		return urls
	}
	drop := make(map[string]bool, len(removed))
	for _, u := range removed {
		drop[u] = true
	}
	kept := make([]string, 0, len(urls))
	for _, u := range urls {
		if !drop[u] {
			kept = append(kept, u)
		}
	}
	return kept
}

func validTipo(v string) bool {
	switch models.ImovelTipo(v) {
	case models.ImovelTipoCasa, models.ImovelTipoApartamento, models.ImovelTipoTerreno,
		models.ImovelTipoComercial, models.ImovelTipoRural:
		return true
	}
	return false
}

func validStatus(v string) bool {
	switch models.ImovelStatus(v) {
	case models.ImovelStatusAtivo, models.ImovelStatusInativo,
		models.ImovelStatusVendido, models.ImovelStatusAlugado:
		return true
	}
	return false
}

// imovelFiltersFromQuery builds store filters from listing query parameters
func imovelFiltersFromQuery(c *gin.Context) database.ImovelFilters {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filters := database.ImovelFilters{
		Tipo:       c.Query("tipo"),
		Finalidade: c.Query("finalidade"),
		Cidade:     c.Query("cidade"),
		Bairro:     c.Query("bairro"),
		Status:     c.Query("status"),
		SortBy:     c.Query("ordenar"),
		Page:       page,
		Limit:      limit,
	}

	if v := c.Query("preco_min"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MinPreco = &parsed
		}
	}
	if v := c.Query("preco_max"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MaxPreco = &parsed
		}
	}
	if v := c.Query("quartos_min"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filters.MinQuartos = &parsed
		}
	}
	if v := c.Query("destaque"); v != "" {
		destaque := v == "true" || v == "1"
		filters.Destaque = &destaque
	}
	if v := c.Query("corretor_id"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			id := uint(parsed)
			filters.CorretorID = &id
		}
	}

	return filters
}

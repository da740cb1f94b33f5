package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"lppm-form-api/services"
	"lppm-form-api/utils"

	"github.com/gin-gonic/gin"
)

// AdminStore is the read/write surface of the admin panel.
type AdminStore interface {
	IsKnownTable(table string) bool
	ListTables() []string
	ListAll(ctx context.Context, table string) ([]map[string]interface{}, error)
	ListRows(ctx context.Context, table string, page, limit int, search string) (*services.RowPage, error)
	CountRows(ctx context.Context, table, search string) (int64, error)
	UpdateStatus(ctx context.Context, table string, id uint64, status string) (map[string]interface{}, error)
}

type AdminController struct {
	store AdminStore
}

func NewAdminController(store AdminStore) *AdminController {
	return &AdminController{store: store}
}

// TableGuard rejects requests whose :table (or :relation) parameter is not an
// owned relation. It runs before authentication so a bad name is always a 400.
func (ctl *AdminController) TableGuard(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ctl.store.IsKnownTable(c.Param(param)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Table tidak valid"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// PublicList returns every row of an owned relation, newest first.
func (ctl *AdminController) PublicList(c *gin.Context) {
	rows, err := ctl.store.ListAll(c.Request.Context(), c.Param("relation"))
	if err != nil {
		ctl.fail(c, err, "Gagal mengambil data")
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (ctl *AdminController) AllTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": ctl.store.ListTables()})
}

// List returns one page of table rows.
// Query: page (default 1), limit (default 20), search.
func (ctl *AdminController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageSize)))

	result, err := ctl.store.ListRows(c.Request.Context(), c.Param("table"), page, limit, c.Query("search"))
	if err != nil {
		ctl.fail(c, err, "Gagal mengambil data")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (ctl *AdminController) Count(c *gin.Context) {
	total, err := ctl.store.CountRows(c.Request.Context(), c.Param("table"), c.Query("search"))
	if err != nil {
		ctl.fail(c, err, "Gagal menghitung total data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus changes the review status of a submission and returns the row.
func (ctl *AdminController) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID tidak valid"})
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status wajib diisi"})
		return
	}

	row, err := ctl.store.UpdateStatus(c.Request.Context(), c.Param("table"), id, req.Status)
	if err != nil {
		ctl.fail(c, err, "Gagal update status")
		return
	}
	c.JSON(http.StatusOK, row)
}

func (ctl *AdminController) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrUnknownTable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Table tidak valid"})
	case errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Status tidak valid",
			"allowed": utils.CanonicalStatuses(),
		})
	case errors.Is(err, services.ErrRowNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Data tidak ditemukan"})
	default:
		log.Printf("admin %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

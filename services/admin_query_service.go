package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"lppm-form-api/config"
	"lppm-form-api/models"
	"lppm-form-api/utils"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// RowPage is one page of an admin listing.
type RowPage struct {
	Data    []map[string]interface{} `json:"data"`
	Page    int                      `json:"page"`
	Limit   int                      `json:"limit"`
	HasMore bool                     `json:"hasMore"`
}

// AdminQueryService backs the admin panel. Table names are only ever taken
// from the registry allow-list.
type AdminQueryService struct {
	db       *gorm.DB
	registry FormRegistry
}

func NewAdminQueryService(db *gorm.DB, registry FormRegistry) *AdminQueryService {
	if db == nil {
		db = config.DB
	}
	return &AdminQueryService{db: db, registry: registry}
}

// Authenticate checks username and password against the admin relation.
func (s *AdminQueryService) Authenticate(ctx context.Context, username, password string) (*models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var admin models.Admin
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load admin: %w", err)
	}

	if !utils.CheckPassword(admin.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &admin, nil
}

// ListTables returns the relations owned by this system.
func (s *AdminQueryService) ListTables() []string {
	return s.registry.Tables()
}

// IsKnownTable reports whether table is one of the relations owned by this system.
func (s *AdminQueryService) IsKnownTable(table string) bool {
	return s.registry.IsKnownTable(table)
}

// ListAll returns every row of table, newest first.
func (s *AdminQueryService) ListAll(ctx context.Context, table string) ([]map[string]interface{}, error) {
	if !s.registry.IsKnownTable(table) {
		return nil, ErrUnknownTable
	}
	rows := make([]map[string]interface{}, 0)
	if err := s.db.WithContext(ctx).Table(table).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return rows, nil
}

// NormalizePage clamps page and limit to the supported range.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	// keep the offset within a 32-bit range every dialect accepts
	if maxPage := math.MaxInt32 / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

func (s *AdminQueryService) ListRows(ctx context.Context, table string, page, limit int, search string) (*RowPage, error) {
	if !s.registry.IsKnownTable(table) {
		return nil, ErrUnknownTable
	}
	page, limit = NormalizePage(page, limit)

	rows := make([]map[string]interface{}, 0, limit)
	query := s.searchQuery(ctx, table, search)
	if err := query.Order("id DESC").Limit(limit).Offset((page - 1) * limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}

	return &RowPage{
		Data:    rows,
		Page:    page,
		Limit:   limit,
		HasMore: len(rows) == limit,
	}, nil
}

func (s *AdminQueryService) CountRows(ctx context.Context, table, search string) (int64, error) {
	if !s.registry.IsKnownTable(table) {
		return 0, ErrUnknownTable
	}
	var total int64
	if err := s.searchQuery(ctx, table, search).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return total, nil
}

// likeEscaper makes LIKE wildcards in a search term literal. The escape is '!'
// since a backslash in a MySQL string literal is consumed by the parser.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// searchQuery matches search case-insensitively against the table's
// searchable columns. Column names come from the registry only.
func (s *AdminQueryService) searchQuery(ctx context.Context, table, search string) *gorm.DB {
	query := s.db.WithContext(ctx).Table(table)
	search = strings.ToLower(strings.TrimSpace(search))
	cols := s.registry.SearchColumns(table)
	if search == "" || len(cols) == 0 {
		return query
	}

	term := "%" + likeEscaper.Replace(search) + "%"
	clauses := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols))
	for _, col := range cols {
		clauses = append(clauses, "LOWER("+col+") LIKE ? ESCAPE '!'")
		args = append(args, term)
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// UpdateStatus sets the review status of one submission and returns the row.
func (s *AdminQueryService) UpdateStatus(ctx context.Context, table string, id uint64, status string) (map[string]interface{}, error) {
	if !s.registry.IsSubmissionTable(table) {
		return nil, ErrUnknownTable
	}
	canonical, ok := utils.NormalizeStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	var row map[string]interface{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrRowNotFound
		}
		if err := tx.Table(table).Where("id = ?", id).Update("status", canonical).Error; err != nil {
			return err
		}
		row = map[string]interface{}{}
		return tx.Table(table).Where("id = ?", id).Take(&row).Error
	})
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update %s #%d: %w", table, id, err)
	}
	return row, nil
}

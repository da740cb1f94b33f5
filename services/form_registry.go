package services

import (
	"sort"

	"lppm-form-api/models"
)

// FormTypeConfig describes how one form type is validated, stored and rendered.
type FormTypeConfig struct {
	Key            string
	Table          string
	RequiredFields []string
	Mapper         FieldMapper
	Template       string
	EmailSubject   string
	NewRecord      func(models.FormFields) models.Submission
}

// FormRegistry is the read-only table of supported form types. The zero value
// has no form types.
type FormRegistry struct {
	forms    map[string]FormTypeConfig
	tables   []string
	searches map[string][]string
}

var submissionSearchColumns = []string{"email", "nama_ketua"}

// NewFormRegistry builds a registry over configs. The shared member relation is
// always part of the table allow-list.
func NewFormRegistry(configs ...FormTypeConfig) FormRegistry {
	r := FormRegistry{
		forms: make(map[string]FormTypeConfig, len(configs)),
		searches: map[string][]string{
			models.MemberTable: {"nama", "nidn"},
		},
	}
	for _, cfg := range configs {
		r.forms[cfg.Key] = cfg
		r.searches[cfg.Table] = submissionSearchColumns
	}
	for table := range r.searches {
		r.tables = append(r.tables, table)
	}
	sort.Strings(r.tables)
	return r
}

// DefaultFormRegistry returns the five letter types handled by the office.
func DefaultFormRegistry() FormRegistry {
	return NewFormRegistry(
		FormTypeConfig{
			Key:            "HalamanPengesahan",
			Table:          "halaman_pengesahan",
			RequiredFields: []string{"email", "nama_ketua", "nidn", "fakultas", "prodi", "judul", "tanggal"},
			Mapper:         MapHalamanPengesahan,
			Template:       "Halaman Pengesahan.docx",
			EmailSubject:   "Halaman Pengesahan",
			NewRecord:      models.NewHalamanPengesahan,
		},
		FormTypeConfig{
			Key:            "SuratTugasBuku",
			Table:          "surat_tugas_buku",
			RequiredFields: []string{"email", "nama_ketua", "nidn", "judul", "jenis_buku", "penerbit_buku", "tanggal"},
			Mapper:         MapSuratTugasBuku,
			Template:       "Surat Tugas Buku.docx",
			EmailSubject:   "Surat Tugas Buku",
			NewRecord:      models.NewSuratTugasBuku,
		},
		FormTypeConfig{
			Key:            "SuratTugasHKI",
			Table:          "surat_tugas_hki",
			RequiredFields: []string{"email", "nama_ketua", "nidn", "judul_ciptaan", "jenis_hki", "tanggal_permohonan", "jabatan"},
			Mapper:         MapSuratTugasHKI,
			Template:       "Surat Tugas HKI.docx",
			EmailSubject:   "Surat Tugas HKI",
			NewRecord:      models.NewSuratTugasHKI,
		},
		FormTypeConfig{
			Key:            "SuratTugasPenelitian",
			Table:          "surat_tugas_penelitian",
			RequiredFields: []string{"email", "nama_ketua", "nidn", "judul", "tanggal"},
			Mapper:         MapResearchTask,
			Template:       "Surat Tugas Penelitian.docx",
			EmailSubject:   "Surat Tugas Penelitian",
			NewRecord:      models.NewSuratTugasPenelitian,
		},
		FormTypeConfig{
			Key:            "SuratTugasPKM",
			Table:          "surat_tugas_pkm",
			RequiredFields: []string{"email", "nama_ketua", "nidn", "judul", "tanggal"},
			Mapper:         MapResearchTask,
			Template:       "Surat Tugas PKM.docx",
			EmailSubject:   "Surat Tugas PKM",
			NewRecord:      models.NewSuratTugasPKM,
		},
	)
}

func (r FormRegistry) Lookup(key string) (FormTypeConfig, bool) {
	cfg, ok := r.forms[key]
	return cfg, ok
}

// Keys returns the registered form type keys in sorted order.
func (r FormRegistry) Keys() []string {
	keys := make([]string, 0, len(r.forms))
	for k := range r.forms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Tables returns the relations this system owns, sorted.
func (r FormRegistry) Tables() []string {
	out := make([]string, len(r.tables))
	copy(out, r.tables)
	return out
}

func (r FormRegistry) IsKnownTable(table string) bool {
	_, ok := r.searches[table]
	return ok
}

// IsSubmissionTable reports whether table is one of the per-form relations.
func (r FormRegistry) IsSubmissionTable(table string) bool {
	return table != models.MemberTable && r.IsKnownTable(table)
}

// SearchColumns returns the columns a free-text search matches against.
func (r FormRegistry) SearchColumns(table string) []string {
	return r.searches[table]
}

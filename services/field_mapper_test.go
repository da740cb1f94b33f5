package services

import (
	"testing"

	"lppm-form-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMembers(t *testing.T) {
	raw := `[
		{"name": "Ani", "nidn": "1111", "idsintaAnggota": "6001"},
		{"nama": "Budi", "nidn": 2222},
		{"name": "Tanpa NIDN"},
		{"nidn": "3333"}
	]`

	got := ParseMembers(raw)
	require.Len(t, got, 2)
	assert.Equal(t, Member{Name: "Ani", NIDN: "1111", IDSinta: "6001"}, got[0])
	assert.Equal(t, Member{Name: "Budi", NIDN: "2222"}, got[1])
}

func TestParseMembersIsLenient(t *testing.T) {
	for _, raw := range []string{"", "   ", "not json", `{"name":"x"}`, "[1,2"} {
		got := ParseMembers(raw)
		assert.NotNil(t, got, raw)
		assert.Empty(t, got, raw)
	}
}

func TestMemberRowsNumbering(t *testing.T) {
	single := memberRows([]Member{{Name: "Ani", NIDN: "1"}})
	require.Len(t, single, 1)
	assert.Equal(t, "", single[0]["nomor"])

	many := memberRows([]Member{{Name: "Ani", NIDN: "1"}, {Name: "Budi", NIDN: "2"}})
	require.Len(t, many, 2)
	assert.Equal(t, "1", many[0]["nomor"])
	assert.Equal(t, "2", many[1]["nomor"])
	assert.Equal(t, "Budi", many[1]["name"])
}

func TestMappersTreatAbsentFieldsAsEmpty(t *testing.T) {
	mappers := map[string]FieldMapper{
		"HalamanPengesahan": MapHalamanPengesahan,
		"SuratTugasBuku":    MapSuratTugasBuku,
		"SuratTugasHKI":     MapSuratTugasHKI,
		"ResearchTask":      MapResearchTask,
	}
	for name, mapper := range mappers {
		t.Run(name, func(t *testing.T) {
			out := mapper(models.FormFields{}, nil)
			for key, v := range out {
				if key == MemberSection {
					assert.Empty(t, v)
					continue
				}
				assert.Equal(t, "", v, key)
			}
		})
	}
}

func TestMapperIsPure(t *testing.T) {
	fields := models.FormFields{
		"nama_ketua":        "Dr. Sari",
		"biaya_keseluruhan": "1500000",
		"tanggal":           "2024-03-05",
	}
	members := []Member{{Name: "Ani", NIDN: "1"}}

	first := MapHalamanPengesahan(fields, members)
	second := MapHalamanPengesahan(fields, members)
	assert.Equal(t, first, second)
	assert.Equal(t, "Dr. Sari", fields["nama_ketua"])
}

func TestMapHalamanPengesahan(t *testing.T) {
	out := MapHalamanPengesahan(models.FormFields{
		"nama":              "Dr. Sari",
		"jabatan":           "Lektor",
		"biaya_tahun":       "750000",
		"biaya_keseluruhan": "1.500.000",
		"tanggal":           "2024-03-05",
		"nomorHp":           "0812",
	}, nil)

	assert.Equal(t, "Dr. Sari", out["NamaKetua"])
	assert.Equal(t, "Lektor", out["JabatanFungsional"])
	assert.Equal(t, "Rp 750.000", out["BiayaTahun"])
	assert.Equal(t, "Rp 1.500.000", out["BiayaKeseluruhan"])
	assert.Equal(t, "satu juta lima ratus ribu rupiah", out["BiayaKeseluruhanTerbilang"])
	assert.Equal(t, "5 Maret 2024", out["Tanggal"])
	assert.Equal(t, "0812", out["NomorHP"])
}

func TestMapSuratTugasHKIAndResearch(t *testing.T) {
	hki := MapSuratTugasHKI(models.FormFields{
		"judul_ciptaan":      "Aplikasi Surat",
		"jenis_hki":          "Program Komputer",
		"tanggal_permohonan": "2024-01-10",
		"tanggal":            "bukan tanggal",
	}, nil)
	assert.Equal(t, "Aplikasi Surat", hki["judulCiptaan"])
	assert.Equal(t, "Program Komputer", hki["JenisHakCipta"])
	assert.Equal(t, "10 Januari 2024", hki["No_Tanggal_Permohonan"])
	assert.Equal(t, "", hki["Tanggal"])

	research := MapResearchTask(models.FormFields{"tanggal_pengajuan": "2023-11-01T08:00"}, nil)
	assert.Equal(t, "2023", research["TahunPengajuan"])
}

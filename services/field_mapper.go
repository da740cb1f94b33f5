package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"lppm-form-api/models"
	"lppm-form-api/utils"
)

// Member is a co-author listed on a submission.
type Member struct {
	Name    string `json:"name"`
	NIDN    string `json:"nidn"`
	IDSinta string `json:"idsintaAnggota,omitempty"`
}

// MemberSection is the template section that repeats once per member.
const MemberSection = "anggota"

// Placeholders maps template tag names to values. A value is a string, or a
// []map[string]string for a repeating section.
type Placeholders map[string]interface{}

// FieldMapper turns raw form fields and members into template placeholders.
// Implementations never fail: absent fields map to "".
type FieldMapper func(f models.FormFields, members []Member) Placeholders

// ParseMembers decodes the serialized member array of a submission. Malformed
// input yields an empty list and entries without both a name and an NIDN are
// dropped.
func ParseMembers(raw string) []Member {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []Member{}
	}

	var entries []map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return []Member{}
	}

	members := make([]Member, 0, len(entries))
	for _, e := range entries {
		m := Member{
			Name:    firstString(e, "name", "nama"),
			NIDN:    firstString(e, "nidn"),
			IDSinta: firstString(e, "idsintaAnggota", "idsinta_anggota", "idsintaanggota"),
		}
		if m.Name == "" || m.NIDN == "" {
			continue
		}
		members = append(members, m)
	}
	return members
}

func firstString(e map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		var s string
		switch v := e[k].(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case nil:
		default:
			s = fmt.Sprint(v)
		}
		if s = utils.SanitizeInput(s); s != "" {
			return s
		}
	}
	return ""
}

// memberRows is the repeating section payload. The sequence number is only
// shown when there is more than one member.
func memberRows(members []Member) []map[string]string {
	rows := make([]map[string]string, 0, len(members))
	for i, m := range members {
		nomor := ""
		if len(members) > 1 {
			nomor = strconv.Itoa(i + 1)
		}
		rows = append(rows, map[string]string{
			"name":  m.Name,
			"nidn":  m.NIDN,
			"nomor": nomor,
		})
	}
	return rows
}

func MapHalamanPengesahan(f models.FormFields, members []Member) Placeholders {
	return Placeholders{
		"Email":                     f.Get("email"),
		"Puslitbang":                f.Get("puslitbang"),
		"NamaKetua":                 f.First("nama_ketua", "nama"),
		"NIDN":                      f.Get("nidn"),
		"JabatanFungsional":         f.First("jabatan", "jabatan_fungsional"),
		"Fakultas":                  f.Get("fakultas"),
		"Prodi":                     f.Get("prodi"),
		"NomorHP":                   f.First("nomor_hp", "no_hp"),
		"Judul":                     f.Get("judul"),
		"NamaInstitusi":             f.Get("nama_institusi"),
		"AlamatInstitusi":           f.First("alamat", "alamat_institusi"),
		"PenanggungJawab":           f.Get("penanggung_jawab"),
		"TahunPelaksana":            f.Get("tahun_pelaksana"),
		"BiayaTahun":                utils.FormatRupiah(f.Get("biaya_tahun")),
		"BiayaKeseluruhan":          utils.FormatRupiah(f.Get("biaya_keseluruhan")),
		"BiayaKeseluruhanTerbilang": utils.Terbilang(f.Get("biaya_keseluruhan")),
		"Tanggal":                   utils.FormatIndonesianDateString(f.Get("tanggal")),
		"NamaDekan":                 f.Get("nama_dekan"),
		"NipDekan":                  f.Get("nip_dekan"),
		"NamaPeneliti":              f.Get("nama_peneliti"),
		"NipKetua":                  f.Get("nip_ketua"),
		MemberSection:               memberRows(members),
	}
}

func MapSuratTugasBuku(f models.FormFields, members []Member) Placeholders {
	return Placeholders{
		"NamaKetua":         f.Get("nama_ketua"),
		"NIDN":              f.Get("nidn"),
		"JabatanFungsional": f.First("jabatan", "jabatan_fungsional"),
		"Judul":             f.Get("judul"),
		"JenisBuku":         f.Get("jenis_buku"),
		"PenerbitBuku":      f.First("penerbit_buku", "penerbit"),
		"Tanggal":           utils.FormatIndonesianDateString(f.Get("tanggal")),
		MemberSection:       memberRows(members),
	}
}

func MapSuratTugasHKI(f models.FormFields, members []Member) Placeholders {
	return Placeholders{
		"NamaKetua":             f.Get("nama_ketua"),
		"NIDN":                  f.Get("nidn"),
		"JabatanFungsional":     f.First("jabatan", "jabatan_fungsional"),
		"judulCiptaan":          f.Get("judul_ciptaan"),
		"JenisHakCipta":         f.First("jenis_hki", "jenis_hak_cipta"),
		"No_Tanggal_Permohonan": utils.FormatIndonesianDateString(f.Get("tanggal_permohonan")),
		"Tanggal":               utils.FormatIndonesianDateString(f.Get("tanggal")),
		MemberSection:           memberRows(members),
	}
}

// MapResearchTask serves both the research and the community-service letter.
func MapResearchTask(f models.FormFields, members []Member) Placeholders {
	return Placeholders{
		"TahunPengajuan":    utils.YearOf(f.Get("tanggal_pengajuan")),
		"NamaKetua":         f.Get("nama_ketua"),
		"NIDN":              f.Get("nidn"),
		"JabatanFungsional": f.First("jabatan", "jabatan_fungsional"),
		"Fakultas":          f.Get("fakultas"),
		"Prodi":             f.Get("prodi"),
		"Judul":             f.Get("judul"),
		"Tanggal":           utils.FormatIndonesianDateString(f.Get("tanggal")),
		MemberSection:       memberRows(members),
	}
}

package models

import "time"

// Submission is implemented by every per-form-type relation.
type Submission interface {
	TableName() string
	RecordID() uint
}

// SubmissionBase holds the columns shared by every submission relation.
type SubmissionBase struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	Email     string    `gorm:"column:email" json:"email"`
	NamaKetua string    `gorm:"column:nama_ketua" json:"nama_ketua"`
	NIDN      string    `gorm:"column:nidn" json:"nidn"`
	Jabatan   string    `gorm:"column:jabatan" json:"jabatan"`
	Tanggal   string    `gorm:"column:tanggal" json:"tanggal"`
	FileURL   *string   `gorm:"column:file_url" json:"file_url"`
	PDFURL    *string   `gorm:"column:pdf_url" json:"pdf_url"`
	Status    string    `gorm:"column:status;size:32;default:belum_dibaca" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (b *SubmissionBase) RecordID() uint { return b.ID }

func newBase(f FormFields) SubmissionBase {
	return SubmissionBase{
		Email:     f.Get("email"),
		NamaKetua: f.First("nama_ketua", "nama"),
		NIDN:      f.Get("nidn"),
		Jabatan:   f.Get("jabatan"),
		Tanggal:   f.Get("tanggal"),
		Status:    StatusUnread,
	}
}

type HalamanPengesahan struct {
	SubmissionBase
	Puslitbang       string `gorm:"column:puslitbang" json:"puslitbang"`
	Fakultas         string `gorm:"column:fakultas" json:"fakultas"`
	Prodi            string `gorm:"column:prodi" json:"prodi"`
	NomorHP          string `gorm:"column:nomor_hp" json:"nomor_hp"`
	Judul            string `gorm:"column:judul" json:"judul"`
	NamaInstitusi    string `gorm:"column:nama_institusi" json:"nama_institusi"`
	Alamat           string `gorm:"column:alamat" json:"alamat"`
	PenanggungJawab  string `gorm:"column:penanggung_jawab" json:"penanggung_jawab"`
	TahunPelaksana   string `gorm:"column:tahun_pelaksana" json:"tahun_pelaksana"`
	BiayaTahun       string `gorm:"column:biaya_tahun" json:"biaya_tahun"`
	BiayaKeseluruhan string `gorm:"column:biaya_keseluruhan" json:"biaya_keseluruhan"`
	NamaDekan        string `gorm:"column:nama_dekan" json:"nama_dekan"`
	NipDekan         string `gorm:"column:nip_dekan" json:"nip_dekan"`
	NamaPeneliti     string `gorm:"column:nama_peneliti" json:"nama_peneliti"`
	NipKetua         string `gorm:"column:nip_ketua" json:"nip_ketua"`
}

func (HalamanPengesahan) TableName() string { return "halaman_pengesahan" }

func NewHalamanPengesahan(f FormFields) Submission {
	return &HalamanPengesahan{
		SubmissionBase:   newBase(f),
		Puslitbang:       f.Get("puslitbang"),
		Fakultas:         f.Get("fakultas"),
		Prodi:            f.Get("prodi"),
		NomorHP:          f.Get("nomor_hp"),
		Judul:            f.Get("judul"),
		NamaInstitusi:    f.Get("nama_institusi"),
		Alamat:           f.Get("alamat"),
		PenanggungJawab:  f.Get("penanggung_jawab"),
		TahunPelaksana:   f.Get("tahun_pelaksana"),
		BiayaTahun:       f.Get("biaya_tahun"),
		BiayaKeseluruhan: f.Get("biaya_keseluruhan"),
		NamaDekan:        f.Get("nama_dekan"),
		NipDekan:         f.Get("nip_dekan"),
		NamaPeneliti:     f.Get("nama_peneliti"),
		NipKetua:         f.Get("nip_ketua"),
	}
}

type SuratTugasBuku struct {
	SubmissionBase
	Judul        string `gorm:"column:judul" json:"judul"`
	JenisBuku    string `gorm:"column:jenis_buku" json:"jenis_buku"`
	PenerbitBuku string `gorm:"column:penerbit_buku" json:"penerbit_buku"`
}

func (SuratTugasBuku) TableName() string { return "surat_tugas_buku" }

func NewSuratTugasBuku(f FormFields) Submission {
	return &SuratTugasBuku{
		SubmissionBase: newBase(f),
		Judul:          f.Get("judul"),
		JenisBuku:      f.Get("jenis_buku"),
		PenerbitBuku:   f.Get("penerbit_buku"),
	}
}

type SuratTugasHKI struct {
	SubmissionBase
	JudulCiptaan      string `gorm:"column:judul_ciptaan" json:"judul_ciptaan"`
	JenisHKI          string `gorm:"column:jenis_hki" json:"jenis_hki"`
	TanggalPermohonan string `gorm:"column:tanggal_permohonan" json:"tanggal_permohonan"`
}

func (SuratTugasHKI) TableName() string { return "surat_tugas_hki" }

func NewSuratTugasHKI(f FormFields) Submission {
	return &SuratTugasHKI{
		SubmissionBase:    newBase(f),
		JudulCiptaan:      f.Get("judul_ciptaan"),
		JenisHKI:          f.Get("jenis_hki"),
		TanggalPermohonan: f.Get("tanggal_permohonan"),
	}
}

// ResearchTask carries the columns shared by research and community-service letters.
type ResearchTask struct {
	SubmissionBase
	Fakultas         string `gorm:"column:fakultas" json:"fakultas"`
	Prodi            string `gorm:"column:prodi" json:"prodi"`
	Judul            string `gorm:"column:judul" json:"judul"`
	TanggalPengajuan string `gorm:"column:tanggal_pengajuan" json:"tanggal_pengajuan"`
}

func newResearchTask(f FormFields) ResearchTask {
	return ResearchTask{
		SubmissionBase:   newBase(f),
		Fakultas:         f.Get("fakultas"),
		Prodi:            f.Get("prodi"),
		Judul:            f.Get("judul"),
		TanggalPengajuan: f.Get("tanggal_pengajuan"),
	}
}

type SuratTugasPenelitian struct {
	ResearchTask
}

func (SuratTugasPenelitian) TableName() string { return "surat_tugas_penelitian" }

func NewSuratTugasPenelitian(f FormFields) Submission {
	return &SuratTugasPenelitian{ResearchTask: newResearchTask(f)}
}

type SuratTugasPKM struct {
	ResearchTask
}

func (SuratTugasPKM) TableName() string { return "surat_tugas_pkm" }

func NewSuratTugasPKM(f FormFields) Submission {
	return &SuratTugasPKM{ResearchTask: newResearchTask(f)}
}

// AllModels lists every model for auto-migration.
func AllModels() []interface{} {
	return []interface{}{
		&Admin{},
		&AnggotaSurat{},
		&HalamanPengesahan{},
		&SuratTugasBuku{},
		&SuratTugasHKI{},
		&SuratTugasPenelitian{},
		&SuratTugasPKM{},
	}
}

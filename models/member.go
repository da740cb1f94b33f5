package models

import "time"

// MemberTable is the shared relation holding co-authors of every form type.
const MemberTable = "anggota_surat"

// AnggotaSurat is a member row, keyed to its parent by (SuratType, SuratID).
type AnggotaSurat struct {
	ID             uint      `gorm:"primaryKey;column:id" json:"id"`
	SuratType      string    `gorm:"column:surat_type;size:64;index:idx_anggota_parent" json:"surat_type"`
	SuratID        uint      `gorm:"column:surat_id;index:idx_anggota_parent" json:"surat_id"`
	Nama           string    `gorm:"column:nama" json:"nama"`
	NIDN           string    `gorm:"column:nidn" json:"nidn"`
	IDSintaAnggota string    `gorm:"column:idsintaanggota" json:"idsintaanggota"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (AnggotaSurat) TableName() string {
	return MemberTable
}

package models

// Review status of a submission. StatusUnread is assigned on insert; the other
// values are set by an admin.
const (
	StatusUnread   = "belum_dibaca"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

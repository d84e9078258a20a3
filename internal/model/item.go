package model

// Item is the master record per distinct inventory article. Name is unique
// among non-deleted items (case-insensitive), enforced in the service layer
// so trashed duplicates can coexist until restore/merge resolves them.
type Item struct {
	BaseModel
	Trash
	Name      string `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	Stock     int    `gorm:"not null;default:0" json:"stock" validate:"gte=0"`
	Unit      string `gorm:"type:varchar(20);not null" json:"unit" validate:"required"`
	Irregular bool   `gorm:"default:false" json:"irregular"` // monthly / non-routine stock

	DeletedBy string `json:"deleted_by,omitempty"`

	// Relasi
	Inbound  []InboundTransaction  `gorm:"foreignKey:ItemID" json:"inbound,omitempty"`
	Outbound []OutboundTransaction `gorm:"foreignKey:ItemID" json:"outbound,omitempty"`
	Loans    []Loan                `gorm:"foreignKey:ItemID" json:"loans,omitempty"`
}

package model

// Unit is a measurement unit in the reference catalog (Pcs, Box, ...).
// No lifecycle beyond create and delete-while-unused.
type Unit struct {
	Name string `gorm:"type:varchar(20);primary_key" json:"name" validate:"required"`
}

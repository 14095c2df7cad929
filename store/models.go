package store

import (
	"time"

	"gorm.io/gorm"
)

// Supplier row in supplier_details.
type Supplier struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"column:supplier_name;size:255;not null"`
	Code string `gorm:"column:supplier_code;size:64;uniqueIndex"`
	City string `gorm:"size:128"`
}

func (Supplier) TableName() string { return "supplier_details" }

type Plant struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"column:plant_name;size:255;not null"`
	Code string `gorm:"column:plant_code;size:64;uniqueIndex"`
	City string `gorm:"size:128"`
}

func (Plant) TableName() string { return "plants" }

type Material struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"column:material_name;size:255;not null"`
	Code string `gorm:"column:material_code;size:64;uniqueIndex"`
	Unit string `gorm:"size:32"`
}

func (Material) TableName() string { return "materials" }

type PurchaseOrg struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"column:org_name;size:255;not null"`
	Code string `gorm:"column:org_code;size:64;uniqueIndex"`
}

func (PurchaseOrg) TableName() string { return "purchase_organization" }

type PurchaseGroup struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"column:group_name;size:255;not null"`
	Code string `gorm:"column:group_code;size:64;uniqueIndex"`
}

func (PurchaseGroup) TableName() string { return "purchase_groups" }

type Currency struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Code string `gorm:"size:8;uniqueIndex;not null"`
	Name string `gorm:"size:128"`
}

func (Currency) TableName() string { return "currencies" }

// PurchaseOrder row in independent_purchase_orders. LineItems holds the
// serialized item list; totals are computed before insert and never updated.
type PurchaseOrder struct {
	ID                uint      `gorm:"primaryKey;autoIncrement"`
	Number            string    `gorm:"column:po_number;size:32;uniqueIndex;not null"`
	OrderDate         time.Time `gorm:"column:po_date"`
	ValidityDate      time.Time `gorm:"column:validity_date"`
	OrderType         string    `gorm:"column:po_type;size:64"`
	SupplierName      string    `gorm:"size:255"`
	SupplierCode      string    `gorm:"size:64"`
	Currency          string    `gorm:"size:8"`
	PlantName         string    `gorm:"size:255"`
	PlantCode         string    `gorm:"size:64"`
	PurchaseOrg       string    `gorm:"size:255"`
	PurchaseOrgCode   string    `gorm:"size:64"`
	PurchaseGroup     string    `gorm:"size:255"`
	PurchaseGroupCode string    `gorm:"size:64"`
	Project           string    `gorm:"size:255"`
	PaymentTerm       string    `gorm:"size:128"`
	IncoTerm          string    `gorm:"size:128"`
	Remarks           string    `gorm:"type:text"`
	LineItems         string    `gorm:"type:json"`
	TotalAmount       float64
	Status            string    `gorm:"size:32"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (PurchaseOrder) TableName() string { return "independent_purchase_orders" }

// Migrate creates or updates every table the agent reads and writes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Supplier{},
		&Plant{},
		&Material{},
		&PurchaseOrg{},
		&PurchaseGroup{},
		&Currency{},
		&PurchaseOrder{},
	)
}

// Package customer defines the tenant-directory view over the members
// collection: the same documents the registration pipeline mirrors, read as
// company records with contract and special-requirement details.
package customer

import (
	"strings"

	"github.com/daoteng/backoffice/internal/domain/card"
)

// Status is the tenancy state shown in the directory.
type Status string

const (
	StatusRenting     Status = "承租中"
	StatusNegotiating Status = "洽談中"
	StatusLeft        Status = "已退租"
)

// RequirementCategory classifies a special requirement entry.
type RequirementCategory string

const (
	RequirementAdmin    RequirementCategory = "行政"
	RequirementHardware RequirementCategory = "硬體"
	RequirementService  RequirementCategory = "服務"
)

// SpecialRequirement is one logged customer request.
type SpecialRequirement struct {
	Date     string              `json:"date"`
	Category RequirementCategory `json:"category"`
	Content  string              `json:"content"`
}

// Customer is the directory record built from a member document. Documents
// are schemaless; Normalize fills the defaults the directory expects.
type Customer struct {
	ID                  string               `json:"id"`
	CompanyName         string               `json:"companyName"`
	TaxID               string               `json:"taxId"`
	Boss                string               `json:"boss"`
	ContactPerson       string               `json:"contactPerson"`
	Phone               string               `json:"phone"`
	Building            string               `json:"building"`
	RoomNo              string               `json:"roomNo"`
	TaxType             card.TaxType         `json:"taxType"`
	RentExclTax         int64                `json:"actualRentExclTax"`
	RentInclTax         int64                `json:"actualRentInclTax"`
	ContractMonths      int                  `json:"contractMonths"`
	TotalAmount         int64                `json:"totalContractAmount"`
	Status              Status               `json:"status"`
	ContractStartDate   string               `json:"contractStartDate,omitempty"`
	ContractEndDate     string               `json:"contractEndDate,omitempty"`
	SpecialRequirements []SpecialRequirement `json:"specialRequirements"`
	UpdatedAt           string               `json:"updatedAt,omitempty"`
}

// Normalize fills the directory's display defaults for absent fields.
func (c *Customer) Normalize() {
	if c.CompanyName == "" {
		c.CompanyName = "未定義公司"
	}
	if c.TaxID == "" {
		c.TaxID = "無統編"
	}
	if c.Boss == "" {
		c.Boss = "未填寫"
	}
	if c.ContactPerson == "" {
		c.ContactPerson = "未填寫"
	}
	if c.Phone == "" {
		c.Phone = "無電話"
	}
	if c.Building == "" {
		c.Building = "四維館"
	}
	if c.RoomNo == "" {
		c.RoomNo = "未定"
	}
	if c.TaxType == "" {
		c.TaxType = card.TaxTypeTaxed
	}
	if c.Status == "" {
		c.Status = StatusRenting
	}
	if c.SpecialRequirements == nil {
		c.SpecialRequirements = []SpecialRequirement{}
	}
}

// Matches reports whether the record matches a directory search: substring
// of the company name (case-insensitive) or of the tax ID.
func (c *Customer) Matches(query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.CompanyName), strings.ToLower(query)) {
		return true
	}
	return strings.Contains(c.TaxID, query)
}

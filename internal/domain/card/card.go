// Package card defines the pipeline card: one tracked unit of sales or
// administrative work moving through ordered stages. A single Card type
// covers the lease, registration and event variants; unused fields stay
// empty and are omitted from the stored document.
package card

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for business dates on card documents.
const DateLayout = "2006-01-02"

// TaxType is the contract tax regime.
type TaxType string

const (
	// TaxTypeTaxed applies the statutory 5% business tax.
	TaxTypeTaxed TaxType = "應稅(5%)"
	// TaxTypeExempt applies no tax; rent incl. tax equals rent excl. tax.
	TaxTypeExempt TaxType = "免稅/未稅"
)

// CustomerTier classifies registration customers.
type CustomerTier string

const (
	TierStandard CustomerTier = "一般客戶"
	TierVIP      CustomerTier = "VIP客戶"
	TierGold     CustomerTier = "黃金客戶"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrNegativeRent  = errors.New("rent must not be negative")
)

// Card is a pipeline card document. Field names match the stored document
// keys; documents are schemaless, so absent fields unmarshal to zero values
// and are defaulted by Normalize.
type Card struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Customer string `json:"customer"`
	Owner    string `json:"owner"`
	Stage    string `json:"stage"`

	// Classification tags. Building applies to lease cards, EventType to
	// event cards, CustomerTier and ProductLines to registration cards.
	Building     string       `json:"building,omitempty"`
	EventType    string       `json:"eventType,omitempty"`
	CustomerTier CustomerTier `json:"customerTag,omitempty"`
	ProductLines []string     `json:"productLines,omitempty"`

	// Contact and record fields.
	RoomNo          string `json:"roomNo,omitempty"`
	CompanyTaxID    string `json:"companyTaxId,omitempty"`
	ContactPerson   string `json:"contactPerson,omitempty"`
	ContactPhone    string `json:"contactPhone,omitempty"`
	Email           string `json:"email,omitempty"`
	Branch          string `json:"branch,omitempty"`
	BillingCycle    string `json:"billingCycle,omitempty"`
	MailHandling    string `json:"mailHandling,omitempty"`
	Accountant      string `json:"accountant,omitempty"`
	ShippingAddress string `json:"shippingAddress,omitempty"`
	SpecialNotes    string `json:"specialNotes,omitempty"`
	HasAttachment   bool   `json:"hasAttachment,omitempty"`

	// Financial fields. RentInclTax, ContractMonths and TotalAmount are
	// derived and recomputed together; they are never edited directly.
	TaxType           TaxType `json:"taxType,omitempty"`
	MonthlyRent       int64   `json:"monthlyRent,omitempty"`
	RentExclTax       int64   `json:"actualRentExclTax"`
	RentInclTax       int64   `json:"actualRentInclTax"`
	ContractMonths    int     `json:"contractMonths"`
	TotalAmount       int64   `json:"totalContractAmount"`
	ContractStartDate string  `json:"contractStartDate,omitempty"`
	ContractEndDate   string  `json:"contractEndDate,omitempty"`

	// Event fields.
	Budget    int64  `json:"budget,omitempty"`
	EventDate string `json:"eventDate,omitempty"`

	// Timing. CreatedAt and StageStartedAt are business dates (DateLayout);
	// UpdatedAt is assigned by the store on every write. StageStartedAt is
	// reset exactly when a stage transition is committed, never otherwise.
	CreatedAt      string    `json:"createdAt"`
	StageStartedAt string    `json:"stageStartedAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Validate checks the fields an operator must supply.
func (c *Card) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("%w", ErrTitleRequired)
	}
	if c.RentExclTax < 0 || c.MonthlyRent < 0 || c.Budget < 0 {
		return fmt.Errorf("%w", ErrNegativeRent)
	}
	return nil
}

// Normalize fills defaults for fields a stored document may lack: stage
// falls back to firstStage, the customer tier to the base tier, tax type to
// taxed, and the business dates to today. Called on every document read.
func (c *Card) Normalize(firstStage string, now time.Time) {
	today := now.Format(DateLayout)
	if c.Stage == "" {
		c.Stage = firstStage
	}
	if c.CustomerTier == "" {
		c.CustomerTier = TierStandard
	}
	if c.TaxType == "" {
		c.TaxType = TaxTypeTaxed
	}
	if c.Owner == "" {
		c.Owner = "未定"
	}
	if c.CreatedAt == "" {
		c.CreatedAt = today
	}
	if c.StageStartedAt == "" {
		c.StageStartedAt = today
	}
}

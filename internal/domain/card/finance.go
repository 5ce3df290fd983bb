package card

import "time"

// taxedNumerator applies the 5% business tax with round-half-up, matching
// the operator's quoting convention.
const taxedNumerator = 105

// Recompute derives RentInclTax, ContractMonths and TotalAmount from their
// inputs. The three are always recomputed together so no derived field can
// go stale relative to the fields it depends on.
func (c *Card) Recompute() {
	c.RentInclTax = c.RentExclTax
	if c.TaxType == TaxTypeTaxed {
		c.RentInclTax = roundHalfUp(c.RentExclTax * taxedNumerator)
	}
	c.ContractMonths = MonthsBetween(c.ContractStartDate, c.ContractEndDate)
	c.TotalAmount = c.RentInclTax * int64(c.ContractMonths)
}

// roundHalfUp divides a value expressed in hundredths by 100, rounding .5 up.
func roundHalfUp(hundredths int64) int64 {
	return (hundredths + 50) / 100
}

// MonthsBetween counts contract months inclusively: January through December
// of the same year is 12. Returns 0 when either date is missing or
// unparseable, and never a negative count.
func MonthsBetween(start, end string) int {
	if start == "" || end == "" {
		return 0
	}
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return 0
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return 0
	}

	diff := (e.Year()-s.Year())*12 + int(e.Month()) - int(s.Month())
	if diff+1 < 0 {
		return 0
	}
	return diff + 1
}

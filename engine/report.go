package engine

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"contracthub/models"
)

// Window is an inclusive [Start, End] reporting period. Dates throughout the
// system are date-granular midnight values, so inclusive comparison at both
// ends is exact.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Overlaps reports whether a contract's life intersects the window:
// it must start on or before the window end, and either be open-ended or end
// on or after the window start.
func Overlaps(contract models.Contract, w Window) bool {
	if contract.StartDate.After(w.End) {
		return false
	}
	return contract.EndDate == nil || !contract.EndDate.Before(w.Start)
}

// FiscalYear returns the UK financial year containing the given date:
// April 1 to March 31, with April 1 itself opening the new year.
func FiscalYear(date time.Time) Window {
	year := date.Year()
	boundary := time.Date(year, time.April, 1, 0, 0, 0, 0, date.Location())
	if date.Before(boundary) {
		boundary = time.Date(year-1, time.April, 1, 0, 0, 0, 0, date.Location())
	}
	return Window{
		Start: boundary,
		End:   boundary.AddDate(1, 0, -1),
	}
}

// PreviousWindow returns the comparison period for a window: the prior
// fiscal year when the window is exactly a fiscal year, otherwise the
// immediately preceding window of equal length.
func PreviousWindow(w Window) Window {
	if fy := FiscalYear(w.Start); fy == w {
		return FiscalYear(w.Start.AddDate(-1, 0, 0))
	}
	shift := w.End.Sub(w.Start) + 24*time.Hour
	return Window{
		Start: w.Start.Add(-shift),
		End:   w.End.Add(-shift),
	}
}

// AuthorityGroup is the per-local-authority slice of a report.
type AuthorityGroup struct {
	LocalAuthorityID uint    `json:"local_authority_id,omitempty"`
	Name             string  `json:"name"`
	ContractCount    int     `json:"contract_count"`
	AnnualValue      float64 `json:"annual_value"`
	PaymentTotal     float64 `json:"payment_total"`
}

// PeriodComparison holds the prior window's headline figures and the deltas
// against the current window.
type PeriodComparison struct {
	Window        Window  `json:"window"`
	ContractCount int     `json:"contract_count"`
	PaymentTotal  float64 `json:"payment_total"`
	ContractDelta int     `json:"contract_delta"`
	PaymentDelta  float64 `json:"payment_delta"`
}

// ReportSummary is the period-bounded view of a reconciled, access-filtered,
// status-resolved contract list.
type ReportSummary struct {
	Window           Window           `json:"window"`
	ContractCount    int              `json:"contract_count"`
	ActiveCount      int              `json:"active_count"`
	NewCount         int              `json:"new_count"`
	EndingCount      int              `json:"ending_count"`
	TotalAnnualValue float64          `json:"total_annual_value"`
	PaymentTotal     float64          `json:"payment_total"`
	Authorities      []AuthorityGroup `json:"authorities"`
	Previous         PeriodComparison `json:"previous"`
}

// Aggregate produces the report for one window. Inputs are expected to be
// already reconciled and access-filtered; contracts outside the window are
// dropped by the overlap rule. Each overlapping contract is classified as
// new this period (start date in window) or ending this period (end date in
// window and it did not also start in it) - never both.
func Aggregate(contracts []models.Contract, payments []models.Payment, w Window, now time.Time) ReportSummary {
	summary := ReportSummary{Window: w}

	subset := make([]models.Contract, 0, len(contracts))
	keyByContract := make(map[uint]string)
	for _, contract := range contracts {
		if !Overlaps(contract, w) {
			continue
		}
		subset = append(subset, contract)
		keyByContract[contract.ID] = authorityKey(contract)
	}

	summary.ContractCount = len(subset)

	groups := make(map[string]*AuthorityGroup)
	for _, contract := range subset {
		if EffectiveContractStatus(contract, now) == models.ContractStatusActive {
			summary.ActiveCount++
		}

		startedInWindow := w.Contains(contract.StartDate)
		if startedInWindow {
			summary.NewCount++
		} else if contract.EndDate != nil && w.Contains(*contract.EndDate) {
			summary.EndingCount++
		}

		summary.TotalAnnualValue += contract.AnnualValue

		group := groups[authorityKey(contract)]
		if group == nil {
			group = &AuthorityGroup{
				LocalAuthorityID: contract.LocalAuthorityID,
				Name:             contract.LocalAuthority.Name,
			}
			groups[authorityKey(contract)] = group
		}
		group.ContractCount++
		group.AnnualValue += contract.AnnualValue
	}

	for _, payment := range payments {
		key, ok := keyByContract[payment.ContractID]
		if !ok || !w.Contains(payment.PaymentDate) {
			continue
		}
		summary.PaymentTotal += payment.Amount
		if group := groups[key]; group != nil {
			group.PaymentTotal += payment.Amount
		}
	}

	summary.Authorities = make([]AuthorityGroup, 0, len(groups))
	for _, group := range groups {
		summary.Authorities = append(summary.Authorities, *group)
	}
	sort.Slice(summary.Authorities, func(i, j int) bool {
		return strings.ToLower(summary.Authorities[i].Name) < strings.ToLower(summary.Authorities[j].Name)
	})

	previous := PreviousWindow(w)
	prevCount, prevPayments := periodTotals(contracts, payments, previous)
	summary.Previous = PeriodComparison{
		Window:        previous,
		ContractCount: prevCount,
		PaymentTotal:  prevPayments,
		ContractDelta: summary.ContractCount - prevCount,
		PaymentDelta:  summary.PaymentTotal - prevPayments,
	}

	return summary
}

// periodTotals computes the headline figures for a window without the full
// grouping pass.
func periodTotals(contracts []models.Contract, payments []models.Payment, w Window) (int, float64) {
	inWindow := make(map[uint]bool)
	count := 0
	for _, contract := range contracts {
		if Overlaps(contract, w) {
			count++
			inWindow[contract.ID] = true
		}
	}

	total := 0.0
	for _, payment := range payments {
		if inWindow[payment.ContractID] && w.Contains(payment.PaymentDate) {
			total += payment.Amount
		}
	}
	return count, total
}

// authorityKey groups contracts by local authority id when one is present,
// falling back to the lower-cased name so one authority does not fragment
// across name-casing variants on legacy rows.
func authorityKey(contract models.Contract) string {
	if contract.LocalAuthorityID != 0 {
		return "id:" + strconv.FormatUint(uint64(contract.LocalAuthorityID), 10)
	}
	return "name:" + strings.ToLower(strings.TrimSpace(contract.LocalAuthority.Name))
}

package engine

import (
	"time"

	"contracthub/models"
)

// Operators routinely forget to flip the stored status flag when a
// contract's natural end date arrives, so every list, report and dashboard
// works from the derived effective status rather than the raw column. The
// stored value stays independently queryable for issue detection.

// EffectiveStatus derives a contract's lifecycle status from the stored
// flag, the date bounds and the current time:
//   - stored inactive always wins (explicit operator override);
//   - an end date in the past forces inactive regardless of the flag
//     (auto-expiry);
//   - otherwise the stored status stands.
func EffectiveStatus(stored string, endDate *time.Time, now time.Time) string {
	if stored == models.ContractStatusInactive {
		return models.ContractStatusInactive
	}
	if endDate != nil && endDate.Before(now) {
		return models.ContractStatusInactive
	}
	return stored
}

// EffectiveContractStatus is EffectiveStatus applied to a contract row.
func EffectiveContractStatus(contract models.Contract, now time.Time) string {
	return EffectiveStatus(contract.Status, contract.EndDate, now)
}

// Status-issue codes surfaced by the audit report. These flag likely
// data-entry mistakes where the stored and effective statuses disagree.
const (
	IssueInactiveOpenEnded = "inactive_with_open_end" // stored inactive, end date nil or in the future
	IssueActivePastEnd     = "active_past_end"        // stored active/completed, end date already passed
)

// StatusIssue pairs a contract id with the mismatch found on it.
type StatusIssue struct {
	ContractID      uint   `json:"contract_id"`
	Title           string `json:"title"`
	Code            string `json:"code"`
	StoredStatus    string `json:"stored_status"`
	EffectiveStatus string `json:"effective_status"`
}

// DetectStatusIssue compares the stored and effective statuses of one
// contract and reports the mismatch, if any.
func DetectStatusIssue(contract models.Contract, now time.Time) (StatusIssue, bool) {
	effective := EffectiveContractStatus(contract, now)

	issue := StatusIssue{
		ContractID:      contract.ID,
		Title:           contract.Title,
		StoredStatus:    contract.Status,
		EffectiveStatus: effective,
	}

	switch {
	case contract.Status == models.ContractStatusInactive &&
		(contract.EndDate == nil || !contract.EndDate.Before(now)):
		issue.Code = IssueInactiveOpenEnded
		return issue, true
	case contract.Status != models.ContractStatusInactive &&
		effective == models.ContractStatusInactive:
		issue.Code = IssueActivePastEnd
		return issue, true
	}

	return StatusIssue{}, false
}

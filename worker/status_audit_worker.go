package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"contracthub/engine"
	"contracthub/models"
	"contracthub/utils"
)

// StatusAuditWorker periodically scans every organisation for contracts
// whose stored status disagrees with the derived effective status, so the
// mismatch count shows up in the logs before anyone opens the audit page.
// It only reports; fixing the stored flag stays a human decision.
type StatusAuditWorker struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewStatusAuditWorker(db *gorm.DB, logger *log.Logger) *StatusAuditWorker {
	return &StatusAuditWorker{
		DB:     db,
		Logger: logger,
	}
}

func (sw *StatusAuditWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	sw.Logger.Println("Status audit worker started")

	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	sw.auditAllOrganisations()

	for {
		select {
		case <-ctx.Done():
			sw.Logger.Println("Status audit worker shutting down...")
			return
		case <-ticker.C:
			sw.auditAllOrganisations()
		}
	}
}

func (sw *StatusAuditWorker) auditAllOrganisations() {
	var organisations []models.Organisation
	if err := sw.DB.Where("is_active = ?", true).Find(&organisations).Error; err != nil {
		sw.Logger.Printf("Error fetching organisations: %v", err)
		utils.LogError("status_audit", err, map[string]interface{}{
			"stage": "fetch_organisations",
		})
		return
	}

	now := time.Now()
	for _, organisation := range organisations {
		if err := sw.auditOrganisation(organisation, now); err != nil {
			sw.Logger.Printf("Error auditing organisation %d: %v", organisation.ID, err)
			utils.LogError("status_audit", err, map[string]interface{}{
				"organisation_id": organisation.ID,
			})
		}
	}
}

func (sw *StatusAuditWorker) auditOrganisation(organisation models.Organisation, now time.Time) error {
	var contracts []models.Contract
	if err := sw.DB.Where("organisation_id = ?", organisation.ID).Find(&contracts).Error; err != nil {
		return err
	}

	contracts = engine.Reconcile(contracts, engine.ContractReconcileOptions())

	counts := make(map[string]int)
	for _, contract := range contracts {
		if issue, ok := engine.DetectStatusIssue(contract, now); ok {
			counts[issue.Code]++
		}
	}

	if len(counts) == 0 {
		return nil
	}

	utils.LogEvent("status_audit", map[string]interface{}{
		"organisation_id":   organisation.ID,
		"contract_count":    len(contracts),
		"inactive_open_end": counts[engine.IssueInactiveOpenEnded],
		"active_past_end":   counts[engine.IssueActivePastEnd],
	})

	return nil
}

package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"contracthub/models"
)

func reportContract(id uint, la string, laID uint, start time.Time, end *time.Time) models.Contract {
	return models.Contract{
		Model:            gorm.Model{ID: id},
		OrganisationID:   1,
		LocalAuthorityID: laID,
		LocalAuthority:   models.LocalAuthority{Name: la},
		Title:            "Contract",
		StartDate:        start,
		EndDate:          end,
		Status:           models.ContractStatusActive,
		AnnualValue:      1000,
	}
}

func TestFiscalYear(t *testing.T) {
	t.Run("March 31 belongs to the closing year", func(t *testing.T) {
		fy := FiscalYear(date(2024, 3, 31))

		assert.Equal(t, date(2023, 4, 1), fy.Start)
		assert.Equal(t, date(2024, 3, 31), fy.End)
	})

	t.Run("April 1 opens the new year", func(t *testing.T) {
		fy := FiscalYear(date(2024, 4, 1))

		assert.Equal(t, date(2024, 4, 1), fy.Start)
		assert.Equal(t, date(2025, 3, 31), fy.End)
	})

	t.Run("mid-year dates resolve to the most recent April 1", func(t *testing.T) {
		fy := FiscalYear(date(2024, 11, 5))

		assert.Equal(t, date(2024, 4, 1), fy.Start)
	})
}

func TestPreviousWindow(t *testing.T) {
	t.Run("fiscal year windows step back a whole fiscal year", func(t *testing.T) {
		current := FiscalYear(date(2024, 6, 1))

		previous := PreviousWindow(current)

		assert.Equal(t, date(2023, 4, 1), previous.Start)
		assert.Equal(t, date(2024, 3, 31), previous.End)
	})

	t.Run("arbitrary windows step back their own length", func(t *testing.T) {
		current := Window{Start: date(2024, 2, 1), End: date(2024, 2, 28)}

		previous := PreviousWindow(current)

		assert.Equal(t, date(2024, 1, 4), previous.Start)
		assert.Equal(t, date(2024, 1, 31), previous.End)
	})
}

func TestOverlaps(t *testing.T) {
	contract := reportContract(1, "Kent", 1, date(2023, 6, 1), datePtr(2023, 12, 31))

	t.Run("partial overlap counts", func(t *testing.T) {
		assert.True(t, Overlaps(contract, Window{Start: date(2023, 1, 1), End: date(2023, 7, 1)}))
	})

	t.Run("disjoint later window does not", func(t *testing.T) {
		assert.False(t, Overlaps(contract, Window{Start: date(2024, 1, 1), End: date(2024, 12, 31)}))
	})

	t.Run("open-ended contracts overlap every later window", func(t *testing.T) {
		open := reportContract(2, "Kent", 1, date(2020, 1, 1), nil)
		assert.True(t, Overlaps(open, Window{Start: date(2030, 1, 1), End: date(2030, 12, 31)}))
	})

	t.Run("boundary dates are inclusive", func(t *testing.T) {
		assert.True(t, Overlaps(contract, Window{Start: date(2023, 12, 31), End: date(2024, 6, 1)}))
		assert.True(t, Overlaps(contract, Window{Start: date(2023, 1, 1), End: date(2023, 6, 1)}))
	})
}

func TestAggregate(t *testing.T) {
	now := date(2023, 10, 1)
	window := Window{Start: date(2023, 4, 1), End: date(2024, 3, 31)}

	contracts := []models.Contract{
		// Started before the window, ends inside it: "ending this period".
		reportContract(1, "Kent", 1, date(2022, 6, 1), datePtr(2023, 9, 30)),
		// Starts inside the window: "new this period".
		reportContract(2, "Kent", 1, date(2023, 5, 1), nil),
		// Starts and ends inside the window: new, not ending.
		reportContract(3, "Surrey", 2, date(2023, 6, 1), datePtr(2024, 1, 31)),
		// Entirely before the window: excluded.
		reportContract(4, "Surrey", 2, date(2021, 1, 1), datePtr(2022, 1, 1)),
	}

	payments := []models.Payment{
		{ContractID: 1, Amount: 500, PaymentDate: date(2023, 5, 1)},
		{ContractID: 2, Amount: 750, PaymentDate: date(2023, 6, 1)},
		{ContractID: 2, Amount: 300, PaymentDate: date(2022, 6, 1)}, // outside window
		{ContractID: 4, Amount: 900, PaymentDate: date(2023, 6, 1)}, // contract not in window
	}

	summary := Aggregate(contracts, payments, window, now)

	t.Run("overlap subset and headline totals", func(t *testing.T) {
		assert.Equal(t, 3, summary.ContractCount)
		assert.Equal(t, float64(3000), summary.TotalAnnualValue)
		assert.Equal(t, float64(1250), summary.PaymentTotal)
	})

	t.Run("new and ending classification is exclusive", func(t *testing.T) {
		assert.Equal(t, 2, summary.NewCount)
		assert.Equal(t, 1, summary.EndingCount)
	})

	t.Run("effective status drives the active count", func(t *testing.T) {
		// Contract 1 ended the day before "now", so it counts as inactive
		// even though its stored flag still says active.
		assert.Equal(t, 2, summary.ActiveCount)
	})

	t.Run("grouping by local authority id", func(t *testing.T) {
		require.Len(t, summary.Authorities, 2)
		assert.Equal(t, "Kent", summary.Authorities[0].Name)
		assert.Equal(t, 2, summary.Authorities[0].ContractCount)
		assert.Equal(t, float64(1250), summary.Authorities[0].PaymentTotal)
		assert.Equal(t, "Surrey", summary.Authorities[1].Name)
		assert.Equal(t, 1, summary.Authorities[1].ContractCount)
	})

	t.Run("period comparison uses the prior fiscal year", func(t *testing.T) {
		assert.Equal(t, date(2022, 4, 1), summary.Previous.Window.Start)
		assert.Equal(t, date(2023, 3, 31), summary.Previous.Window.End)
		// Only contract 1 overlaps the prior year; contract 4 ended before
		// it began.
		assert.Equal(t, 1, summary.Previous.ContractCount)
		assert.Equal(t, 2, summary.Previous.ContractDelta)
	})
}

func TestAggregate_NameFallbackGrouping(t *testing.T) {
	// Legacy rows with no authority id group by lower-cased name so one
	// authority does not fragment across casing variants.
	contracts := []models.Contract{
		reportContract(1, "Kent County Council", 0, date(2023, 5, 1), nil),
		reportContract(2, "kent county council", 0, date(2023, 6, 1), nil),
	}

	summary := Aggregate(contracts, nil,
		Window{Start: date(2023, 4, 1), End: date(2024, 3, 31)}, date(2023, 10, 1))

	require.Len(t, summary.Authorities, 1)
	assert.Equal(t, 2, summary.Authorities[0].ContractCount)
}

package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"contracthub/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func strPtr(s string) *string {
	return &s
}

func reconContract(id uint, number, title string, start time.Time) models.Contract {
	return models.Contract{
		Model:          gorm.Model{ID: id},
		OrganisationID: 1,
		ContractNumber: strPtr(number),
		Title:          title,
		StartDate:      start,
	}
}

func TestReconcile_Contracts(t *testing.T) {
	opts := ContractReconcileOptions()

	t.Run("drops repeated primary keys from join fan-out", func(t *testing.T) {
		a := reconContract(1, "CN-1", "Homecare North", date(2023, 1, 1))
		rows := []models.Contract{a, a, a}

		result := Reconcile(rows, opts)

		require.Len(t, result, 1)
		assert.Equal(t, uint(1), result[0].ID)
	})

	t.Run("collapses distinct ids with identical natural keys", func(t *testing.T) {
		first := reconContract(1, "CN-1", "Homecare North", date(2023, 1, 1))
		shadow := reconContract(2, "CN-1", "Homecare North", date(2023, 1, 1))
		rows := []models.Contract{first, shadow}

		result := Reconcile(rows, opts)

		require.Len(t, result, 1)
		assert.Equal(t, uint(1), result[0].ID, "first occurrence wins")
	})

	t.Run("keeps records that differ in any key field", func(t *testing.T) {
		rows := []models.Contract{
			reconContract(1, "CN-1", "Homecare North", date(2023, 1, 1)),
			reconContract(2, "CN-1", "Homecare North", date(2023, 2, 1)),
			reconContract(3, "CN-2", "Homecare North", date(2023, 1, 1)),
		}

		result := Reconcile(rows, opts)

		assert.Len(t, result, 3)
	})

	t.Run("preserves first-seen order", func(t *testing.T) {
		rows := []models.Contract{
			reconContract(3, "CN-3", "C", date(2023, 1, 1)),
			reconContract(1, "CN-1", "A", date(2023, 1, 1)),
			reconContract(3, "CN-3", "C", date(2023, 1, 1)),
			reconContract(2, "CN-2", "B", date(2023, 1, 1)),
		}

		result := Reconcile(rows, opts)

		require.Len(t, result, 3)
		assert.Equal(t, uint(3), result[0].ID)
		assert.Equal(t, uint(1), result[1].ID)
		assert.Equal(t, uint(2), result[2].ID)
	})

	t.Run("is idempotent", func(t *testing.T) {
		rows := []models.Contract{
			reconContract(1, "CN-1", "A", date(2023, 1, 1)),
			reconContract(2, "CN-1", "A", date(2023, 1, 1)),
			reconContract(3, "CN-2", "B", date(2023, 1, 1)),
			reconContract(3, "CN-2", "B", date(2023, 1, 1)),
		}

		once := Reconcile(rows, opts)
		twice := Reconcile(once, opts)

		assert.Equal(t, once, twice)
	})

	t.Run("fingerprint-dropped record does not reserve its id", func(t *testing.T) {
		// The second row collapses into the first by natural key, so its id
		// must not count as seen: the third row reuses id 2 with a genuinely
		// different natural key and has to survive.
		rows := []models.Contract{
			reconContract(1, "CN-1", "A", date(2023, 1, 1)),
			reconContract(2, "CN-1", "A", date(2023, 1, 1)),
			reconContract(2, "CN-9", "Z", date(2023, 1, 1)),
		}

		result := Reconcile(rows, opts)

		require.Len(t, result, 2)
		assert.Equal(t, uint(1), result[0].ID)
		assert.Equal(t, uint(2), result[1].ID)
	})

	t.Run("all-empty natural keys collapse into one record", func(t *testing.T) {
		// Known limitation, accepted: an empty tuple is still a valid,
		// comparable fingerprint.
		rows := []models.Contract{
			{OrganisationID: 1, StartDate: time.Time{}},
			{OrganisationID: 1, StartDate: time.Time{}},
		}

		result := Reconcile(rows, opts)

		assert.Len(t, result, 1)
	})

	t.Run("length-prefixed fields do not smear across boundaries", func(t *testing.T) {
		rows := []models.Contract{
			reconContract(1, "ab", "c", date(2023, 1, 1)),
			reconContract(2, "a", "bc", date(2023, 1, 1)),
		}

		result := Reconcile(rows, opts)

		assert.Len(t, result, 2)
	})
}

func TestReconcile_Payments(t *testing.T) {
	payment := func(id uint, title string, amount float64, method string) models.Payment {
		return models.Payment{
			Model:       gorm.Model{ID: id},
			ContractID:  1,
			Amount:      amount,
			PaymentDate: date(2023, 5, 10),
			Contract:    models.Contract{Title: title},
			PaymentMethod: &models.PaymentMethod{
				Name: method,
			},
		}
	}

	rows := []models.Payment{
		payment(1, "Homecare North", 1250.00, "BACS"),
		payment(2, "Homecare North", 1250.00, "BACS"), // duplicate by natural key
		payment(3, "Homecare North", 1250.00, "Cheque"),
	}

	result := Reconcile(rows, PaymentReconcileOptions())

	require.Len(t, result, 2)
	assert.Equal(t, uint(1), result[0].ID)
	assert.Equal(t, uint(3), result[1].ID)
}

func TestReconcile_Rates(t *testing.T) {
	rate := func(id uint, name, unit string, amount float64, from time.Time) models.Rate {
		return models.Rate{
			Model:         gorm.Model{ID: id},
			ContractID:    1,
			Name:          name,
			Unit:          unit,
			Amount:        amount,
			EffectiveFrom: from,
		}
	}

	rows := []models.Rate{
		rate(1, "Standard hourly", "hour", 22.50, date(2023, 4, 1)),
		rate(2, "Standard hourly", "hour", 22.50, date(2023, 4, 1)), // duplicate by natural key
		rate(3, "Standard hourly", "week", 22.50, date(2023, 4, 1)),
		rate(4, "Standard hourly", "hour", 23.10, date(2024, 4, 1)),
	}

	result := Reconcile(rows, RateReconcileOptions())

	require.Len(t, result, 3)
	assert.Equal(t, uint(1), result[0].ID)
	assert.Equal(t, uint(3), result[1].ID)
	assert.Equal(t, uint(4), result[2].ID)
}

func TestReconcile_People(t *testing.T) {
	person := func(id uint, first, last string, dob *time.Time) models.Person {
		return models.Person{
			Model:       gorm.Model{ID: id},
			FirstName:   first,
			LastName:    last,
			DateOfBirth: dob,
		}
	}

	rows := []models.Person{
		person(1, "Ada", "Lovelace", datePtr(1990, 12, 10)),
		person(2, "Ada", "Lovelace", datePtr(1990, 12, 10)),
		person(3, "Ada", "Lovelace", nil), // missing DOB is a different tuple
	}

	result := Reconcile(rows, PersonReconcileOptions())

	assert.Len(t, result, 2)
}

package engine

import (
	"fmt"
	"hash/fnv"
	"time"

	"contracthub/models"
)

// Joins between contracts, teams, local authorities and payments fan out and
// return the same underlying entity more than once. Reconcile collapses such
// lists back to one canonical row per entity: first by primary key, then by
// a fingerprint over the record's natural-key fields. Two rows with
// different ids but identical natural keys are treated as one logical entity
// and only the first survives. This is deliberate tolerance for upstream
// join duplication, not value equality.
//
// The same parametrised pass serves contracts, payments, rates and people;
// the per-page copies it replaces had drifted apart.

// ReconcileOptions configures the identity and natural-key extraction for a
// record type.
type ReconcileOptions[T any] struct {
	// ID returns the primary key and whether the record has one.
	ID func(T) (uint, bool)
	// Key returns the natural-key tuple used for fingerprinting. Empty
	// fields still take part: an all-empty tuple is a valid fingerprint, so
	// repeated fully-empty records collapse into one. Known limitation.
	Key func(T) []string
}

// Reconcile deduplicates records in input order, keeping the first
// occurrence of every id and every fingerprint. The output preserves the
// relative order of first occurrences, and reconciling twice yields the
// same list.
func Reconcile[T any](records []T, opts ReconcileOptions[T]) []T {
	seenIDs := make(map[uint]struct{}, len(records))
	seenKeys := make(map[uint64]struct{}, len(records))
	result := make([]T, 0, len(records))

	for _, record := range records {
		var id uint
		hasID := false
		if opts.ID != nil {
			if v, ok := opts.ID(record); ok {
				if _, dup := seenIDs[v]; dup {
					continue
				}
				id, hasID = v, true
			}
		}

		fp := fingerprint(opts.Key(record))
		if _, dup := seenKeys[fp]; dup {
			continue
		}

		// Only kept records mark their id and fingerprint as seen; a record
		// dropped here by fingerprint must not reserve its id against a later
		// record with a different natural key.
		if hasID {
			seenIDs[id] = struct{}{}
		}
		seenKeys[fp] = struct{}{}

		result = append(result, record)
	}

	return result
}

// fingerprint hashes a natural-key tuple. Fields are length-prefixed so
// ("ab","c") and ("a","bc") cannot collide.
func fingerprint(fields []string) uint64 {
	h := fnv.New64a()
	for _, field := range fields {
		fmt.Fprintf(h, "%d:", len(field))
		h.Write([]byte(field))
	}
	return h.Sum64()
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func optionalDateKey(t *time.Time) string {
	if t == nil {
		return ""
	}
	return dateKey(*t)
}

// ContractReconcileOptions is the canonical natural key for contract rows:
// contract number, title and date bounds.
func ContractReconcileOptions() ReconcileOptions[models.Contract] {
	return ReconcileOptions[models.Contract]{
		ID: func(c models.Contract) (uint, bool) { return c.ID, c.ID != 0 },
		Key: func(c models.Contract) []string {
			number := ""
			if c.ContractNumber != nil {
				number = *c.ContractNumber
			}
			return []string{number, c.Title, dateKey(c.StartDate), optionalDateKey(c.EndDate)}
		},
	}
}

// PaymentReconcileOptions keys payment rows on the owning contract's title,
// amount, date and method name. Rows are expected pre-joined with display
// names; missing joins contribute empty fields.
func PaymentReconcileOptions() ReconcileOptions[models.Payment] {
	return ReconcileOptions[models.Payment]{
		ID: func(p models.Payment) (uint, bool) { return p.ID, p.ID != 0 },
		Key: func(p models.Payment) []string {
			method := ""
			if p.PaymentMethod != nil {
				method = p.PaymentMethod.Name
			}
			return []string{
				p.Contract.Title,
				fmt.Sprintf("%.2f", p.Amount),
				dateKey(p.PaymentDate),
				method,
			}
		},
	}
}

// RateReconcileOptions keys rate rows on name, unit, amount and start date.
func RateReconcileOptions() ReconcileOptions[models.Rate] {
	return ReconcileOptions[models.Rate]{
		ID: func(r models.Rate) (uint, bool) { return r.ID, r.ID != 0 },
		Key: func(r models.Rate) []string {
			return []string{r.Name, r.Unit, fmt.Sprintf("%.2f", r.Amount), dateKey(r.EffectiveFrom)}
		},
	}
}

// PersonReconcileOptions keys people on name and date of birth.
func PersonReconcileOptions() ReconcileOptions[models.Person] {
	return ReconcileOptions[models.Person]{
		ID: func(p models.Person) (uint, bool) { return p.ID, p.ID != 0 },
		Key: func(p models.Person) []string {
			return []string{p.FirstName, p.LastName, optionalDateKey(p.DateOfBirth)}
		},
	}
}

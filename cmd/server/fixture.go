package main

import (
	"github.com/shopspring/decimal"

	memorystore "github.com/stinkypony1968-a11y/physician-dossier/internal/payments/store/memory"
)

// developmentFixture seeds the in-memory store with a small disclosure set
// so the service answers real queries without a database. The rows cover a
// payments-resolvable neurosurgeon, a prior program year, and an unrelated
// physician that lookups must not leak into.
func developmentFixture() []memorystore.Record {
	return []memorystore.Record{
		{
			ExternalID:   "1396882474",
			FirstName:    "EVAN",
			LastName:     "JOYCE",
			Specialty:    "Neurological Surgery",
			City:         "BOISE",
			State:        "ID",
			Organization: "Penumbra Inc",
			Amount:       decimal.RequireFromString("1250.50"),
			Count:        4,
			ProgramYear:  2023,
		},
		{
			ExternalID:   "1396882474",
			FirstName:    "EVAN",
			LastName:     "JOYCE",
			Specialty:    "Neurological Surgery",
			City:         "BOISE",
			State:        "ID",
			Organization: "J&J/Cerenovus",
			Amount:       decimal.RequireFromString("310.00"),
			Count:        2,
			ProgramYear:  2023,
		},
		{
			ExternalID:   "1396882474",
			FirstName:    "EVAN",
			LastName:     "JOYCE",
			Specialty:    "Neurological Surgery",
			City:         "SALT LAKE CITY",
			State:        "UT",
			Organization: "Stryker Corp",
			Amount:       decimal.RequireFromString("89.27"),
			Count:        1,
			ProgramYear:  2022,
		},
		{
			ExternalID:   "1740283055",
			FirstName:    "MARGARET",
			LastName:     "JOYCE",
			Specialty:    "Family Medicine",
			City:         "TAMPA",
			State:        "FL",
			Organization: "Pfizer Inc",
			Amount:       decimal.RequireFromString("45.00"),
			Count:        1,
			ProgramYear:  2023,
		},
	}
}

// Package memory is an in-memory payments store for local development and
// tests. It mirrors the PostgreSQL store's ordering so the two are
// interchangeable behind the store interfaces.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/payments"
)

// Record is one stored disclosure row.
type Record struct {
	ExternalID   string
	FirstName    string
	LastName     string
	Specialty    string
	City         string
	State        string
	Organization string
	Amount       decimal.Decimal
	Count        int
	ProgramYear  int
}

type Store struct {
	mu   sync.RWMutex
	rows []Record
}

func New(rows ...Record) *Store {
	s := &Store{}
	s.Add(rows...)
	return s
}

// Add appends rows. Safe for concurrent use with readers.
func (s *Store) Add(rows ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
}

func (s *Store) LineItemsByIdentifier(_ context.Context, externalID string) ([]payments.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lineItems(s.matched(func(r Record) bool {
		return r.ExternalID == externalID
	})), nil
}

func (s *Store) LineItemsByName(_ context.Context, first, last string) ([]payments.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lineItems(s.matched(func(r Record) bool {
		return strings.EqualFold(r.FirstName, first) && strings.EqualFold(r.LastName, last)
	})), nil
}

func (s *Store) LatestProviderFor(_ context.Context, first, last string) (identity.ProviderRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matched(func(r Record) bool {
		return strings.EqualFold(r.FirstName, first) && strings.EqualFold(r.LastName, last)
	})
	if len(matched) == 0 {
		return identity.ProviderRecord{}, false, nil
	}

	latest := matched[0]
	return identity.ProviderRecord{
		ExternalID: latest.ExternalID,
		FirstName:  latest.FirstName,
		LastName:   latest.LastName,
		Specialty:  latest.Specialty,
		City:       latest.City,
		State:      latest.State,
	}, true, nil
}

func (s *Store) Health(context.Context) error {
	return nil
}

// matched copies matching rows ordered by program year then amount descending,
// the order the SQL store's queries return.
func (s *Store) matched(keep func(Record) bool) []Record {
	var matched []Record
	for _, row := range s.rows {
		if keep(row) {
			matched = append(matched, row)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].ProgramYear != matched[j].ProgramYear {
			return matched[i].ProgramYear > matched[j].ProgramYear
		}
		return matched[i].Amount.GreaterThan(matched[j].Amount)
	})
	return matched
}

func lineItems(rows []Record) []payments.LineItem {
	items := make([]payments.LineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, payments.LineItem{
			Organization: row.Organization,
			Amount:       row.Amount,
			Count:        row.Count,
			ProgramYear:  row.ProgramYear,
		})
	}
	return items
}

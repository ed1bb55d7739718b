package catalog

import (
	"sort"
)

// Transform groups the catalog mapping into categories.
//
// Entries are ordered by (categoryOrderNumber, orderNumber, id) and grouped
// by category name in that order; a category takes its order number from
// its first entry. An empty mapping is not an error: the result is marked
// Partial and carries no categories.
func Transform(yearModels []any, mapping map[string]any) (*TransformResult, error) {
	if yearModels == nil {
		yearModels = []any{}
	}

	if len(mapping) == 0 {
		return &TransformResult{
			Document: Document{YearModels: yearModels, Categories: []Category{}},
			Partial:  true,
		}, nil
	}

	entries, err := DecodeEntries(mapping)
	if err != nil {
		return nil, err
	}

	SortEntries(entries)

	return &TransformResult{
		Document: Document{YearModels: yearModels, Categories: Group(entries)},
		Entries:  len(entries),
	}, nil
}

// SortEntries orders entries by category order, then entry order. Ties fall
// back to ascending id so the result does not depend on map iteration.
func SortEntries(entries []RawEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.CategoryOrderNumber != b.CategoryOrderNumber {
			return a.CategoryOrderNumber < b.CategoryOrderNumber
		}
		if a.OrderNumber != b.OrderNumber {
			return a.OrderNumber < b.OrderNumber
		}
		return a.ID < b.ID
	})
}

// Group builds categories from sorted entries, keeping entry order within
// each category, then orders categories by their order number.
func Group(sorted []RawEntry) []Category {
	categories := []Category{}
	index := map[string]int{}

	for _, e := range sorted {
		i, ok := index[e.CategoryName]
		if !ok {
			i = len(categories)
			index[e.CategoryName] = i
			categories = append(categories, Category{
				Name:        e.CategoryName,
				OrderNumber: e.CategoryOrderNumber,
				Scenarios:   []Scenario{},
			})
		}

		categories[i].Scenarios = append(categories[i].Scenarios, NewScenario(e))
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].OrderNumber < categories[j].OrderNumber
	})

	return categories
}

func NewScenario(e RawEntry) Scenario {
	return Scenario{
		ID:          e.ID,
		Name:        e.Name,
		Notes:       e.Notes,
		OrderNumber: e.OrderNumber,
		SupportedDevices: SupportedDevices{
			Knobs:   orEmpty(e.KnobAvailability),
			Buttons: orEmpty(e.ButtonsAvailability),
			Stalks:  orEmpty(e.StalksAvailability),
		},
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

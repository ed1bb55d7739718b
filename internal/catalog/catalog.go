// Package catalog holds the feature catalog document and the transformation
// that groups raw entries into ordered categories of scenarios.
package catalog

// RawEntry is one numeric-keyed record of the source mapping.
type RawEntry struct {
	ID                  int      `json:"-"`
	Name                string   `json:"name"`
	Notes               string   `json:"notes"`
	CategoryName        string   `json:"categoryName"`
	CategoryOrderNumber int      `json:"categoryOrderNumber"`
	OrderNumber         int      `json:"orderNumber"`
	KnobAvailability    []string `json:"knobAvailability"`
	ButtonsAvailability []string `json:"buttonsAvailability"`
	StalksAvailability  []string `json:"stalksAvailability"`
}

// SupportedDevices lists where a scenario can be triggered. All three lists
// are always present in the output, possibly empty.
type SupportedDevices struct {
	Knobs   []string `json:"knobs"`
	Buttons []string `json:"buttons"`
	Stalks  []string `json:"stalks"`
}

type Scenario struct {
	ID               int              `json:"id"`
	Name             string           `json:"name"`
	Notes            string           `json:"notes"`
	OrderNumber      int              `json:"orderNumber"`
	SupportedDevices SupportedDevices `json:"supportedDevices"`
}

type Category struct {
	Name        string     `json:"name"`
	OrderNumber int        `json:"orderNumber"`
	Scenarios   []Scenario `json:"scenarios"`
}

// Document is the persisted snapshot. YearModels are opaque descriptors kept
// in source order.
type Document struct {
	YearModels []any      `json:"yearModels"`
	Categories []Category `json:"categories"`
}

// TransformResult is a document plus what the run observed while building it.
type TransformResult struct {
	Document Document
	// Partial is set when the catalog mapping was empty; the document then
	// carries year/models only.
	Partial bool
	Entries int
}

// ScenarioCount returns the number of scenarios across all categories.
func (d *Document) ScenarioCount() int {
	n := 0
	for _, c := range d.Categories {
		n += len(c.Scenarios)
	}
	return n
}

package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

const (
	// YearModelsMarker is the assignment every catalog page carries.
	YearModelsMarker = "window.yearNameCombos"
	// CatalogMarker is the assignment holding the numeric-keyed entries.
	CatalogMarker = "window.quizFunctionData"

	regionTag   = "quiz-element"
	regionClass = "quiz-outer-wrapper"
)

var (
	ErrExtractionFailed = errors.New("could not find the catalog region")
	ErrMissingMarker    = errors.New("catalog scripts do not assign " + YearModelsMarker)
)

var (
	reYearModelsAssign = regexp.MustCompile(`window\.yearNameCombos\s*=\s*\[`)
	reRegionOpenTag    = regexp.MustCompile(`(?i)<quiz-element[^>]*>`)
)

// Strategy names the rule that located a region.
type Strategy int

const (
	// StrategyStrict matches <quiz-element class="quiz-outer-wrapper">.
	StrategyStrict Strategy = iota
	// StrategyLoose matches any <quiz-element>.
	StrategyLoose
	// StrategyRecovery takes the scripts that assign the year/model list,
	// wherever they are in the document.
	StrategyRecovery
)

func (s Strategy) String() string {
	switch s {
	case StrategyStrict:
		return "strict"
	case StrategyLoose:
		return "loose"
	case StrategyRecovery:
		return "recovery"
	default:
		return "unknown"
	}
}

// Region is the part of the page presumed to hold the catalog.
type Region struct {
	Strategy Strategy

	sel     *goquery.Selection
	scripts []string
	doc     *goquery.Document
}

// HTML renders the region markup. Recovery regions render as their joined
// script bodies.
func (r *Region) HTML() string {
	if r.sel == nil {
		return strings.Join(r.scripts, "\n")
	}

	out, err := goquery.OuterHtml(r.sel)
	if err != nil {
		return ""
	}

	return out
}

type Logger interface {
	Debugf(string, ...any)
	Warnf(string, ...any)
}

type Extractor struct {
	log Logger
}

func New(log Logger) *Extractor {
	return &Extractor{log: log}
}

// Locate returns the catalog region of html. The first strategy that matches
// wins; ErrExtractionFailed is returned when none does.
func (e *Extractor) Locate(html string) (*Region, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %v", ErrExtractionFailed, err)
	}

	if sel := doc.Find(regionTag + "." + regionClass).First(); sel.Length() > 0 {
		e.log.Debugf("Region located via %s match", StrategyStrict)
		return &Region{Strategy: StrategyStrict, sel: sel, doc: doc}, nil
	}

	if sel := doc.Find(regionTag).First(); sel.Length() > 0 {
		e.log.Debugf("Region located via %s match", StrategyLoose)
		return &Region{Strategy: StrategyLoose, sel: sel, doc: doc}, nil
	}

	e.describeMiss(html)

	if !reYearModelsAssign.MatchString(html) {
		return nil, fmt.Errorf("%w: no <%s> element and no %s assignment", ErrExtractionFailed, regionTag, YearModelsMarker)
	}

	scripts, err := scriptsContaining(html, YearModelsMarker)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if len(scripts) == 0 {
		return nil, fmt.Errorf("%w: %s found outside any inline script", ErrExtractionFailed, YearModelsMarker)
	}

	e.log.Debugf("Region located via %s match (%d scripts)", StrategyRecovery, len(scripts))

	return &Region{Strategy: StrategyRecovery, scripts: scripts, doc: doc}, nil
}

// scriptsContaining returns the bodies of every inline script that mentions
// marker, in document order.
func scriptsContaining(html, marker string) ([]string, error) {
	root, err := htmlquery.Parse(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	nodes, err := htmlquery.QueryAll(root, fmt.Sprintf(`//script[contains(., '%s')]`, marker))
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, htmlquery.InnerText(n))
	}

	return out, nil
}

func (e *Extractor) describeMiss(html string) {
	if tags := reRegionOpenTag.FindAllString(html, 5); len(tags) > 0 {
		e.log.Debugf("Found %s tags that did not parse as elements: %v", regionTag, tags)
		return
	}

	e.log.Debugf("No %s tags found in HTML (%d characters)", regionTag, len(html))

	if !strings.Contains(html, YearModelsMarker) {
		preview := html
		if len(preview) > 500 {
			preview = preview[:500]
		}
		e.log.Debugf("HTML preview (first 500 chars): %s", preview)
	}
}

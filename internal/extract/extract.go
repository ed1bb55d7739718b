package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SyntheticCatalog is appended when the page ships the catalog binding empty
// or not at all, so materialization always sees it defined.
const SyntheticCatalog = CatalogMarker + " = {};"

var (
	reCatalogAssign = regexp.MustCompile(`window\.quizFunctionData\s*=\s*\{`)
	reCatalogEmpty  = regexp.MustCompile(`window\.quizFunctionData\s*=\s*\{\s*\}`)
)

// Script is the ordered list of inline script bodies found in a region.
// Later fragments may build on bindings made by earlier ones.
type Script struct {
	Fragments []string
	Degraded  bool
}

// Text joins the fragments in order, one per line.
func (s *Script) Text() string {
	var b strings.Builder
	for _, f := range s.Fragments {
		b.WriteString(f)
		b.WriteString("\n")
	}
	return b.String()
}

// Extract collects the inline scripts of region. ErrMissingMarker is returned
// when none of them assigns the year/model list.
func (e *Extractor) Extract(region *Region) (*Script, error) {
	var fragments []string

	if region.sel != nil {
		region.sel.Find("script").Each(func(_ int, sc *goquery.Selection) {
			if _, external := sc.Attr("src"); external || !isJavaScript(sc) {
				return
			}
			if t := sc.Text(); strings.TrimSpace(t) != "" {
				fragments = append(fragments, t)
			}
		})
	} else {
		fragments = append(fragments, region.scripts...)
	}

	e.log.Debugf("Collected %d script fragments from %s region", len(fragments), region.Strategy)

	script := &Script{Fragments: fragments}
	text := script.Text()

	if !strings.Contains(text, YearModelsMarker) {
		return nil, fmt.Errorf("%w (%d fragments in %s region)", ErrMissingMarker, len(fragments), region.Strategy)
	}

	if !reCatalogAssign.MatchString(text) || reCatalogEmpty.MatchString(text) {
		e.log.Warnf("%s appears empty in static HTML", CatalogMarker)
		if region.doc != nil && region.doc.Find("script[src]").Length() > 0 {
			e.log.Warnf("Found external scripts, data might be dynamically loaded; continuing with year/model list only")
		}

		script.Fragments = append(script.Fragments, SyntheticCatalog)
		script.Degraded = true
	}

	return script, nil
}

func isJavaScript(sc *goquery.Selection) bool {
	typ, ok := sc.Attr("type")
	if !ok {
		return true
	}

	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", "text/javascript", "application/javascript", "module", "text/ecmascript":
		return true
	default:
		return false
	}
}

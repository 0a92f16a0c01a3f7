// Package extract turns a fetched WorldCat record page into a typed
// record. Extraction fails the whole run on any page shape it does not
// recognize; a stale lookup table must be fixed by hand, not papered over.
package extract

import (
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	bibcaterrors "github.com/lepinkainen/bibcat/internal/errors"
	"github.com/lepinkainen/bibcat/internal/record"
)

const notFoundMarker = "page you tried was not found"

// Extract produces a record for oclcID from a parsed WorldCat page.
// A "not found" page is a normal terminal state and yields a minimal
// record; an unknown attribute label or an unresolvable language returns a
// HaltError and no record.
func Extract(doc *goquery.Document, oclcID int64) (*record.Record, error) {
	// WorldCat answers 200 OK for missing records, with an apology
	// paragraph in the main column.
	if isNotFoundPage(doc) {
		return record.NewNotFound(oclcID), nil
	}

	payload := &record.Payload{}

	var haltErr error
	doc.Find("#details div table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := firstDirectText(row.Find("th"))
		key, ok := attributeLabels[label]
		if !ok {
			haltErr = bibcaterrors.NewUnknownLabelError(oclcID, label)
			return false
		}
		applyAttribute(payload, key, row)
		return true
	})
	if haltErr != nil {
		return nil, haltErr
	}

	payload.Title = optionalText(doc.Find("#bibdata > h1"))
	if cover, ok := doc.Find("#cover img").Attr("src"); ok {
		payload.Cover = record.String(secureCoverURL(cover))
	}
	payload.Publisher = optionalText(doc.Find("#bib-publisher-cell"))
	payload.EditionFormat = optionalText(doc.Find("#editionFormatType .itemType"))

	tokens := editionTokens(doc)
	language, ok := ResolveLanguage(tokens)
	if !ok {
		return nil, bibcaterrors.NewUnknownLanguageError(oclcID, tokens)
	}
	payload.Language = language

	payload.ExternalLinks = externalLinks(doc)
	payload.Abstract = abstract(doc)
	payload.RelatedSubjects = relatedSubjects(doc)

	return record.NewFound(oclcID, payload), nil
}

// applyAttribute dispatches one details-table row into the payload field
// for its normalized key, using the key's multiplicity rule.
func applyAttribute(payload *record.Payload, key string, row *goquery.Selection) {
	td := row.Find("td").First()

	switch key {
	case "authors":
		// one entry per nested link, in page order
		payload.Authors = linkTexts(row.Find("td a"))
	case "isbn":
		payload.ISBN = strings.Fields(firstDirectText(td))
	case "issn":
		payload.ISSN = strings.Fields(firstDirectText(td))
	case "named_person":
		payload.NamedPerson = dedupe(strings.Split(firstDirectText(td), "; "))
	case "genre":
		payload.Genre = directTexts(td)
	case "additional_physical_format":
		payload.AdditionalPhysicalFormat = directTexts(td)
	case "notes":
		payload.Notes = directTexts(td)
	case "series_title":
		payload.SeriesTitle = optionalText(row.Find("td a").First())
	case "more_information":
		payload.MoreInformation = linkElements(row.Find(".inlinelinks a"))
	default:
		setScalar(payload, key, optionalText(td))
	}
}

func setScalar(payload *record.Payload, key string, value *string) {
	switch key {
	case "material_type":
		payload.MaterialType = value
	case "doc_type":
		payload.DocType = value
	case "oclc":
		payload.OCLC = value
	case "language_note":
		payload.LanguageNote = value
	case "performers":
		payload.Performers = value
	case "credits":
		payload.Credits = value
	case "description":
		payload.Description = value
	case "contents":
		payload.Contents = value
	case "other_titles":
		payload.OtherTitles = value
	case "awards":
		payload.Awards = value
	case "responsibility":
		payload.Responsibility = value
	}
}

func isNotFoundPage(doc *goquery.Document) bool {
	found := false
	doc.Find("#div-maincol p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if strings.Contains(p.Text(), notFoundMarker) {
			found = true
			return false
		}
		return true
	})
	return found
}

// editionTokens splits the Edition/Format summary text on colons into the
// flattened, trimmed token list the language heuristic scans.
func editionTokens(doc *goquery.Document) []string {
	var tokens []string
	for _, raw := range directTexts(doc.Find("#editionFormatType")) {
		for _, part := range strings.Split(strings.TrimSpace(raw), ":") {
			if part = strings.TrimSpace(part); part != "" {
				tokens = append(tokens, part)
			}
		}
	}
	return tokens
}

func externalLinks(doc *goquery.Document) []record.ExternalLink {
	links := make([]record.ExternalLink, 0)
	doc.Find("#ecopy p").Each(func(_ int, p *goquery.Selection) {
		a := p.Find("a").First()
		links = append(links, record.ExternalLink{
			Title: optionalAttr(a, "title"),
			Href:  optionalAttr(a, "href"),
			Text:  optionalText(p.Find("span").First()),
		})
	})
	return links
}

// abstract concatenates the base fragment with the optional "show more"
// continuation, with no separator between the two.
func abstract(doc *goquery.Document) *string {
	var base string
	doc.Find("#details > div > div > div").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		if text := firstDirectText(div); text != "" {
			base = text
			return false
		}
		return true
	})
	if base == "" {
		return nil
	}

	base = strings.TrimLeftFunc(base, unicode.IsSpace)
	extra := firstDirectText(doc.Find("#details > div > div > div > span.showMoreLessContentElement"))
	return record.String(base + extra)
}

func relatedSubjects(doc *goquery.Document) []string {
	subjects := make([]string, 0)
	doc.Find("#subject-terms-detailed > li > a").Each(func(_ int, a *goquery.Selection) {
		subjects = append(subjects, a.Text())
	})
	return subjects
}

// secureCoverURL rewrites protocol-relative cover URLs to https.
func secureCoverURL(src string) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}

// firstDirectText returns the first direct child text node of the first
// element in sel that is not pure whitespace. Nested element text is
// deliberately excluded, matching how row values sit next to their markup.
func firstDirectText(sel *goquery.Selection) string {
	for _, text := range directTexts(sel) {
		return text
	}
	return ""
}

// directTexts returns the direct child text nodes of the first element in
// sel, skipping whitespace-only nodes. Rows that separate values with br
// tags produce one entry per line.
func directTexts(sel *goquery.Selection) []string {
	var texts []string
	sel.First().Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) != "#text" {
			return
		}
		if text := c.Text(); strings.TrimSpace(text) != "" {
			texts = append(texts, text)
		}
	})
	return texts
}

func linkTexts(sel *goquery.Selection) []string {
	var texts []string
	sel.Each(func(_ int, a *goquery.Selection) {
		texts = append(texts, a.Text())
	})
	return texts
}

// linkElements returns the serialized markup of each matched link, keeping
// href and text together the way earlier harvests stored them.
func linkElements(sel *goquery.Selection) []string {
	var elements []string
	sel.Each(func(_ int, a *goquery.Selection) {
		if html, err := goquery.OuterHtml(a); err == nil {
			elements = append(elements, html)
		}
	})
	return elements
}

func optionalText(sel *goquery.Selection) *string {
	if text := firstDirectText(sel); text != "" {
		return record.String(text)
	}
	return nil
}

func optionalAttr(sel *goquery.Selection, name string) *string {
	if value, ok := sel.Attr(name); ok {
		return record.String(value)
	}
	return nil
}

// dedupe removes duplicate entries. Output order is not part of the data
// contract; it is sorted only so repeated harvests store identical JSON.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

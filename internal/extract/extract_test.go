package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	bibcaterrors "github.com/lepinkainen/bibcat/internal/errors"
	"github.com/lepinkainen/bibcat/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const foundPage = `<html><body>
<div id="bibdata"><h1>The Selfish Gene</h1></div>
<div id="cover"><img src="//covers.example.org/123.jpg"></div>
<div id="editionFormatType"><span class="itemType">Print book</span> : Biography : English</div>
<table><tr><td id="bib-publisher-cell">Oxford : Oxford University Press, 1976.</td></tr></table>
<div id="details"><div>
<table>
<tr><th>All Authors / Contributors:</th><td><a>Richard Dawkins</a> <a>John Krebs</a></td></tr>
<tr><th>ISBN:</th><td>0-19-852663-6 9780198526638</td></tr>
<tr><th>OCLC Number:</th><td>2681149</td></tr>
<tr><th>Named Person:</th><td>Dawkins, Richard; Darwin, Charles; Dawkins, Richard</td></tr>
<tr><th>Genre/Form:</th><td>Popular works<br>Nonfiction</td></tr>
<tr><th>Notes:</th><td>Includes index.<br>Originally published 1976.</td></tr>
<tr><th>Description:</th><td>xi, 224 pages ; 23 cm</td></tr>
<tr><th>Series Title:</th><td><a>Popular science series</a></td></tr>
<tr><th>More information:</th><td><ul class="inlinelinks"><li><a href="http://example.org/toc">Table of contents</a></li><li><a href="http://example.org/pub">Publisher description</a></li></ul></td></tr>
</table>
<div><div>  An account of gene-centred evolution. <span class="showMoreLessContentElement">It continues.</span></div></div>
</div></div>
<div id="ecopy">
<p><a title="Ebook" href="https://example.org/ebook"></a><span>Free access</span></p>
<p><a href="https://example.org/mirror"></a></p>
</div>
<ul id="subject-terms-detailed"><li><a>Evolution</a></li><li><a>Genetics</a></li></ul>
</body></html>`

func TestExtractFoundPage(t *testing.T) {
	rec, err := Extract(parseDoc(t, foundPage), 2681149)
	require.NoError(t, err)

	assert.Equal(t, int64(2681149), rec.OCLCID)
	assert.Equal(t, record.StatusFound, rec.Status)
	require.NotNil(t, rec.Payload)
	p := rec.Payload

	assert.Equal(t, "The Selfish Gene", *p.Title)
	assert.Equal(t, "https://covers.example.org/123.jpg", *p.Cover)
	assert.Equal(t, "Oxford : Oxford University Press, 1976.", *p.Publisher)
	assert.Equal(t, "Print book", *p.EditionFormat)
	assert.Equal(t, "English", p.Language)

	assert.Equal(t, []string{"Richard Dawkins", "John Krebs"}, p.Authors)
	assert.Equal(t, []string{"0-19-852663-6", "9780198526638"}, p.ISBN)
	assert.Equal(t, "2681149", *p.OCLC)
	assert.Equal(t, []string{"Popular works", "Nonfiction"}, p.Genre)
	assert.Equal(t, []string{"Includes index.", "Originally published 1976."}, p.Notes)
	assert.Equal(t, "xi, 224 pages ; 23 cm", *p.Description)
	assert.Equal(t, "Popular science series", *p.SeriesTitle)
	assert.Equal(t, []string{
		`<a href="http://example.org/toc">Table of contents</a>`,
		`<a href="http://example.org/pub">Publisher description</a>`,
	}, p.MoreInformation)

	// order is not guaranteed for named persons, only membership
	assert.ElementsMatch(t, []string{"Dawkins, Richard", "Darwin, Charles"}, p.NamedPerson)

	assert.Equal(t, "An account of gene-centred evolution. It continues.", *p.Abstract)
	assert.Equal(t, []string{"Evolution", "Genetics"}, p.RelatedSubjects)

	require.Len(t, p.ExternalLinks, 2)
	assert.Equal(t, "Ebook", *p.ExternalLinks[0].Title)
	assert.Equal(t, "https://example.org/ebook", *p.ExternalLinks[0].Href)
	assert.Equal(t, "Free access", *p.ExternalLinks[0].Text)
	assert.Nil(t, p.ExternalLinks[1].Title)
	assert.Equal(t, "https://example.org/mirror", *p.ExternalLinks[1].Href)
	assert.Nil(t, p.ExternalLinks[1].Text)
}

func TestExtractNotFoundPage(t *testing.T) {
	// the unknown label in the table must never be reached
	html := `<html><body>
<div id="div-maincol"><p>The page you tried was not found.</p></div>
<div id="details"><div><table><tr><th>Mystery Label:</th><td>x</td></tr></table></div></div>
</body></html>`

	rec, err := Extract(parseDoc(t, html), 55)
	require.NoError(t, err)

	assert.Equal(t, record.StatusNotFound, rec.Status)
	assert.Nil(t, rec.Payload)
}

func TestExtractUnknownLabelHaltsRun(t *testing.T) {
	html := `<html><body>
<div id="editionFormatType"><span class="itemType">Print book</span> : English</div>
<div id="details"><div><table>
<tr><th>ISBN:</th><td>123</td></tr>
<tr><th>Frequency:</th><td>Monthly</td></tr>
</table></div></div>
</body></html>`

	rec, err := Extract(parseDoc(t, html), 77)
	assert.Nil(t, rec)
	require.Error(t, err)
	assert.True(t, bibcaterrors.IsHaltError(err))
	assert.Contains(t, err.Error(), `"Frequency:"`)
	assert.Contains(t, err.Error(), "oclc_id=77")
}

func TestExtractUnresolvableLanguageHaltsRun(t *testing.T) {
	html := `<html><body>
<div id="editionFormatType"><span class="itemType">Print book</span> : Atlantis</div>
<div id="details"><div><table></table></div></div>
</body></html>`

	rec, err := Extract(parseDoc(t, html), 17)
	assert.Nil(t, rec)
	require.Error(t, err)
	assert.True(t, bibcaterrors.IsHaltError(err))
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestExtractMissingOptionalFields(t *testing.T) {
	// only the edition summary is present; everything optional stays empty
	html := `<html><body>
<div id="editionFormatType">Book : English</div>
</body></html>`

	rec, err := Extract(parseDoc(t, html), 3)
	require.NoError(t, err)
	p := rec.Payload

	assert.Nil(t, p.Title)
	assert.Nil(t, p.Cover)
	assert.Nil(t, p.Abstract)
	assert.Nil(t, p.Authors)
	assert.Empty(t, p.ExternalLinks)
	assert.Empty(t, p.RelatedSubjects)
	assert.Equal(t, "English", p.Language)
}

func TestExtractCoverAlreadyAbsolute(t *testing.T) {
	html := `<html><body>
<div id="cover"><img src="https://covers.example.org/9.jpg"></div>
<div id="editionFormatType">Book : English</div>
</body></html>`

	rec, err := Extract(parseDoc(t, html), 9)
	require.NoError(t, err)
	assert.Equal(t, "https://covers.example.org/9.jpg", *rec.Payload.Cover)
}

func TestEditionTokens(t *testing.T) {
	testCases := []struct {
		name     string
		html     string
		expected []string
	}{
		{
			name:     "summary with item type span",
			html:     `<div id="editionFormatType"><span class="itemType">Print book</span> : Biography : English</div>`,
			expected: []string{"Biography", "English"},
		},
		{
			name:     "padded tokens are trimmed",
			html:     `<div id="editionFormatType">  Book  :   English  </div>`,
			expected: []string{"Book", "English"},
		},
		{
			name:     "empty fragments are dropped",
			html:     `<div id="editionFormatType"> : : English</div>`,
			expected: []string{"English"},
		},
		{
			name:     "no summary region",
			html:     `<div></div>`,
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, editionTokens(parseDoc(t, "<html><body>"+tc.html+"</body></html>")))
		})
	}
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, dedupe([]string{"c", "a", "b", "a", "c"}))
	assert.Equal(t, []string{}, dedupe(nil))
}

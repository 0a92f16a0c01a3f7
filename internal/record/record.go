// Package record defines the bibliographic record produced for each OCLC
// identifier, matching the JSON shape stored in existing harvest databases.
package record

import "time"

// Status describes the outcome of fetching one OCLC identifier.
type Status int

const (
	// StatusNotFound means WorldCat has no entry for the identifier.
	StatusNotFound Status = 0
	// StatusFound means a full record was extracted.
	StatusFound Status = 1
)

// ExternalLink is one entry from the "Find a copy online" section.
// Any of the three parts can be absent on the page.
type ExternalLink struct {
	Title *string `json:"title"`
	Href  *string `json:"href"`
	Text  *string `json:"text"`
}

// Payload holds every field extracted from a found record page. JSON tags
// are the normalized field keys; title, language, external_links,
// related_subjects and abstract are always serialized, the rest only when
// the page carried them.
type Payload struct {
	Title           *string        `json:"title"`
	Language        string         `json:"language"`
	ExternalLinks   []ExternalLink `json:"external_links"`
	RelatedSubjects []string       `json:"related_subjects"`
	Abstract        *string        `json:"abstract"`

	Cover         *string `json:"cover,omitempty"`
	Publisher     *string `json:"publisher,omitempty"`
	EditionFormat *string `json:"edition_format,omitempty"`
	SeriesTitle   *string `json:"series_title,omitempty"`

	MaterialType   *string `json:"material_type,omitempty"`
	DocType        *string `json:"doc_type,omitempty"`
	OCLC           *string `json:"oclc,omitempty"`
	LanguageNote   *string `json:"language_note,omitempty"`
	Performers     *string `json:"performers,omitempty"`
	Credits        *string `json:"credits,omitempty"`
	Description    *string `json:"description,omitempty"`
	Contents       *string `json:"contents,omitempty"`
	OtherTitles    *string `json:"other_titles,omitempty"`
	Awards         *string `json:"awards,omitempty"`
	Responsibility *string `json:"responsibility,omitempty"`

	Authors                  []string `json:"authors,omitempty"`
	ISBN                     []string `json:"isbn,omitempty"`
	ISSN                     []string `json:"issn,omitempty"`
	Genre                    []string `json:"genre,omitempty"`
	AdditionalPhysicalFormat []string `json:"additional_physical_format,omitempty"`
	Notes                    []string `json:"notes,omitempty"`
	NamedPerson              []string `json:"named_person,omitempty"`
	MoreInformation          []string `json:"more_information,omitempty"`
}

// Record is the unit handed to the store, fully assembled before upsert and
// never mutated afterwards.
type Record struct {
	OCLCID      int64
	Status      Status
	RetrievedAt time.Time
	Payload     *Payload
}

// NewNotFound builds the minimal record for an identifier WorldCat does not
// know. The payload stays nil.
func NewNotFound(oclcID int64) *Record {
	return &Record{
		OCLCID:      oclcID,
		Status:      StatusNotFound,
		RetrievedAt: time.Now().UTC(),
	}
}

// NewFound builds a record around a fully extracted payload.
func NewFound(oclcID int64, payload *Payload) *Record {
	return &Record{
		OCLCID:      oclcID,
		Status:      StatusFound,
		RetrievedAt: time.Now().UTC(),
		Payload:     payload,
	}
}

// String returns a pointer to s, for optional payload fields.
func String(s string) *string {
	return &s
}

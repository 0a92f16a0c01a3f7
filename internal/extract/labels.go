package extract

// attributeLabels maps the raw th label of a details-table row to its
// normalized payload key. The set is closed on purpose: a label missing
// here means WorldCat changed its markup and the run must halt before any
// data is silently dropped.
var attributeLabels = map[string]string{
	"Genre/Form:":                 "genre",
	"Additional Physical Format:": "additional_physical_format",
	"Named Person:":               "named_person",
	"Material Type:":              "material_type",
	"Document Type:":              "doc_type",
	"All Authors / Contributors:": "authors",
	"ISSN:":                       "issn",
	"ISBN:":                       "isbn",
	"OCLC Number:":                "oclc",
	"Language Note:":              "language_note",
	"Notes:":                      "notes",
	"Performer(s):":               "performers",
	"Credits:":                    "credits",
	"Description:":                "description",
	"Contents:":                   "contents",
	"Other Titles:":               "other_titles",
	"Awards:":                     "awards",
	"Responsibility:":             "responsibility",
	"Series Title:":               "series_title",
	"More information:":           "more_information",
}

package extract

// knownLanguages is the closed vocabulary of language names WorldCat uses
// in the Edition/Format summary, taken from the search facet list. The
// language has no structural tag of its own and is only conventionally the
// last summary token, so exact membership in this set is the only reliable
// way to pick it out. Matching is case- and punctuation-sensitive;
// imprecise edge cases are kept as-is for compatibility with records
// already stored.
var knownLanguages = []string{
	"English",
	"Undetermined",
	"Korean",
	"French",
	"German",
	"Spanish",
	"Japanese",
	"Arabic",
	"Chinese",
	"Russian",
	"Italian",
	"Persian",
	"Polish",
	"Portuguese",
	"Hebrew",
	"Dutch",
	"Latin",
	"Swedish",
	"Czech",
	"Multiple languages",
	"Ukrainian",
	"Thai",
	"Slovenian",
	"Afrikaans",
	"Danish",
	"Turkish",
	"Indonesian",
	"Hungarian",
	"Croatian",
	"Finnish",
	"Bulgarian",
	"Serbian",
	"Vietnamese",
	"Romanian",
	"Greek, Modern [1453- ]",
	"Lithuanian",
	"Catalan",
	"Yiddish",
	"Greek, Ancient [to 1453]",
	"Norwegian",
	"Sanskrit",
	"Slovak",
	"Tibetan",
	"Welsh",
	"Ndonga",
	"Malay",
	"Hindi",
	"Irish",
	"Miscellaneous languages",
	"Bosnian",
	"English, Middle [1100-1500]",
	"Urdu",
	"Tamil",
	"Armenian",
	"Estonian",
	"Belarusian",
	"Bokmal, Norwegian",
	"Bengali",
	"Scots",
	"Maori",
	"Macedonian",
	"Tagalog",
	"Nauru",
	"Burmese",
	"Latvian",
	"Scottish Gaelic",
	"Mongolian",
	"Icelandic",
	"English, Old [ca. 450-1100]",
	"Sinhalese",
	"French, Old [ca. 842-1300]",
	"Ladino",
	"Church Slavic",
	"Georgian",
	"Kurdish",
	"Syriac, Modern",
	"Azerbaijani",
	"French, Middle [ca. 1300-1600]",
	"Albanian",
	"Pali",
	"Turkish, Ottoman",
	"Gujarati",
	"Romance [Other]",
	"Basque",
	"Austronesian [Other]",
	"Khmer",
	"Panjabi",
	"Telugu",
	"Zulu",
	"North American Indian [Other]",
	"Marathi",
	"Niger-Kordofanian [Other]",
	"Hawaiian",
	"Papuan [Other]",
	"Swahili",
	"Amharic",
	"Galician",
	"Aramaic",
	"Bantu [Other]",
	"Akkadian",
}

var knownLanguageSet = func() map[string]bool {
	set := make(map[string]bool, len(knownLanguages))
	for _, lang := range knownLanguages {
		set[lang] = true
	}
	return set
}()

// ResolveLanguage scans the edition summary tokens in order and returns the
// first one present in the known-language vocabulary.
func ResolveLanguage(tokens []string) (string, bool) {
	for _, token := range tokens {
		if knownLanguageSet[token] {
			return token, true
		}
	}
	return "", false
}

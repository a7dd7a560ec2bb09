package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type entry struct {
	code2 string // ISO 639-1
	code3 string // ISO 639-2/T
	alt3  string // ISO 639-2/B when it differs ("fre" vs "fra")
	word  string // lowercase English name
}

// Languages whose three-letter or word forms show up in container tags and
// user input often enough to resolve without a tag parse.
var languages = []entry{
	{"en", "eng", "", "english"},
	{"es", "spa", "", "spanish"},
	{"fr", "fra", "fre", "french"},
	{"de", "deu", "ger", "german"},
	{"it", "ita", "", "italian"},
	{"pt", "por", "", "portuguese"},
	{"ja", "jpn", "", "japanese"},
	{"ko", "kor", "", "korean"},
	{"zh", "zho", "chi", "chinese"},
	{"ru", "rus", "", "russian"},
	{"uk", "ukr", "", "ukrainian"},
	{"ar", "ara", "", "arabic"},
	{"hi", "hin", "", "hindi"},
	{"nl", "nld", "dut", "dutch"},
	{"pl", "pol", "", "polish"},
	{"sv", "swe", "", "swedish"},
	{"tr", "tur", "", "turkish"},
}

var lookupTable = func() map[string]string {
	m := make(map[string]string, len(languages)*4)
	for _, e := range languages {
		m[e.code2] = e.code2
		m[e.code3] = e.code2
		if e.alt3 != "" {
			m[e.alt3] = e.code2
		}
		m[e.word] = e.code2
	}
	return m
}()

// ToISO2 converts a language code, English name, or BCP 47 tag to ISO 639-1.
// Returns "" for empty or unrecognized input.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if mapped, ok := lookupTable[code]; ok {
		return mapped
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == xlanguage.No {
		return ""
	}
	iso := base.String()
	if len(iso) != 2 {
		return ""
	}
	return iso
}

// DisplayName returns a human-readable English name for any recognized code.
// Returns "Auto-detect" for empty input, or the uppercased code when unknown.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Auto-detect"
	}
	if iso := ToISO2(trimmed); iso != "" {
		if name := display.English.Languages().Name(xlanguage.MustParse(iso)); name != "" {
			return name
		}
	}
	return strings.ToUpper(trimmed)
}

// ExtractFromTags extracts the language from stream metadata tags.
// Checks common tag keys: language, LANGUAGE, Language, language_ietf, lang, LANG.
func ExtractFromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}
	for _, key := range keys {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\u0000", ""))
			if value != "" {
				return strings.ToLower(value)
			}
		}
	}
	return ""
}

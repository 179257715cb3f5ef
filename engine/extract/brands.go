package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
)

// brandAliases maps folded aliases to canonical make names.
var brandAliases = map[string]string{
	"renault":       "Renault",
	"peugeot":       "Peugeot",
	"citroen":       "Citroen",
	"dacia":         "Dacia",
	"alpine":        "Alpine",
	"volkswagen":    "Volkswagen",
	"vw":            "Volkswagen",
	"audi":          "Audi",
	"bmw":           "BMW",
	"mercedes":      "Mercedes",
	"mercedes-benz": "Mercedes",
	"merc":          "Mercedes",
	"benz":          "Mercedes",
	"opel":          "Opel",
	"skoda":         "Skoda",
	"seat":          "Seat",
	"cupra":         "Cupra",
	"fiat":          "Fiat",
	"alfa romeo":    "Alfa Romeo",
	"toyota":        "Toyota",
	"honda":         "Honda",
	"nissan":        "Nissan",
	"mazda":         "Mazda",
	"suzuki":        "Suzuki",
	"mitsubishi":    "Mitsubishi",
	"hyundai":       "Hyundai",
	"kia":           "Kia",
	"ford":          "Ford",
	"tesla":         "Tesla",
	"volvo":         "Volvo",
	"lexus":         "Lexus",
	"land rover":    "Land Rover",
	"jaguar":        "Jaguar",
	"porsche":       "Porsche",
	"maserati":      "Maserati",
	"mg":            "MG",
	"jeep":          "Jeep",
}

// brandModels lists the nameplates recognized after each canonical make.
var brandModels = map[string][]string{
	"Renault":    {"Clio", "Twingo", "Megane", "Captur", "Kadjar", "Scenic", "Zoe", "Austral", "Arkana"},
	"Peugeot":    {"108", "208", "e-208", "308", "408", "508", "2008", "3008", "5008"},
	"Citroen":    {"C1", "C3", "C3 Aircross", "C4", "C5 Aircross", "Berlingo"},
	"Dacia":      {"Sandero", "Duster", "Logan", "Spring", "Jogger"},
	"Volkswagen": {"Polo", "Golf", "Passat", "T-Roc", "Tiguan", "ID.3", "ID.4", "Up"},
	"Audi":       {"A1", "A3", "A4", "A6", "Q2", "Q3", "Q5", "e-tron"},
	"BMW":        {"Serie 1", "Serie 3", "Serie 5", "X1", "X3", "X5", "i3"},
	"Mercedes":   {"Classe A", "Classe C", "Classe E", "GLA", "GLC"},
	"Opel":       {"Corsa", "Astra", "Mokka", "Crossland"},
	"Skoda":      {"Fabia", "Octavia", "Kodiaq", "Karoq"},
	"Seat":       {"Ibiza", "Leon", "Arona", "Ateca"},
	"Fiat":       {"500", "Panda", "Tipo"},
	"Toyota":     {"Yaris", "Yaris Cross", "Corolla", "C-HR", "RAV4", "Prius", "Aygo"},
	"Nissan":     {"Micra", "Juke", "Qashqai", "Leaf"},
	"Hyundai":    {"i10", "i20", "i30", "Tucson", "Kona"},
	"Kia":        {"Picanto", "Rio", "Ceed", "Sportage", "Niro"},
	"Ford":       {"Fiesta", "Focus", "Puma", "Kuga"},
	"Tesla":      {"Model 3", "Model Y", "Model S", "Model X"},
	"Volvo":      {"XC40", "XC60", "XC90", "V40"},
	"MG":         {"MG4", "4", "ZS", "HS"},
}

var (
	brandRe *regexp.Regexp
	// folded make -> folded model -> canonical model, longest first
	modelsByBrand map[string][]modelEntry

	yearRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	// A run of digit groups directly before "km". The groups are split and
	// re-read by findMileage, since a nameplate number can precede the figure.
	mileageRe  = regexp.MustCompile(`((?:\d+[ .\x{00a0}\x{202f}])*\d+)\s?km\b`)
	groupSepRe = regexp.MustCompile(`[ .\x{00a0}\x{202f}]`)
	nonDigit   = regexp.MustCompile(`\D`)
)

type modelEntry struct {
	folded, canonical string
}

func init() {
	aliases := make([]string, 0, len(brandAliases))
	for alias := range brandAliases {
		aliases = append(aliases, alias)
	}
	// Longest first so "mercedes-benz" wins over "mercedes".
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})
	quoted := make([]string, len(aliases))
	for i, a := range aliases {
		quoted[i] = regexp.QuoteMeta(a)
	}
	brandRe = regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)

	modelsByBrand = make(map[string][]modelEntry, len(brandModels))
	for make_, models := range brandModels {
		entries := make([]modelEntry, 0, len(models))
		for _, m := range models {
			entries = append(entries, modelEntry{folded: listing.Fold(m), canonical: m})
		}
		sort.Slice(entries, func(i, j int) bool {
			return len(entries[i].folded) > len(entries[j].folded)
		})
		modelsByBrand[make_] = entries
	}
}

// findBrand returns the canonical make of the leftmost brand mention in text
// and the byte offset (in the folded text) just past it.
func findBrand(folded string) (make_ string, end int, ok bool) {
	loc := brandRe.FindStringSubmatchIndex(folded)
	if loc == nil {
		return "", 0, false
	}
	canonical, ok := brandAliases[folded[loc[2]:loc[3]]]
	if !ok {
		return "", 0, false
	}
	return canonical, loc[1], true
}

// findModel looks for a known nameplate of make_ at the start of after and
// returns it with the byte range it covers in after.
func findModel(make_, after string) (model string, start, end int, ok bool) {
	trimmed := strings.TrimLeft(after, " -\t")
	skip := len(after) - len(trimmed)
	for _, e := range modelsByBrand[make_] {
		if strings.HasPrefix(trimmed, e.folded) && boundaryAfter(trimmed, len(e.folded)) {
			return e.canonical, skip, skip + len(e.folded), true
		}
	}
	return "", 0, 0, false
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	b := s[i]
	return !(b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 0x80)
}

// findYear returns the last plausible four-digit year in folded text.
// Callers remove the nameplate first so a model named "2008" is not read as
// a year.
func findYear(folded string, currentYear int) (int, bool) {
	matches := yearRe.FindAllStringSubmatch(folded, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		y, err := strconv.Atoi(matches[i][1])
		if err == nil && listing.PlausibleYear(y, currentYear) {
			return y, true
		}
	}
	return 0, false
}

// maxHeadingMileage caps figures read from free text.
const maxHeadingMileage = 999_999

// findMileage reads an "85 000 km" style figure from folded text. Within a
// run such as "308 120 000 km" the longest trailing thousands grouping under
// maxHeadingMileage is kept, which drops the leading "308".
func findMileage(folded string) (int, bool) {
	for _, m := range mileageRe.FindAllStringSubmatch(folded, -1) {
		if km, ok := trailingGrouping(groupSepRe.Split(m[1], -1)); ok {
			return km, true
		}
	}
	return 0, false
}

func trailingGrouping(groups []string) (int, bool) {
	last := len(groups) - 1
	for i := 0; i <= last; i++ {
		if i < last && len(groups[i]) > 3 {
			continue
		}
		valid := true
		for _, g := range groups[i+1:] {
			if len(g) != 3 {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		n, ok := digitsInt(strings.Join(groups[i:], ""))
		if ok && n <= maxHeadingMileage {
			return n, true
		}
	}
	return 0, false
}

// digitsInt keeps only the digits of s and parses them.
func digitsInt(s string) (int, bool) {
	d := nonDigit.ReplaceAllString(s, "")
	if d == "" {
		return 0, false
	}
	n, err := strconv.Atoi(d)
	if err != nil {
		return 0, false
	}
	return n, true
}

// headingFields is what can be read from a listing heading alone.
type headingFields struct {
	make_, model string
	year         int
	yearOK       bool
}

func parseHeading(title string, currentYear int) (headingFields, bool) {
	folded := listing.Fold(title)
	make_, end, ok := findBrand(folded)
	if !ok {
		return headingFields{}, false
	}
	h := headingFields{make_: make_, model: listing.UnknownModel}
	rest := folded
	if m, start, stop, ok := findModel(make_, folded[end:]); ok {
		h.model = m
		rest = folded[:end+start] + " " + folded[end+stop:]
	}
	h.year, h.yearOK = findYear(rest, currentYear)
	return h, true
}

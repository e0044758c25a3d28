package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// countryNames lists, per ISO 3166-1 alpha-2 code, the spellings found in
// supported documents: the code itself, international vehicle registration
// codes, and country names in English, German, French and the local language.
var countryNames = map[string][]string{
	"AT": {"AT", "A", "AUT", "Austria", "Österreich", "Autriche", "Rakousko", "Austrija", "Austria"},
	"BE": {"BE", "B", "BEL", "Belgium", "Belgien", "Belgique", "België", "Belgie", "Belgija"},
	"BG": {"BG", "BGR", "Bulgaria", "Bulgarien", "Bulgarie", "България", "Bulgarija", "Bulharsko"},
	"BY": {"BY", "BLR", "Belarus", "Weißrussland", "Biélorussie", "Baltarusija"},
	"CH": {"CH", "CHE", "Switzerland", "Schweiz", "Suisse", "Svizzera", "Šveicarija", "Švýcarsko"},
	"CY": {"CY", "CYP", "Cyprus", "Zypern", "Chypre", "Kipras"},
	"CZ": {"CZ", "CZE", "Czech Republic", "Czechia", "Tschechien", "Tschechische Republik", "République tchèque", "Česko", "Česká republika", "Čekija"},
	"DE": {"DE", "D", "DEU", "Germany", "Deutschland", "Allemagne", "Německo", "Vokietija", "Niemcy", "Germania"},
	"DK": {"DK", "DNK", "Denmark", "Dänemark", "Danemark", "Danmark", "Danija", "Dánsko"},
	"EE": {"EE", "EST", "Estonia", "Estland", "Estonie", "Eesti", "Estija", "Estonsko"},
	"ES": {"ES", "E", "ESP", "Spain", "Spanien", "Espagne", "España", "Ispanija", "Španělsko"},
	"FI": {"FI", "FIN", "Finland", "Finnland", "Finlande", "Suomi", "Suomija", "Finsko"},
	"FR": {"FR", "F", "FRA", "France", "Frankreich", "Prancūzija", "Francie", "Francja"},
	"GB": {"GB", "UK", "GBR", "United Kingdom", "Great Britain", "England", "Scotland", "Wales", "Großbritannien", "Vereinigtes Königreich", "Royaume-Uni", "Jungtinė Karalystė", "Didžioji Britanija", "Velká Británie"},
	"GR": {"GR", "GRC", "Greece", "Griechenland", "Grèce", "Graikija", "Řecko"},
	"HR": {"HR", "HRV", "Croatia", "Kroatien", "Croatie", "Hrvatska", "Kroatija", "Chorvatsko"},
	"HU": {"HU", "H", "HUN", "Hungary", "Ungarn", "Hongrie", "Magyarország", "Vengrija", "Maďarsko"},
	"IE": {"IE", "IRL", "Ireland", "Irland", "Irlande", "Airija", "Irsko"},
	"IT": {"IT", "I", "ITA", "Italy", "Italien", "Italie", "Italia", "Italija", "Itálie"},
	"LT": {"LT", "LTU", "Lithuania", "Litauen", "Lituanie", "Lietuva", "Litva"},
	"LU": {"LU", "L", "LUX", "Luxembourg", "Luxemburg", "Liuksemburgas", "Lucembursko"},
	"LV": {"LV", "LVA", "Latvia", "Lettland", "Lettonie", "Latvija", "Lotyšsko"},
	"MT": {"MT", "M", "MLT", "Malta"},
	"NL": {"NL", "NLD", "Netherlands", "The Netherlands", "Holland", "Niederlande", "Pays-Bas", "Nederland", "Nyderlandai", "Nizozemsko"},
	"NO": {"NO", "N", "NOR", "Norway", "Norwegen", "Norvège", "Norge", "Norvegija", "Norsko"},
	"PL": {"PL", "POL", "Poland", "Polen", "Pologne", "Polska", "Lenkija", "Polsko"},
	"PT": {"PT", "P", "PRT", "Portugal", "Portugalija", "Portugalsko"},
	"RO": {"RO", "ROU", "Romania", "Rumänien", "Roumanie", "România", "Rumunija", "Rumunsko"},
	"RS": {"RS", "SRB", "Serbia", "Serbien", "Serbie", "Srbija", "Serbija", "Srbsko"},
	"RU": {"RU", "RUS", "Russia", "Russland", "Russie", "Rusija", "Rusko"},
	"SE": {"SE", "S", "SWE", "Sweden", "Schweden", "Suède", "Sverige", "Švedija", "Švédsko"},
	"SI": {"SI", "SLO", "SVN", "Slovenia", "Slowenien", "Slovénie", "Slovenija", "Slovinsko"},
	"SK": {"SK", "SVK", "Slovakia", "Slowakei", "Slovaquie", "Slovensko", "Slovakija"},
	"TR": {"TR", "TUR", "Turkey", "Türkiye", "Türkei", "Turquie", "Turkija", "Turecko"},
	"UA": {"UA", "UKR", "Ukraine", "Ukraina", "Ukrajina"},
}

// countryIndex maps folded spellings to codes. Built once, read-only afterwards.
var countryIndex = buildCountryIndex()

func buildCountryIndex() map[string]string {
	idx := make(map[string]string)
	for code, names := range countryNames {
		for _, n := range names {
			idx[foldCountry(n)] = code
		}
	}
	return idx
}

// foldCountry lowercases, strips diacritics and collapses whitespace.
func foldCountry(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = cases.Fold().String(folded)
	folded = strings.Trim(folded, " .,;:-")
	return strings.Join(strings.Fields(folded), " ")
}

// CountryISO resolves a country name, vehicle code or alpha-2 code to its
// ISO 3166-1 alpha-2 code. Unknown input yields nil.
func CountryISO(name string) *string {
	key := foldCountry(name)
	if key == "" {
		return nil
	}
	code, ok := countryIndex[key]
	if !ok {
		return nil
	}
	return &code
}

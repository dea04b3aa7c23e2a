package importer

import "strings"

// Kind selects which reference collection a free-text value resolves against.
type Kind string

const (
	KindCategory Kind = "category"
	KindService  Kind = "service"
)

// keywordRule maps any of Keywords, found inside a lowercased value, to the
// entity of Kind whose lowercase name is Target.
type keywordRule struct {
	Kind     Kind
	Keywords []string
	Target   string
}

// keywordRules is walked in order; the first rule whose keyword occurs in the
// value and whose target exists wins.
var keywordRules = []keywordRule{
	{KindCategory, []string{"hébergement", "hosting"}, "services"},
	{KindCategory, []string{"serveur", "matériel"}, "hardware"},
	{KindCategory, []string{"logiciel", "licence"}, "software"},
	{KindCategory, []string{"formation", "training"}, "formation"},
	{KindCategory, []string{"maintenance", "support"}, "maintenance"},
	{KindCategory, []string{"télécom", "telecom"}, "services"},
	{KindCategory, []string{"daf", "production"}, "services"},
	{KindCategory, []string{"achat"}, "hardware"},
	{KindCategory, []string{"location", "consulting", "conseil"}, "services"},
	{KindCategory, []string{"dépenses", "expenses", "frais", "costs"}, "autres"},

	{KindService, []string{"daf"}, "finance"},
	{KindService, []string{"drh", "rh"}, "ressources humaines"},
	{KindService, []string{"marketing"}, "marketing"},
	{KindService, []string{"vente", "commercial"}, "ventes"},
	{KindService, []string{"support", "client"}, "support client"},
	{KindService, []string{"développement", "dev"}, "développement"},
	{KindService, []string{"infrastructure", "infra"}, "infrastructure"},
	{KindService, []string{"direction", "dg", "générale", "general"}, "direction générale"},
}

// fallbackCategory receives rows whose category cell is blank.
const fallbackCategory = "autres"

// heuristicTargets returns, in table order, the lowercase entity names the
// keyword table proposes for value.
func heuristicTargets(kind Kind, value string) []string {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return nil
	}

	var out []string

	for _, rule := range keywordRules {
		if rule.Kind != kind {
			continue
		}

		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				out = append(out, rule.Target)
				break
			}
		}
	}

	return out
}

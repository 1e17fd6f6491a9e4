package prize

// Fallback values used when no resolution rule matches.
const (
	UnknownCategory   = "Unknown"
	UnknownName       = "Unknown"
	MissingMotivation = "No citation available"
)

// prizeRule resolves one string field of a prize. ok is false when the rule
// does not apply and the next rule should be tried.
type prizeRule func(RawPrize) (value string, ok bool)

// laureateRule resolves one string field of a laureate.
type laureateRule func(RawLaureate) (value string, ok bool)

// Resolution rules, evaluated in order; the first match wins.
var (
	CategoryRules = []prizeRule{
		CategoryEnglish,
		func(RawPrize) (string, bool) { return UnknownCategory, true },
	}

	NameRules = []laureateRule{
		KnownNameEnglish,
		OrgNameEnglish,
		func(RawLaureate) (string, bool) { return UnknownName, true },
	}

	MotivationRules = []laureateRule{
		MotivationEnglish,
		func(RawLaureate) (string, bool) { return MissingMotivation, true },
	}
)

// CategoryEnglish picks the English category label.
func CategoryEnglish(p RawPrize) (string, bool) { return p.Category.English() }

// KnownNameEnglish picks the English personal name.
func KnownNameEnglish(l RawLaureate) (string, bool) { return l.KnownName.English() }

// OrgNameEnglish picks the English organization name.
func OrgNameEnglish(l RawLaureate) (string, bool) { return l.OrgName.English() }

// MotivationEnglish picks the English citation text.
func MotivationEnglish(l RawLaureate) (string, bool) { return l.Motivation.English() }

// Normalize maps a raw upstream record onto a Prize. It never fails: missing
// or malformed fields fall back to the defaults above, while year, date and
// amount are copied verbatim.
func Normalize(raw RawPrize) Prize {
	p := Prize{
		Year:        raw.AwardYear.Int(),
		Category:    resolvePrize(CategoryRules, raw),
		DateAwarded: raw.DateAwarded.Ptr(),
		PrizeAmount: raw.PrizeAmount.Int(),
		Winners:     make([]Laureate, 0, len(raw.Laureates)),
	}
	for _, l := range raw.Laureates {
		p.Winners = append(p.Winners, NormalizeLaureate(l))
	}
	return p
}

// NormalizeLaureate maps one raw laureate entry.
func NormalizeLaureate(raw RawLaureate) Laureate {
	return Laureate{
		ID:         string(raw.ID),
		Name:       resolveLaureate(NameRules, raw),
		Motivation: resolveLaureate(MotivationRules, raw),
		Share:      raw.Portion.Ptr(),
	}
}

// NormalizeAll normalizes a page of records, preserving upstream order.
// The result is never nil.
func NormalizeAll(raws []RawPrize) []Prize {
	out := make([]Prize, 0, len(raws))
	for _, r := range raws {
		out = append(out, Normalize(r))
	}
	return out
}

func resolvePrize(rules []prizeRule, raw RawPrize) string {
	for _, rule := range rules {
		if v, ok := rule(raw); ok {
			return v
		}
	}
	return ""
}

func resolveLaureate(rules []laureateRule, raw RawLaureate) string {
	for _, rule := range rules {
		if v, ok := rule(raw); ok {
			return v
		}
	}
	return ""
}

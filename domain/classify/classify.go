// Package classify assigns each record to exactly one rhythm category
// from its SNOMED-CT code set, with sub-bucketing inside the Borderline
// and Arrhythmia categories.
package classify

// Category is the top-level rhythm category of a record
type Category string

const (
	CategoryNormal     Category = "normal"
	CategoryBorderline Category = "borderline"
	CategoryArrhythmia Category = "arrhythmia"
	CategoryUnlabeled  Category = "unlabeled"
)

// Categories lists all categories in reporting order.
var Categories = []Category{
	CategoryNormal,
	CategoryBorderline,
	CategoryArrhythmia,
	CategoryUnlabeled,
}

// NormalCode is the SNOMED-CT code for sinus rhythm. A record is Normal
// only when its code set equals exactly {NormalCode}.
const NormalCode = "426783006"

// BorderlineCode is one of the three sinus variants treated as borderline
// rather than arrhythmic.
type BorderlineCode struct {
	Code string
	Name string
}

// BorderlineCodes are the three codes whose (non-empty) subsets classify
// as Borderline. Order is the reporting order of the sub-buckets.
var BorderlineCodes = []BorderlineCode{
	{Code: "426177001", Name: "Sinus Bradycardia"},
	{Code: "427084000", Name: "Sinus Tachycardia"},
	{Code: "427393009", Name: "Sinus Irregularity"},
}

// Group is a sub-bucket of the Arrhythmia category
type Group struct {
	Name  string
	Codes []string
}

// GroupOther collects arrhythmia records matching none of the named groups.
const GroupOther = "Other"

// Groups are checked in order; the first group sharing any code with the
// record wins. The order is part of the classification contract, so this
// is an explicit slice rather than a map.
var Groups = []Group{
	{Name: "AF/AFL", Codes: []string{"164889003", "164890007"}},
	{Name: "Conduction block", Codes: []string{"270492004", "233917008", "164909002", "59118001"}},
	{Name: "ST/T change", Codes: []string{"429622005", "164931005", "164934002", "59931005"}},
}

// GroupNames lists arrhythmia sub-bucket names in reporting order,
// including the trailing Other bucket.
func GroupNames() []string {
	names := make([]string, 0, len(Groups)+1)
	for _, g := range Groups {
		names = append(names, g.Name)
	}
	return append(names, GroupOther)
}

// Result is the classification of a single record
type Result struct {
	Category Category
	// BorderlineHits flags, per BorderlineCodes index, which of the three
	// sub-codes the record carries. Only set for Borderline records; a
	// record can hit more than one sub-bucket.
	BorderlineHits [3]bool
	// Group names the arrhythmia sub-bucket. Only set for Arrhythmia records.
	Group string
}

// Classify maps a record's code set to exactly one category. The rules
// partition all possible code sets:
//
//	empty                          -> Unlabeled
//	exactly {NormalCode}           -> Normal
//	non-empty subset of borderline -> Borderline
//	anything else                  -> Arrhythmia
func Classify(codes []string) Result {
	if len(codes) == 0 {
		return Result{Category: CategoryUnlabeled}
	}

	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}

	if len(set) == 1 {
		if _, ok := set[NormalCode]; ok {
			return Result{Category: CategoryNormal}
		}
	}

	if hits, all := borderlineHits(set); all {
		return Result{Category: CategoryBorderline, BorderlineHits: hits}
	}

	return Result{Category: CategoryArrhythmia, Group: arrhythmiaGroup(set)}
}

// borderlineHits reports which borderline sub-codes are present and
// whether every code in the set is borderline.
func borderlineHits(set map[string]struct{}) ([3]bool, bool) {
	var hits [3]bool
	matched := 0
	for i, bc := range BorderlineCodes {
		if _, ok := set[bc.Code]; ok {
			hits[i] = true
			matched++
		}
	}
	return hits, matched == len(set)
}

// arrhythmiaGroup returns the first group in priority order sharing any
// code with the set, or Other.
func arrhythmiaGroup(set map[string]struct{}) string {
	for _, g := range Groups {
		for _, c := range g.Codes {
			if _, ok := set[c]; ok {
				return g.Name
			}
		}
	}
	return GroupOther
}

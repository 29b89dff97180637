package schema

// Field is a canonical field name in the reinsurance reporting schema.
type Field string

// Canonical fields understood by the ratio engine and aggregator.
const (
	FieldDate             Field = "date"
	FieldLOB              Field = "lob"
	FieldRegion           Field = "region"
	FieldCedant           Field = "cedant"
	FieldGrossPremium     Field = "gross_premium"
	FieldCededPremium     Field = "ceded_premium"
	FieldEarnedPremium    Field = "earned_premium"
	FieldIncurredClaims   Field = "incurred_claims"
	FieldPaidClaims       Field = "paid_claims"
	FieldIBNR             Field = "ibnr"
	FieldRBNS             Field = "rbns"
	FieldAcqExpense       Field = "acq_expense"
	FieldAdmExpense       Field = "adm_expense"
	FieldInvestmentIncome Field = "investment_income"
	FieldClaimsCount      Field = "claims_count"
	FieldExposure         Field = "exposure"
	FieldSCR              Field = "scr"
	FieldOwnFunds         Field = "own_funds"
)

func (f Field) String() string { return string(f) }

// FieldKind classifies a canonical field's value type.
type FieldKind int

const (
	KindDate FieldKind = iota
	KindCategorical
	KindNumeric
)

// Registry maps canonical fields to their accepted column-name aliases.
// Alias lists are ordered by priority and matched case-insensitively.
// Read-only after initialization, so safe for concurrent lookups.
type Registry struct {
	fields  []Field
	aliases map[Field][]string
	kinds   map[Field]FieldKind
}

// Default returns the built-in registry covering English and French
// column headings commonly seen in cedant bordereaux.
func Default() *Registry {
	r := &Registry{
		aliases: map[Field][]string{},
		kinds:   map[Field]FieldKind{},
	}
	add := func(f Field, kind FieldKind, aliases ...string) {
		r.fields = append(r.fields, f)
		r.aliases[f] = aliases
		r.kinds[f] = kind
	}

	add(FieldDate, KindDate, "date", "period", "periode", "month", "quarter", "year")
	add(FieldLOB, KindCategorical, "lob", "branche", "line_of_business")
	add(FieldRegion, KindCategorical, "region", "zone", "pays", "geography")
	add(FieldCedant, KindCategorical, "cedant", "cedente", "ceding_company")
	add(FieldGrossPremium, KindNumeric, "gross_premium", "primes_brutes", "gwp")
	add(FieldCededPremium, KindNumeric, "ceded_premium", "primes_cedees", "ceded")
	add(FieldEarnedPremium, KindNumeric, "earned_premium", "primes_acquises", "ep")
	add(FieldIncurredClaims, KindNumeric, "incurred_claims", "sinistres_encourus", "icl")
	add(FieldPaidClaims, KindNumeric, "paid_claims", "sinistres_payes", "pcl")
	add(FieldIBNR, KindNumeric, "ibnr", "reserves_ibnr")
	add(FieldRBNS, KindNumeric, "rbns", "reserves_rbns")
	add(FieldAcqExpense, KindNumeric, "acq_expense", "frais_acquisition")
	add(FieldAdmExpense, KindNumeric, "adm_expense", "frais_admin", "g&a")
	add(FieldInvestmentIncome, KindNumeric, "investment_income", "produits_financiers")
	add(FieldClaimsCount, KindNumeric, "claims_count", "nombre_sinistres")
	add(FieldExposure, KindNumeric, "exposure", "exposition", "policies", "risks")
	add(FieldSCR, KindNumeric, "scr", "exigence_capital")
	add(FieldOwnFunds, KindNumeric, "own_funds", "fonds_propres")

	return r
}

// Fields returns the canonical fields in registry order.
func (r *Registry) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Aliases returns the ordered alias list for a field.
func (r *Registry) Aliases(f Field) []string {
	return r.aliases[f]
}

// Kind returns the value type of a canonical field.
func (r *Registry) Kind(f Field) FieldKind {
	return r.kinds[f]
}

// Required lists the fields without which ratio computation cannot proceed.
func Required() []Field {
	return []Field{FieldDate, FieldEarnedPremium, FieldIncurredClaims}
}

// CategoricalFields lists the grouping dimensions.
func CategoricalFields() []Field {
	return []Field{FieldLOB, FieldRegion, FieldCedant}
}

// NumericFields lists the raw monetary/count fields, in registry order.
func NumericFields() []Field {
	return []Field{
		FieldGrossPremium, FieldCededPremium, FieldEarnedPremium,
		FieldIncurredClaims, FieldPaidClaims, FieldIBNR, FieldRBNS,
		FieldAcqExpense, FieldAdmExpense, FieldInvestmentIncome,
		FieldClaimsCount, FieldExposure, FieldSCR, FieldOwnFunds,
	}
}

package kpi

import (
	"rekpi/domain/schema"
)

// Ratio column names produced by ComputeRatios, in output order.
var RatioColumns = []string{
	"loss_ratio",
	"acq_ratio",
	"adm_ratio",
	"expense_ratio",
	"combined_ratio",
	"operating_ratio",
	"cession_ratio",
	"retention_ratio",
	"frequency",
	"severity",
	"total_reserves",
	"reserve_coverage",
	"solvency_ratio",
}

// div guards every ratio: a zero or missing denominator yields the
// missing marker, never infinity and never zero.
func div(num, den float64) float64 {
	if IsMissing(num) || IsMissing(den) || den == 0 {
		return Missing()
	}
	return num / den
}

// orZero treats a missing component as zero inside a sum.
func orZero(v float64) float64 {
	if IsMissing(v) {
		return 0
	}
	return v
}

// ComputeRatios derives the technical and financial ratios row by row
// and attaches them as new columns. Pure: each ratio uses only the
// row's own raw fields, and recomputing is deterministic. Columns for
// absent inputs are still emitted, filled with the missing marker, so
// the output shape is stable across datasets.
func ComputeRatios(f *Frame) {
	n := f.Len()

	ep := f.numOrMissing(schema.FieldEarnedPremium.String())
	inc := f.numOrMissing(schema.FieldIncurredClaims.String())
	gwp := f.numOrMissing(schema.FieldGrossPremium.String())
	ced := f.numOrMissing(schema.FieldCededPremium.String())
	acq := f.numOrMissing(schema.FieldAcqExpense.String())
	adm := f.numOrMissing(schema.FieldAdmExpense.String())
	inv := f.numOrMissing(schema.FieldInvestmentIncome.String())
	cnt := f.numOrMissing(schema.FieldClaimsCount.String())
	expo := f.numOrMissing(schema.FieldExposure.String())
	ibnr := f.numOrMissing(schema.FieldIBNR.String())
	rbns := f.numOrMissing(schema.FieldRBNS.String())
	scr := f.numOrMissing(schema.FieldSCR.String())
	own := f.numOrMissing(schema.FieldOwnFunds.String())

	loss := make([]float64, n)
	acqR := make([]float64, n)
	admR := make([]float64, n)
	expR := make([]float64, n)
	comb := make([]float64, n)
	oper := make([]float64, n)
	cess := make([]float64, n)
	ret := make([]float64, n)
	freq := make([]float64, n)
	sev := make([]float64, n)
	resv := make([]float64, n)
	cover := make([]float64, n)
	solv := make([]float64, n)

	for i := 0; i < n; i++ {
		loss[i] = div(inc[i], ep[i])
		acqR[i] = div(acq[i], ep[i])
		admR[i] = div(adm[i], ep[i])

		// Expense components default to zero when absent, but the sum
		// is only defined when earned premium is usable.
		if IsMissing(ep[i]) || ep[i] == 0 {
			expR[i] = Missing()
			comb[i] = Missing()
			oper[i] = Missing()
		} else {
			expR[i] = orZero(acqR[i]) + orZero(admR[i])
			comb[i] = orZero(loss[i]) + expR[i]
			oper[i] = comb[i] - orZero(div(inv[i], ep[i]))
		}

		cess[i] = div(orZero(ced[i]), gwp[i])
		if IsMissing(gwp[i]) || gwp[i] == 0 {
			ret[i] = Missing()
		} else {
			ret[i] = (gwp[i] - orZero(ced[i])) / gwp[i]
		}

		freq[i] = div(cnt[i], expo[i])
		sev[i] = div(inc[i], cnt[i])

		if IsMissing(ibnr[i]) && IsMissing(rbns[i]) {
			resv[i] = Missing()
		} else {
			resv[i] = orZero(ibnr[i]) + orZero(rbns[i])
		}
		cover[i] = div(resv[i], inc[i])

		solv[i] = div(own[i], scr[i])
	}

	f.SetNum("loss_ratio", loss)
	f.SetNum("acq_ratio", acqR)
	f.SetNum("adm_ratio", admR)
	f.SetNum("expense_ratio", expR)
	f.SetNum("combined_ratio", comb)
	f.SetNum("operating_ratio", oper)
	f.SetNum("cession_ratio", cess)
	f.SetNum("retention_ratio", ret)
	f.SetNum("frequency", freq)
	f.SetNum("severity", sev)
	f.SetNum("total_reserves", resv)
	f.SetNum("reserve_coverage", cover)
	f.SetNum("solvency_ratio", solv)
}

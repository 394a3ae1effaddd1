package pricing

// Statutory accrual fractions: 1/12 of pay plus the one-third vacation bonus,
// 1/12 of pay for the 13th salary, and the severance fund provision.
const (
	StandardVacationRate   = 0.1111
	StandardThirteenthRate = 0.0833
	StandardSeveranceRate  = 0.05
)

// Resolve merges a matched rule (nil when none matched) with the global
// defaults into the parameter set consumed by Calculate.
func Resolve(rule *Rule, d Defaults) Params {
	p := Params{
		FromDefaults:          true,
		MinimumWage:           d.MinimumWage,
		WageFloor:             d.WageFloor,
		MealVoucher:           d.MealVoucher,
		MealVoucherMonthly:    d.MealVoucherMonthly,
		TransportDaily:        d.TransportDaily,
		FoodBasket:            d.FoodBasket,
		Uniform:               d.Uniform,
		TransportDiscountRate: d.TransportDiscountRate,
		MealDiscountRate:      d.MealDiscountRate,
		Rates:                 d.Rates,
		VacationRate:          StandardVacationRate,
		ThirteenthRate:        StandardThirteenthRate,
		SeveranceRate:         StandardSeveranceRate,
		MedicalExams:          d.MedicalExams,
		OtherOperational:      d.OtherOperational,
		UnhealthyBasis:        BasisMinimumWage,
	}
	if rule == nil {
		return p
	}

	p.RuleID = rule.ID
	p.FromDefaults = false

	if rule.WageFloor > 0 {
		p.WageFloor = rule.WageFloor
	}
	p.RoleBonus = rule.Bonus
	p.PantryAllowance = rule.PantryAllowance
	if p.PantryAllowance == 0 {
		p.PantryAllowance = rule.Benefits.PantryAllowance
	}

	b := rule.Benefits
	if b.MealVoucher > 0 {
		p.MealVoucher = b.MealVoucher
		p.MealVoucherMonthly = b.MealVoucherMonthly
	}
	if b.TransportDaily > 0 {
		p.TransportDaily = b.TransportDaily
	}
	if b.FoodBasket > 0 {
		p.FoodBasket = b.FoodBasket
	}
	// The operational uniform cost supersedes the older benefits field.
	switch {
	case rule.Operational.Uniform != nil:
		p.Uniform = *rule.Operational.Uniform
	case b.Uniform != nil:
		p.Uniform = *b.Uniform
	}

	setIf(&p.TransportDiscountRate, rule.Discounts.TransportPercent)
	setIf(&p.MealDiscountRate, rule.Discounts.MealPercent)
	p.ProvisionMealOnVacation = rule.Discounts.ProvisionMealOnVacation

	r := rule.Rates
	p.TaxFromRule = r.PIS != nil || r.COFINS != nil || r.ISS != nil
	setIf(&p.Rates.SocialSecurity, r.SocialSecurity)
	setIf(&p.Rates.HousingFund, r.HousingFund)
	setIf(&p.Rates.AccidentInsurance, r.AccidentInsurance)
	setIf(&p.Rates.PIS, r.PIS)
	setIf(&p.Rates.COFINS, r.COFINS)
	setIf(&p.Rates.ISS, r.ISS)
	setIf(&p.Rates.ProfitMargin, r.ProfitMargin)

	setIf(&p.VacationRate, rule.Provisions.Vacation)
	setIf(&p.ThirteenthRate, rule.Provisions.Thirteenth)
	setIf(&p.SeveranceRate, rule.Provisions.Severance)

	setIf(&p.MedicalExams, rule.Operational.MedicalExams)
	setIf(&p.OtherOperational, rule.Operational.Other)

	ap := rule.AdditionalPay
	p.UnhealthyByDefault = ap.Unhealthy
	p.UnhealthyGrade = ap.UnhealthyGrade
	p.HazardByDefault = ap.Hazard
	if ap.Basis == BasisRoleWage {
		p.UnhealthyBasis = BasisRoleWage
	}

	return p
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

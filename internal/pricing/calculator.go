package pricing

const (
	monthlyHours     = 220.0
	workDaysPerMonth = 22.0
	nightPremiumRate = 0.20
	hazardRate       = 0.30
	mealBreakRate    = 1.5

	// Variable pay reflects on the weekly rest day at one sixth.
	restDayDivisor = 6.0

	// pantryFallbackRate applies when a pantry allowance is flagged but no
	// amount is known from the rule or the request.
	pantryFallbackRate = 0.20
)

// nightHourFactor converts clock hours to paid hours: a legal night hour
// lasts 52 minutes and 30 seconds.
const nightHourFactor = 60.0 / 52.5

// Calculate prices one unit of a position. It is pure: the only failure is a
// combined tax rate that cannot be grossed up.
func Calculate(req PositionRequest, p Params) (Breakdown, error) {
	taxRate := p.Rates.TaxRate()
	if taxRate >= 1 || taxRate < 0 {
		terr := &TaxConfigError{Rate: taxRate}
		if p.TaxFromRule {
			terr.RuleID = p.RuleID
		}
		return Breakdown{}, terr
	}

	var b Breakdown

	// Base wage, role bonus and pantry allowance.
	b.BaseWage = p.WageFloor
	b.RoleBonus = p.RoleBonus
	pantry := p.PantryAllowance + nonNegative(req.PantryAmount)
	if pantry == 0 && req.Pantry {
		pantry = pantryFallbackRate * b.BaseWage
	}

	// Wage additions.
	hourly := (b.BaseWage + b.RoleBonus) / monthlyHours
	add := WageAdditions{PantryAllowance: pantry}

	if req.Unhealthy || p.UnhealthyByDefault {
		grade := req.UnhealthyGrade
		if grade == 0 {
			grade = p.UnhealthyGrade
		}
		basis := p.UnhealthyBasis
		if req.UnhealthyBasis != "" {
			basis = req.UnhealthyBasis
		}
		base := p.MinimumWage
		if basis == BasisRoleWage {
			base = b.BaseWage
		}
		add.Unhealthy = unhealthyGrades[grade] * base
	}

	// A manual pantry amount suppresses hazard pay.
	if (req.Hazard || p.HazardByDefault) && req.PantryAmount == 0 {
		add.Hazard = hazardRate * b.BaseWage
	}

	b.NightHours = NightHours(req.StartTime, req.EndTime)
	if b.NightHours > 0 {
		add.NightShift = b.NightHours * nightHourFactor * hourly * nightPremiumRate * workDaysPerMonth
	}
	if req.SuppressMealBreak {
		add.MealBreak = mealBreakRate * hourly * 1 * workDaysPerMonth
	}
	add.RestDayReflex = (add.NightShift + add.MealBreak) / restDayDivisor
	add.Total = add.sum()
	b.Additions = add

	b.Remuneration = b.BaseWage + b.RoleBonus + add.Total

	// Benefits.
	b.WorkingDays = MonthlyWorkingDays(req.WorkDays)
	ben := Benefits{
		FoodBasket:      p.FoodBasket,
		Uniform:         p.Uniform,
		PantryAllowance: pantry,
	}
	ben.Transport = p.TransportDaily * b.WorkingDays
	if d := min(p.TransportDiscountRate*b.BaseWage, ben.Transport); d > 0 {
		ben.TransportDiscount = -d
	}
	if p.MealVoucherMonthly {
		ben.MealVoucher = p.MealVoucher
	} else {
		ben.MealVoucher = p.MealVoucher * b.WorkingDays
	}
	if d := p.MealDiscountRate * ben.MealVoucher; d > 0 {
		ben.MealDiscount = -d
	}
	if p.ProvisionMealOnVacation {
		ben.VacationMeal = ben.MealVoucher / 12
	}
	ben.Total = ben.sum()
	b.Benefits = ben

	// Statutory payroll charges.
	ch := Charges{
		SocialSecurity:    b.Remuneration * p.Rates.SocialSecurity,
		HousingFund:       b.Remuneration * p.Rates.HousingFund,
		AccidentInsurance: b.Remuneration * p.Rates.AccidentInsurance,
	}
	ch.Total = ch.sum()
	b.Charges = ch

	// Accrual provisions.
	pr := Provisions{
		Vacation:   b.Remuneration * p.VacationRate,
		Thirteenth: b.Remuneration * p.ThirteenthRate,
		Severance:  b.Remuneration * p.SeveranceRate,
	}
	pr.Total = pr.sum()
	b.Provisions = pr

	op := Operational{MedicalExams: p.MedicalExams, Other: p.OtherOperational}
	op.Total = op.sum()
	b.Operational = op

	b.Materials = nonNegative(req.MaterialCost)

	b.OperatingCost = b.Remuneration + ben.Total + ch.Total + pr.Total + op.Total + b.Materials
	b.Profit = b.OperatingCost * p.Rates.ProfitMargin
	b.PriceBeforeTax = b.OperatingCost + b.Profit

	// Revenue taxes are levied on the final price, so gross up.
	b.TaxRate = taxRate
	b.UnitPrice = b.PriceBeforeTax / (1 - taxRate)
	b.Tax = b.UnitPrice - b.PriceBeforeTax

	return b, nil
}

func nonNegative(v float64) float64 {
	if !finite(v) || v < 0 {
		return 0
	}
	return v
}

package pricing

// DefaultRuleID designates the bundled rule used when rules exist for a
// function but none fits the requested location and role.
const DefaultRuleID = "default-limpeza-pr"

// DefaultHomeState is the primary jurisdiction of the bundled rule set.
const DefaultHomeState = "PR"

// StandardDefaults returns the global default parameters.
func StandardDefaults() Defaults {
	return Defaults{
		MinimumWage:           1518.00,
		WageFloor:             1518.00,
		MealVoucher:           25.00,
		TransportDaily:        11.00,
		FoodBasket:            150.00,
		Uniform:               40.00,
		TransportDiscountRate: 0.06,
		MealDiscountRate:      0,
		MedicalExams:          15.00,
		OtherOperational:      0,
		Rates: Rates{
			SocialSecurity:    0.20,
			HousingFund:       0.08,
			AccidentInsurance: 0.03,
			PIS:               0.0165,
			COFINS:            0.076,
			ISS:               0.05,
			ProfitMargin:      0.10,
		},
	}
}

// DefaultRules returns a fresh copy of the bundled rule set: one rule per
// supported function for the home state, plus a city rule for Curitiba
// cleaning with named roles.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:            DefaultRuleID,
			State:         "PR",
			Function:      FunctionCleaning,
			EffectiveDate: "2025-01-01",
			WageFloor:     1650.00,
			Benefits: RuleBenefits{
				MealVoucher:    24.00,
				TransportDaily: 11.00,
				FoodBasket:     160.00,
				Uniform:        ptr(35.00),
			},
			Discounts:     RuleDiscounts{TransportPercent: ptr(0.06), MealPercent: ptr(0.01)},
			Operational:   RuleOperational{MedicalExams: ptr(15.00), Uniform: ptr(40.00)},
			AdditionalPay: RuleAdditionalPay{Basis: BasisMinimumWage},
		},
		{
			ID:            "cct-limpeza-curitiba",
			State:         "PR",
			City:          "Curitiba",
			Function:      FunctionCleaning,
			EffectiveDate: "2025-02-01",
			WageFloor:     1720.00,
			Roles: []RoleEntry{
				{Name: "Servente", WageFloor: 1720.00},
				{Name: "Copeira", WageFloor: 1780.00, PantryAllowance: 150.00},
				{Name: "Encarregado", WageFloor: 2100.00, Bonus: 250.00},
			},
			Benefits: RuleBenefits{
				MealVoucher:    26.00,
				TransportDaily: 12.00,
				FoodBasket:     180.00,
			},
			Discounts: RuleDiscounts{
				TransportPercent:        ptr(0.06),
				MealPercent:             ptr(0.01),
				ProvisionMealOnVacation: true,
			},
			Operational:   RuleOperational{MedicalExams: ptr(18.00), Uniform: ptr(45.00)},
			AdditionalPay: RuleAdditionalPay{Basis: BasisMinimumWage},
		},
		{
			ID:            "default-seguranca-pr",
			State:         "PR",
			Function:      FunctionSecurity,
			EffectiveDate: "2025-01-01",
			WageFloor:     2450.00,
			Benefits: RuleBenefits{
				MealVoucher:    32.00,
				TransportDaily: 11.00,
				FoodBasket:     200.00,
			},
			Discounts:     RuleDiscounts{TransportPercent: ptr(0.06)},
			Rates:         RuleRates{AccidentInsurance: ptr(0.03), ProfitMargin: ptr(0.12)},
			Operational:   RuleOperational{MedicalExams: ptr(25.00), Uniform: ptr(80.00)},
			AdditionalPay: RuleAdditionalPay{Hazard: true},
		},
		{
			ID:            "default-portaria-pr",
			State:         "PR",
			Function:      FunctionConcierge,
			EffectiveDate: "2025-01-01",
			WageFloor:     1750.00,
			Benefits:      RuleBenefits{MealVoucher: 24.00, TransportDaily: 11.00, FoodBasket: 160.00},
			Discounts:     RuleDiscounts{TransportPercent: ptr(0.06)},
			Operational:   RuleOperational{MedicalExams: ptr(15.00), Uniform: ptr(40.00)},
		},
		{
			ID:            "default-recepcao-pr",
			State:         "PR",
			Function:      FunctionReception,
			EffectiveDate: "2025-01-01",
			WageFloor:     1800.00,
			Benefits:      RuleBenefits{MealVoucher: 24.00, TransportDaily: 11.00, FoodBasket: 160.00},
			Discounts:     RuleDiscounts{TransportPercent: ptr(0.06)},
			Operational:   RuleOperational{MedicalExams: ptr(15.00), Uniform: ptr(50.00)},
		},
		{
			ID:            "default-jardinagem-pr",
			State:         "PR",
			Function:      FunctionGardening,
			EffectiveDate: "2025-01-01",
			WageFloor:     1700.00,
			Benefits:      RuleBenefits{MealVoucher: 24.00, TransportDaily: 11.00, FoodBasket: 160.00},
			Discounts:     RuleDiscounts{TransportPercent: ptr(0.06)},
			Operational:   RuleOperational{MedicalExams: ptr(20.00), Uniform: ptr(60.00)},
			AdditionalPay: RuleAdditionalPay{Unhealthy: true, UnhealthyGrade: 20, Basis: BasisMinimumWage},
		},
		{
			ID:            "default-manutencao-pr",
			State:         "PR",
			Function:      FunctionMaintenance,
			EffectiveDate: "2025-01-01",
			WageFloor:     2100.00,
			Benefits:      RuleBenefits{MealVoucher: 26.00, TransportDaily: 11.00, FoodBasket: 180.00},
			Discounts:     RuleDiscounts{TransportPercent: ptr(0.06)},
			Operational:   RuleOperational{MedicalExams: ptr(20.00), Uniform: ptr(60.00)},
		},
	}
}

func ptr[T any](v T) *T {
	return &v
}

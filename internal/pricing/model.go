package pricing

// Functions covered by the bundled rule set.
const (
	FunctionCleaning    = "LIMPEZA"
	FunctionSecurity    = "SEGURANCA"
	FunctionConcierge   = "PORTARIA"
	FunctionReception   = "RECEPCAO"
	FunctionGardening   = "JARDINAGEM"
	FunctionMaintenance = "MANUTENCAO"
)

// Functions returns the functions covered by the bundled rule set.
func Functions() []string {
	return []string{
		FunctionCleaning,
		FunctionSecurity,
		FunctionConcierge,
		FunctionReception,
		FunctionGardening,
		FunctionMaintenance,
	}
}

// Calculation bases for unhealthy-conditions pay.
const (
	BasisMinimumWage = "MINIMUM_WAGE"
	BasisRoleWage    = "ROLE_WAGE"
)

// PositionRequest is one staffing line requested by the client.
type PositionRequest struct {
	Function          string   `json:"function"`
	State             string   `json:"state"`
	City              string   `json:"city,omitempty"`
	Role              string   `json:"role,omitempty"`
	WorkDays          []string `json:"workDays"`
	StartTime         string   `json:"startTime"`
	EndTime           string   `json:"endTime"`
	Headcount         int      `json:"headcount"`
	SuppressMealBreak bool     `json:"suppressMealBreak,omitempty"`
	MaterialCost      float64  `json:"materialCost,omitempty"`
	Pantry            bool     `json:"pantry,omitempty"`
	PantryAmount      float64  `json:"pantryAmount,omitempty"`
	Unhealthy         bool     `json:"unhealthy,omitempty"`
	UnhealthyGrade    int      `json:"unhealthyGrade,omitempty"`
	UnhealthyBasis    string   `json:"unhealthyBasis,omitempty"`
	Hazard            bool     `json:"hazard,omitempty"`
}

// RoleEntry is a named role inside a rule with its own pay floor.
type RoleEntry struct {
	Name            string  `json:"name"`
	WageFloor       float64 `json:"wageFloor"`
	Bonus           float64 `json:"bonus,omitempty"`
	PantryAllowance float64 `json:"pantryAllowance,omitempty"`
}

// RuleBenefits holds the benefit amounts granted by a rule.
type RuleBenefits struct {
	MealVoucher        float64  `json:"mealVoucher,omitempty"`
	MealVoucherMonthly bool     `json:"mealVoucherMonthly,omitempty"`
	TransportDaily     float64  `json:"transportDaily,omitempty"`
	FoodBasket         float64  `json:"foodBasket,omitempty"`
	Uniform            *float64 `json:"uniform,omitempty"`
	PantryAllowance    float64  `json:"pantryAllowance,omitempty"`
}

// RuleDiscounts configures the employee-paid shares of benefits.
type RuleDiscounts struct {
	TransportPercent        *float64 `json:"transportPercent,omitempty"`
	MealPercent             *float64 `json:"mealPercent,omitempty"`
	ProvisionMealOnVacation bool     `json:"provisionMealOnVacation,omitempty"`
}

// RuleRates overrides statutory and commercial rates. Nil fields keep the global default.
type RuleRates struct {
	SocialSecurity    *float64 `json:"socialSecurity,omitempty"`
	HousingFund       *float64 `json:"housingFund,omitempty"`
	AccidentInsurance *float64 `json:"accidentInsurance,omitempty"`
	PIS               *float64 `json:"pis,omitempty"`
	COFINS            *float64 `json:"cofins,omitempty"`
	ISS               *float64 `json:"iss,omitempty"`
	ProfitMargin      *float64 `json:"profitMargin,omitempty"`
}

// RuleProvisions overrides accrual rates, each a fraction of remuneration.
type RuleProvisions struct {
	Vacation   *float64 `json:"vacation,omitempty"`
	Thirteenth *float64 `json:"thirteenth,omitempty"`
	Severance  *float64 `json:"severance,omitempty"`
}

// RuleOperational holds monthly operational add-ons.
type RuleOperational struct {
	MedicalExams *float64 `json:"medicalExams,omitempty"`
	Uniform      *float64 `json:"uniform,omitempty"`
	Other        *float64 `json:"other,omitempty"`
}

// RuleAdditionalPay configures unhealthy and hazard pay defaults.
type RuleAdditionalPay struct {
	Unhealthy      bool   `json:"unhealthy,omitempty"`
	UnhealthyGrade int    `json:"unhealthyGrade,omitempty"`
	Hazard         bool   `json:"hazard,omitempty"`
	Basis          string `json:"basis,omitempty"`
}

// Rule is a jurisdiction and function specific wage/benefit rule, the
// analog of a collective agreement. An empty City covers the whole state and
// an empty State covers the whole country.
type Rule struct {
	ID              string            `json:"id"`
	State           string            `json:"state"`
	City            string            `json:"city,omitempty"`
	Function        string            `json:"function"`
	Role            string            `json:"role,omitempty"`
	EffectiveDate   string            `json:"effectiveDate,omitempty"`
	WageFloor       float64           `json:"wageFloor"`
	Bonus           float64           `json:"bonus,omitempty"`
	PantryAllowance float64           `json:"pantryAllowance,omitempty"`
	Roles           []RoleEntry       `json:"roles,omitempty"`
	Benefits        RuleBenefits      `json:"benefits"`
	Discounts       RuleDiscounts     `json:"discounts"`
	Rates           RuleRates         `json:"rates"`
	Provisions      RuleProvisions    `json:"provisions"`
	Operational     RuleOperational   `json:"operational"`
	AdditionalPay   RuleAdditionalPay `json:"additionalPay"`
}

// Rates groups the statutory charge, revenue tax and margin rates.
type Rates struct {
	SocialSecurity    float64 `json:"socialSecurity"`
	HousingFund       float64 `json:"housingFund"`
	AccidentInsurance float64 `json:"accidentInsurance"`
	PIS               float64 `json:"pis"`
	COFINS            float64 `json:"cofins"`
	ISS               float64 `json:"iss"`
	ProfitMargin      float64 `json:"profitMargin"`
}

// TaxRate returns the combined indirect tax rate.
func (r Rates) TaxRate() float64 {
	return r.PIS + r.COFINS + r.ISS
}

// Defaults holds the global parameters used whenever a rule is absent or
// leaves a value unset.
type Defaults struct {
	MinimumWage           float64 `json:"minimumWage"`
	WageFloor             float64 `json:"wageFloor"`
	MealVoucher           float64 `json:"mealVoucher"`
	MealVoucherMonthly    bool    `json:"mealVoucherMonthly"`
	TransportDaily        float64 `json:"transportDaily"`
	FoodBasket            float64 `json:"foodBasket"`
	Uniform               float64 `json:"uniform"`
	TransportDiscountRate float64 `json:"transportDiscountRate"`
	MealDiscountRate      float64 `json:"mealDiscountRate"`
	MedicalExams          float64 `json:"medicalExams"`
	OtherOperational      float64 `json:"otherOperational"`
	Rates                 Rates   `json:"rates"`
}

// Params is the fully-defaulted parameter set consumed by Calculate.
type Params struct {
	RuleID                  string  `json:"ruleId,omitempty"`
	FromDefaults            bool    `json:"fromDefaults"`
	MinimumWage             float64 `json:"minimumWage"`
	WageFloor               float64 `json:"wageFloor"`
	RoleBonus               float64 `json:"roleBonus"`
	PantryAllowance         float64 `json:"pantryAllowance"`
	MealVoucher             float64 `json:"mealVoucher"`
	MealVoucherMonthly      bool    `json:"mealVoucherMonthly"`
	TransportDaily          float64 `json:"transportDaily"`
	FoodBasket              float64 `json:"foodBasket"`
	Uniform                 float64 `json:"uniform"`
	TransportDiscountRate   float64 `json:"transportDiscountRate"`
	MealDiscountRate        float64 `json:"mealDiscountRate"`
	ProvisionMealOnVacation bool    `json:"provisionMealOnVacation"`
	Rates                   Rates   `json:"rates"`
	VacationRate            float64 `json:"vacationRate"`
	ThirteenthRate          float64 `json:"thirteenthRate"`
	SeveranceRate           float64 `json:"severanceRate"`
	MedicalExams            float64 `json:"medicalExams"`
	OtherOperational        float64 `json:"otherOperational"`
	UnhealthyByDefault      bool    `json:"unhealthyByDefault"`
	UnhealthyGrade          int     `json:"unhealthyGrade"`
	HazardByDefault         bool    `json:"hazardByDefault"`
	UnhealthyBasis          string  `json:"unhealthyBasis"`
	TaxFromRule             bool    `json:"taxFromRule"`
}

// WageAdditions itemizes the legal additions on top of the base wage.
type WageAdditions struct {
	Unhealthy       float64 `json:"unhealthy"`
	Hazard          float64 `json:"hazard"`
	NightShift      float64 `json:"nightShift"`
	MealBreak       float64 `json:"mealBreak"`
	RestDayReflex   float64 `json:"restDayReflex"`
	PantryAllowance float64 `json:"pantryAllowance"`
	Total           float64 `json:"total"`
}

func (a WageAdditions) sum() float64 {
	return a.Unhealthy + a.Hazard + a.NightShift + a.MealBreak + a.RestDayReflex + a.PantryAllowance
}

// Benefits itemizes benefit costs. Discounts are negative lines.
type Benefits struct {
	MealVoucher       float64 `json:"mealVoucher"`
	Transport         float64 `json:"transport"`
	FoodBasket        float64 `json:"foodBasket"`
	Uniform           float64 `json:"uniform"`
	PantryAllowance   float64 `json:"pantryAllowance"`
	VacationMeal      float64 `json:"vacationMeal"`
	MealDiscount      float64 `json:"mealDiscount"`
	TransportDiscount float64 `json:"transportDiscount"`
	Total             float64 `json:"total"`
}

func (b Benefits) sum() float64 {
	return b.MealVoucher + b.Transport + b.FoodBasket + b.Uniform + b.PantryAllowance + b.VacationMeal +
		b.MealDiscount + b.TransportDiscount
}

// Charges itemizes statutory payroll charges.
type Charges struct {
	SocialSecurity    float64 `json:"socialSecurity"`
	HousingFund       float64 `json:"housingFund"`
	AccidentInsurance float64 `json:"accidentInsurance"`
	Total             float64 `json:"total"`
}

func (c Charges) sum() float64 {
	return c.SocialSecurity + c.HousingFund + c.AccidentInsurance
}

// Provisions itemizes monthly accrual provisions.
type Provisions struct {
	Vacation   float64 `json:"vacation"`
	Thirteenth float64 `json:"thirteenth"`
	Severance  float64 `json:"severance"`
	Total      float64 `json:"total"`
}

func (p Provisions) sum() float64 {
	return p.Vacation + p.Thirteenth + p.Severance
}

// Operational itemizes operational add-ons.
type Operational struct {
	MedicalExams float64 `json:"medicalExams"`
	Other        float64 `json:"other"`
	Total        float64 `json:"total"`
}

func (o Operational) sum() float64 {
	return o.MedicalExams + o.Other
}

// Breakdown is the full itemized monthly cost of one unit of a position.
type Breakdown struct {
	BaseWage       float64       `json:"baseWage"`
	RoleBonus      float64       `json:"roleBonus"`
	NightHours     float64       `json:"nightHours"`
	WorkingDays    float64       `json:"workingDays"`
	Additions      WageAdditions `json:"additions"`
	Remuneration   float64       `json:"remuneration"`
	Benefits       Benefits      `json:"benefits"`
	Charges        Charges       `json:"charges"`
	Provisions     Provisions    `json:"provisions"`
	Operational    Operational   `json:"operational"`
	Materials      float64       `json:"materials"`
	OperatingCost  float64       `json:"operatingCost"`
	Profit         float64       `json:"profit"`
	PriceBeforeTax float64       `json:"priceBeforeTax"`
	TaxRate        float64       `json:"taxRate"`
	Tax            float64       `json:"tax"`
	UnitPrice      float64       `json:"unitPrice"`
}

// PositionResult is one priced position inside a proposal.
type PositionResult struct {
	Request      PositionRequest `json:"request"`
	RuleID       string          `json:"ruleId,omitempty"`
	MatchScore   int             `json:"matchScore"`
	FromDefaults bool            `json:"fromDefaults"`
	FallbackRule bool            `json:"fallbackRule"`
	Breakdown    Breakdown       `json:"breakdown"`
	UnitPrice    float64         `json:"unitPrice"`
	TotalPrice   float64         `json:"totalPrice"`
	TaxTotal     float64         `json:"taxTotal"`
	ProfitTotal  float64         `json:"profitTotal"`
}

// Summary holds proposal-level totals.
type Summary struct {
	MonthlyTotal float64 `json:"monthlyTotal"`
	AnnualTotal  float64 `json:"annualTotal"`
	TaxTotal     float64 `json:"taxTotal"`
	ProfitTotal  float64 `json:"profitTotal"`
}

// ProposalResult is the priced proposal returned by Engine.Aggregate.
type ProposalResult struct {
	ID           string           `json:"id"`
	Positions    []PositionResult `json:"positions"`
	Summary      Summary          `json:"summary"`
	BundledRules bool             `json:"bundledRules"`
}

// Package finance holds standalone calculators for loans and savings plans.
package finance

import (
	"math"

	"github.com/abdulaziz1076-hash/fifi/internal/core"
)

// monthsCap bounds open-ended projections so a tiny saving rate cannot
// produce an absurd horizon.
const monthsCap = 600

// Loan describes an amortized loan request.
type Loan struct {
	Amount     float64 `json:"amount"`
	AnnualRate float64 `json:"annualRate"`
	Months     int     `json:"months"`
}

// LoanSummary is the computed repayment overview.
type LoanSummary struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPayment   float64 `json:"totalPayment"`
	TotalInterest  float64 `json:"totalInterest"`
}

// Installment is one row of an amortization schedule.
type Installment struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

func (l Loan) Valid() bool {
	return l.Amount > 0 && l.Months > 0 && l.AnnualRate >= 0 &&
		!math.IsNaN(l.Amount) && !math.IsInf(l.Amount, 0)
}

// Summarize computes the fixed monthly payment using standard amortization.
// A zero interest rate degenerates to an even split of the principal.
func Summarize(l Loan) (LoanSummary, error) {
	if !l.Valid() {
		return LoanSummary{}, core.ErrInvalidAmount
	}

	monthly := monthlyPayment(l)
	total := monthly * float64(l.Months)
	return LoanSummary{
		MonthlyPayment: core.Round2(monthly),
		TotalPayment:   core.Round2(total),
		TotalInterest:  core.Round2(total - l.Amount),
	}, nil
}

// Schedule expands the loan into its month-by-month amortization rows.
// The final balance is forced to zero to absorb rounding drift.
func Schedule(l Loan) ([]Installment, error) {
	if !l.Valid() {
		return nil, core.ErrInvalidAmount
	}

	monthly := monthlyPayment(l)
	rate := l.AnnualRate / 100 / 12
	balance := l.Amount

	rows := make([]Installment, 0, l.Months)
	for m := 1; m <= l.Months; m++ {
		interest := balance * rate
		principal := monthly - interest
		balance -= principal
		if m == l.Months || balance < 0 {
			balance = 0
		}
		rows = append(rows, Installment{
			Month:     m,
			Payment:   core.Round2(monthly),
			Principal: core.Round2(principal),
			Interest:  core.Round2(interest),
			Balance:   core.Round2(balance),
		})
	}
	return rows, nil
}

// Affordability grades a monthly payment against a monthly income.
// Tiers follow the usual debt-to-income guidance.
type Affordability struct {
	Ratio float64 `json:"ratio"`
	Level string  `json:"level"`
}

func Afford(monthlyPayment, monthlyIncome float64) Affordability {
	if monthlyIncome <= 0 {
		return Affordability{Ratio: 0, Level: "unknown"}
	}
	ratio := core.Round2(monthlyPayment / monthlyIncome * 100)
	switch {
	case ratio > 50:
		return Affordability{Ratio: ratio, Level: "critical"}
	case ratio > 40:
		return Affordability{Ratio: ratio, Level: "high"}
	case ratio > 30:
		return Affordability{Ratio: ratio, Level: "moderate"}
	default:
		return Affordability{Ratio: ratio, Level: "comfortable"}
	}
}

// MonthsToTarget estimates how many months of fixed saving reach the target,
// capped at monthsCap. A non-positive saving yields -1 (unreachable).
func MonthsToTarget(target, current, monthlySaving float64) int {
	if target <= current {
		return 0
	}
	if monthlySaving <= 0 {
		return -1
	}
	months := int(math.Ceil((target - current) / monthlySaving))
	if months > monthsCap {
		return monthsCap
	}
	return months
}

// SavingsPlan describes a recurring saving toward a target, optionally
// earning a compounded annual return.
type SavingsPlan struct {
	Target        float64 `json:"target"`
	Current       float64 `json:"current"`
	MonthlySaving float64 `json:"monthlySaving"`
	AnnualRate    float64 `json:"annualRate"`
}

// SavingsProjection is the simulated outcome of a SavingsPlan.
// Months is -1 when the target is unreachable within the horizon cap.
type SavingsProjection struct {
	Months        int     `json:"months"`
	FinalAmount   float64 `json:"finalAmount"`
	TotalDeposits float64 `json:"totalDeposits"`
	TotalEarnings float64 `json:"totalEarnings"`
}

// Project simulates the plan month by month. The balance compounds at the
// monthly rate before each deposit is added.
func Project(p SavingsPlan) SavingsProjection {
	if p.Target <= p.Current {
		return SavingsProjection{Months: 0, FinalAmount: core.Round2(p.Current)}
	}
	if p.MonthlySaving <= 0 {
		return SavingsProjection{Months: -1, FinalAmount: core.Round2(p.Current)}
	}

	rate := p.AnnualRate / 100 / 12
	balance := p.Current
	deposits := 0.0
	for m := 1; m <= monthsCap; m++ {
		balance = balance*(1+rate) + p.MonthlySaving
		deposits += p.MonthlySaving
		if balance >= p.Target {
			return SavingsProjection{
				Months:        m,
				FinalAmount:   core.Round2(balance),
				TotalDeposits: core.Round2(deposits),
				TotalEarnings: core.Round2(balance - p.Current - deposits),
			}
		}
	}
	return SavingsProjection{
		Months:        -1,
		FinalAmount:   core.Round2(balance),
		TotalDeposits: core.Round2(deposits),
		TotalEarnings: core.Round2(balance - p.Current - deposits),
	}
}

func monthlyPayment(l Loan) float64 {
	if l.AnnualRate == 0 {
		return l.Amount / float64(l.Months)
	}
	rate := l.AnnualRate / 100 / 12
	factor := math.Pow(1+rate, float64(l.Months))
	return l.Amount * rate * factor / (factor - 1)
}

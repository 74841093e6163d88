package finance

import (
	"math"

	logx "github.com/ecotally-core/server/pkg/logger"
)

// LoanOption is one viable repayment plan for a requested amount.
type LoanOption struct {
	ProductID         string  `json:"product_id"`
	CreditType        string  `json:"credit_type"`
	RequestedAmount   float64 `json:"requested_amount"`
	InstallmentAmount float64 `json:"installment_amount"`
	NumInstallments   int     `json:"num_installments"`
	TotalAmount       float64 `json:"total_amount"`
	AnnualRate        float64 `json:"annual_rate"`
}

// annuityPayment is the fixed monthly payment for a loan of amount pv at the
// given monthly rate over n installments.
func annuityPayment(rate float64, n int, pv float64) float64 {
	if n <= 0 {
		return math.NaN()
	}
	if rate == 0 {
		return pv / float64(n)
	}
	factor := math.Pow(1+rate, float64(n))
	return pv * rate * factor / (factor - 1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LoanOptions evaluates every rule against the requested amount and returns
// the viable repayment plans. The bool reports whether any rule had to be
// skipped due to a calculation problem, so callers can warn without losing
// the good options.
func LoanOptions(requestedAmount float64, rules []ProductRule) ([]LoanOption, bool) {
	if len(rules) == 0 || requestedAmount <= 0 {
		return nil, false
	}

	var options []LoanOption
	hadErrors := false

	for _, rule := range rules {
		if requestedAmount < rule.MinAmount || requestedAmount > rule.MaxAmount {
			continue
		}
		if rule.NumInstallments <= 0 {
			logx.Error().Str("product_id", rule.ProductID).Int("num_installments", rule.NumInstallments).Msg("invalid installment count in rule")
			hadErrors = true
			continue
		}

		monthlyRate := rule.AnnualRate / 12
		if monthlyRate <= -1 {
			logx.Error().Str("product_id", rule.ProductID).Float64("annual_rate", rule.AnnualRate).Msg("invalid rate in rule")
			hadErrors = true
			continue
		}
		payment := annuityPayment(monthlyRate, rule.NumInstallments, requestedAmount)
		if math.IsNaN(payment) || math.IsInf(payment, 0) {
			logx.Error().Str("product_id", rule.ProductID).Msg("installment calculation produced no finite value")
			hadErrors = true
			continue
		}
		payment = round2(payment)

		options = append(options, LoanOption{
			ProductID:         rule.ProductID,
			CreditType:        rule.CreditType,
			RequestedAmount:   requestedAmount,
			InstallmentAmount: payment,
			NumInstallments:   rule.NumInstallments,
			TotalAmount:       round2(payment * float64(rule.NumInstallments)),
			AnnualRate:        rule.AnnualRate,
		})
	}

	logx.Info().Float64("requested_amount", requestedAmount).Int("options", len(options)).Bool("had_errors", hadErrors).Msg("loan options calculated")
	return options, hadErrors
}

// Package finance holds the loan-product utilities that ship alongside the
// footprint assistant: a product-rule catalogue and an annuity calculator.
// They share nothing with the footprint pipeline beyond the logging setup.
package finance

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	logx "github.com/ecotally-core/server/pkg/logger"
)

// ProductRule describes one loan product and the amount band it applies to.
type ProductRule struct {
	ProductID       string  `json:"product_id"`
	CreditType      string  `json:"credit_type"`
	MinAmount       float64 `json:"min_amount"`
	MaxAmount       float64 `json:"max_amount"`
	AnnualRate      float64 `json:"annual_rate"`
	NumInstallments int     `json:"num_installments"`
}

// defaultRules seed the catalogue when no rules file exists yet.
var defaultRules = []ProductRule{
	{ProductID: "MICRO_12", CreditType: "micro", MinAmount: 500, MaxAmount: 4999.99, AnnualRate: 0.95, NumInstallments: 12},
	{ProductID: "CONSUMER_12", CreditType: "consumer", MinAmount: 5000, MaxAmount: 25000, AnnualRate: 0.85, NumInstallments: 12},
	{ProductID: "CONSUMER_24", CreditType: "consumer", MinAmount: 10000, MaxAmount: 50000, AnnualRate: 0.88, NumInstallments: 24},
}

// LoadRules reads the product catalogue from path, optionally filtered by
// credit type (case-insensitive; the empty filter and "other" return
// everything). A missing or unreadable file falls back to the built-in
// defaults and writes them to path for next time.
func LoadRules(path, creditTypeFilter string) []ProductRule {
	rules := readRules(path)

	filter := strings.ToLower(strings.TrimSpace(creditTypeFilter))
	if filter == "" || filter == "other" {
		return rules
	}

	var filtered []ProductRule
	for _, r := range rules {
		if strings.ToLower(r.CreditType) == filter {
			filtered = append(filtered, r)
		}
	}
	logx.Info().Str("credit_type", filter).Int("matched", len(filtered)).Int("total", len(rules)).Msg("product rules filtered")
	return filtered
}

func readRules(path string) []ProductRule {
	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logx.Error().Err(err).Str("path", path).Msg("failed to read product rules, using defaults")
			return defaultRules
		}
		logx.Warn().Str("path", path).Msg("product rules file not found, seeding defaults")
		saveDefaultRules(path)
		return defaultRules
	}

	var rules []ProductRule
	if err := json.Unmarshal(b, &rules); err != nil || len(rules) == 0 {
		logx.Warn().Err(err).Str("path", path).Msg("invalid product rules file, seeding defaults")
		saveDefaultRules(path)
		return defaultRules
	}
	return rules
}

func saveDefaultRules(path string) {
	b, err := json.MarshalIndent(defaultRules, "", "  ")
	if err != nil {
		logx.Error().Err(err).Msg("failed to marshal default rules")
		return
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		logx.Error().Err(err).Str("path", path).Msg("failed to write default rules")
	}
}

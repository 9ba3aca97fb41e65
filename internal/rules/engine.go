// Package rules provides the CEL-Go based custom rule engine.
//
// Custom rules extend the five built-in patterns: each rule is a
// boolean CEL expression over a transaction and its derived fields,
// contributing a fixed integer weight to the risk score when it fires.
package rules

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/opensource-finance/kestrel/internal/dataset"
	"github.com/opensource-finance/kestrel/internal/domain"
	"github.com/opensource-finance/kestrel/internal/patterns"
)

// RuleConfig defines one custom rule.
type RuleConfig struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Expression is a CEL expression returning bool.
	Expression string `json:"expression"`

	// Weight is added to the risk score when the expression fires.
	Weight int `json:"weight"`

	Enabled bool `json:"enabled"`
}

// Firing records a rule that fired for a transaction.
type Firing struct {
	RuleID string
	Weight int
}

// Engine compiles and evaluates custom rules.
type Engine struct {
	env      *cel.Env
	compiled []compiledRule
}

type compiledRule struct {
	config  *RuleConfig
	program cel.Program
}

// NewEngine creates a rule engine with the transaction variable set.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("tx", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("amount", cel.DoubleType),
		cel.Variable("tx_type", cel.StringType),
		cel.Variable("merchant_category", cel.StringType),
		cel.Variable("location", cel.StringType),
		cel.Variable("channel", cel.StringType),
		cel.Variable("is_international", cel.BoolType),
		// Derived fields from the built-in patterns
		cel.Variable("deviation_ratio", cel.DoubleType),
		cel.Variable("daily_count", cel.IntType),
		cel.Variable("time_diff_hours", cel.DoubleType),
		cel.Variable("balance_drop_ratio", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{env: env}, nil
}

// LoadFile reads rule configurations from a JSON file.
func LoadFile(path string) ([]*RuleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var configs []*RuleConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return configs, nil
}

// LoadRules compiles enabled rules into the engine. A compilation
// error aborts the load; rules are all-or-nothing.
func (e *Engine) LoadRules(configs []*RuleConfig) error {
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		compiled, err := e.compile(cfg)
		if err != nil {
			return err
		}
		e.compiled = append(e.compiled, compiled)
	}
	return nil
}

// RulesCount returns the number of loaded rules.
func (e *Engine) RulesCount() int {
	return len(e.compiled)
}

// EvaluateTable evaluates every loaded rule against every transaction
// and returns firings keyed by transaction ID. An evaluation error
// fails the run; a misconfigured rule must not produce partial
// reports.
func (e *Engine) EvaluateTable(table *dataset.Table, res *patterns.Results) (map[int64][]Firing, error) {
	if len(e.compiled) == 0 {
		return nil, nil
	}

	firings := make(map[int64][]Firing)
	for i := range table.Rows {
		tx := &table.Rows[i]
		activation := e.activation(tx, res)

		for _, rule := range e.compiled {
			out, _, err := rule.program.Eval(activation)
			if err != nil {
				return nil, fmt.Errorf("rule %s: transaction %d: %w", rule.config.ID, tx.ID, err)
			}
			fired, ok := out.(types.Bool)
			if !ok {
				return nil, fmt.Errorf("rule %s: transaction %d: non-boolean result", rule.config.ID, tx.ID)
			}
			if bool(fired) {
				firings[tx.ID] = append(firings[tx.ID], Firing{
					RuleID: rule.config.ID,
					Weight: rule.config.Weight,
				})
			}
		}
	}

	return firings, nil
}

func (e *Engine) activation(tx *domain.Transaction, res *patterns.Results) map[string]any {
	return map[string]any{
		"tx": map[string]any{
			"id":                tx.ID,
			"account_id":        tx.AccountID,
			"amount":            tx.Amount,
			"type":              string(tx.Type),
			"merchant_category": tx.MerchantCategory,
			"location":          tx.Location,
			"channel":           tx.Channel,
			"is_international":  tx.International,
			"balance_after":     tx.BalanceAfter,
		},
		"amount":             tx.Amount,
		"tx_type":            string(tx.Type),
		"merchant_category":  tx.MerchantCategory,
		"location":           tx.Location,
		"channel":            tx.Channel,
		"is_international":   tx.International,
		"deviation_ratio":    res.HighAmount.Deviation[tx.ID],
		"daily_count":        int64(res.RapidFire.DailyCount[tx.ID]),
		"time_diff_hours":    res.Location.TimeDiff[tx.ID],
		"balance_drop_ratio": res.BalanceDrain.DropRatio[tx.ID],
	}
}

func (e *Engine) compile(cfg *RuleConfig) (compiledRule, error) {
	if cfg.ID == "" {
		return compiledRule{}, fmt.Errorf("rule without id")
	}
	if cfg.Weight <= 0 {
		return compiledRule{}, fmt.Errorf("rule %s: weight must be positive", cfg.ID)
	}

	ast, issues := e.env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return compiledRule{}, fmt.Errorf("failed to compile rule %s: %w", cfg.ID, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return compiledRule{}, fmt.Errorf("rule %s: expression must return bool, got %s", cfg.ID, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return compiledRule{}, fmt.Errorf("failed to create program for rule %s: %w", cfg.ID, err)
	}

	return compiledRule{config: cfg, program: program}, nil
}

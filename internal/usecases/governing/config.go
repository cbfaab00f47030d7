package governing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/config"
)

const (
	defaultCooldown     = 5 * time.Minute
	defaultLoopWindow   = time.Minute
	defaultAlertLogSize = 200
)

var ErrInvalidConfig = errors.New("invalid governance config")

// Config são os limites ajustáveis pelo operador. Limites <= 0 ficam desligados.
type Config struct {
	DailyTokenLimit        int64           `json:"daily_token_limit"`
	DailyCostLimit         decimal.Decimal `json:"daily_cost_limit"`
	LoopDetectionThreshold int             `json:"loop_detection_threshold"`
	BudgetWarningPct       float64         `json:"budget_warning_pct"`
	Cooldown               time.Duration   `json:"-"`
	LoopWindow             time.Duration   `json:"-"`
}

func DefaultConfig() Config {
	return Config{
		DailyTokenLimit:        2_000_000,
		DailyCostLimit:         decimal.NewFromInt(50),
		LoopDetectionThreshold: 5,
		BudgetWarningPct:       80,
		Cooldown:               defaultCooldown,
		LoopWindow:             defaultLoopWindow,
	}
}

// FromSettings monta a configuração a partir das variáveis de ambiente
func FromSettings(settings config.Governance) (Config, error) {
	cfg := DefaultConfig()
	cfg.DailyTokenLimit = settings.DailyTokenLimit
	cfg.LoopDetectionThreshold = settings.LoopDetectionThreshold
	cfg.BudgetWarningPct = settings.BudgetWarningPct

	if settings.DailyCostLimit != "" {
		limit, err := decimal.NewFromString(settings.DailyCostLimit)
		if err != nil {
			return Config{}, fmt.Errorf("%w: daily cost limit %q: %v", ErrInvalidConfig, settings.DailyCostLimit, err)
		}
		cfg.DailyCostLimit = limit
	}
	if settings.Cooldown > 0 {
		cfg.Cooldown = settings.Cooldown
	}
	if settings.LoopWindow > 0 {
		cfg.LoopWindow = settings.LoopWindow
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.BudgetWarningPct < 0 || c.BudgetWarningPct > 100 {
		return fmt.Errorf("%w: budget_warning_pct must be between 0 and 100", ErrInvalidConfig)
	}
	if c.Cooldown <= 0 {
		return fmt.Errorf("%w: cooldown must be positive", ErrInvalidConfig)
	}
	if c.LoopWindow <= 0 {
		return fmt.Errorf("%w: loop window must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c Config) tokenLimitEnabled() bool {
	return c.DailyTokenLimit > 0
}

func (c Config) costLimitEnabled() bool {
	return c.DailyCostLimit.IsPositive()
}

// warningThreshold é o custo a partir do qual o alerta de orçamento dispara
func (c Config) warningThreshold() (decimal.Decimal, bool) {
	if !c.costLimitEnabled() || c.BudgetWarningPct <= 0 {
		return decimal.Zero, false
	}
	return c.DailyCostLimit.Mul(decimal.NewFromFloat(c.BudgetWarningPct)).Div(decimal.NewFromInt(100)), true
}

// breach descreve o limite estourado, ou vazio quando tudo está dentro do orçamento
func (c Config) breach(counters Counters) string {
	if c.tokenLimitEnabled() && counters.DailyTokens > c.DailyTokenLimit {
		return fmt.Sprintf("daily token usage %d exceeds limit %d", counters.DailyTokens, c.DailyTokenLimit)
	}
	if c.costLimitEnabled() && counters.DailyCost.GreaterThan(c.DailyCostLimit) {
		return fmt.Sprintf("daily cost %s exceeds limit %s", counters.DailyCost.StringFixed(4), c.DailyCostLimit.StringFixed(4))
	}
	return ""
}

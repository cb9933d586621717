package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// FPL API
	FPLBaseURL string `mapstructure:"FPL_BASE_URL"`

	// Redis (empty URL disables caching)
	RedisURL        string `mapstructure:"REDIS_URL"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL_SECONDS"`

	// Scoring
	FormWeight float64 `mapstructure:"FORM_WEIGHT"`

	// Squad rules
	Budget           float64 `mapstructure:"BUDGET"`
	SquadSize        int     `mapstructure:"SQUAD_SIZE"`
	SquadGoalkeepers int     `mapstructure:"SQUAD_GOALKEEPERS"`
	SquadDefenders   int     `mapstructure:"SQUAD_DEFENDERS"`
	SquadMidfielders int     `mapstructure:"SQUAD_MIDFIELDERS"`
	SquadForwards    int     `mapstructure:"SQUAD_FORWARDS"`
	MaxPerClub       int     `mapstructure:"MAX_PER_CLUB"`

	// Lineup rules
	LineupSize           int `mapstructure:"LINEUP_SIZE"`
	LineupGoalkeepers    int `mapstructure:"LINEUP_GOALKEEPERS"`
	LineupMinDefenders   int `mapstructure:"LINEUP_MIN_DEFENDERS"`
	LineupMinMidfielders int `mapstructure:"LINEUP_MIN_MIDFIELDERS"`
	LineupMinForwards    int `mapstructure:"LINEUP_MIN_FORWARDS"`

	// Solver
	SolveTimeoutSeconds int `mapstructure:"SOLVE_TIMEOUT_SECONDS"`
	SolverWorkers       int `mapstructure:"SOLVER_WORKERS"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("FPL_BASE_URL", "https://fantasy.premierleague.com")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CACHE_TTL_SECONDS", 3600)
	viper.SetDefault("FORM_WEIGHT", 2.0)

	// Standard FPL squad rules
	viper.SetDefault("BUDGET", 100.0)
	viper.SetDefault("SQUAD_SIZE", 15)
	viper.SetDefault("SQUAD_GOALKEEPERS", 2)
	viper.SetDefault("SQUAD_DEFENDERS", 5)
	viper.SetDefault("SQUAD_MIDFIELDERS", 5)
	viper.SetDefault("SQUAD_FORWARDS", 3)
	viper.SetDefault("MAX_PER_CLUB", 3)

	// Standard FPL formation rules
	viper.SetDefault("LINEUP_SIZE", 11)
	viper.SetDefault("LINEUP_GOALKEEPERS", 1)
	viper.SetDefault("LINEUP_MIN_DEFENDERS", 3)
	viper.SetDefault("LINEUP_MIN_MIDFIELDERS", 2)
	viper.SetDefault("LINEUP_MIN_FORWARDS", 1)

	viper.SetDefault("SOLVE_TIMEOUT_SECONDS", 30)
	viper.SetDefault("SOLVER_WORKERS", 1)

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

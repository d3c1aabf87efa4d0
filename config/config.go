// config/config.go
package config

import (
	"time"

	"github.com/caarlos0/env"
)

// Config holds the service-level settings. Values come from the environment
// (a .env file is loaded first when present, see main.go).
type Config struct {
	Port             string `env:"PORT" envDefault:"5300"`
	DatabaseURL      string `env:"DATABASE_URL"`
	GameServiceToken string `env:"GAME_SERVICE_TOKEN"`
	AllowedOrigins   string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`

	Game GameConfig
}

// GameConfig holds the tunables of the live-match subsystem. Everything a
// match room or the simulation loop needs is injected through this struct so
// tests can run rooms with tiny timings and custom thresholds.
type GameConfig struct {
	TickRate          int           `env:"GAME_TICK_RATE" envDefault:"60"`
	WinThreshold      int           `env:"GAME_WIN_THRESHOLD" envDefault:"11"`
	FieldWidth        float64       `env:"GAME_FIELD_WIDTH" envDefault:"16"`
	FieldDepth        float64       `env:"GAME_FIELD_DEPTH" envDefault:"20"`
	PaddleWidth       float64       `env:"GAME_PADDLE_WIDTH" envDefault:"3"`
	GraceDelay        time.Duration `env:"GAME_GRACE_DELAY" envDefault:"5s"`
	CountdownStart    int           `env:"GAME_COUNTDOWN_START" envDefault:"3"`
	CountdownInterval time.Duration `env:"GAME_COUNTDOWN_INTERVAL" envDefault:"1s"`

	QueueSweepInterval time.Duration `env:"QUEUE_SWEEP_INTERVAL" envDefault:"30s"`
}

// Load parses the full configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := env.Parse(&cfg.Game); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// MaxPaddleX is the server-enforced paddle clamp: the paddle center may move
// until its edge touches the side wall.
func (g GameConfig) MaxPaddleX() float64 {
	return (g.FieldWidth - g.PaddleWidth) / 2
}

// TickInterval converts the tick rate into the simulation step period.
func (g GameConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(g.TickRate)
}

// Default returns the game tunables with their env defaults applied, used by
// tests that want production physics without touching the environment.
func Default() GameConfig {
	return GameConfig{
		TickRate:           60,
		WinThreshold:       11,
		FieldWidth:         16,
		FieldDepth:         20,
		PaddleWidth:        3,
		GraceDelay:         5 * time.Second,
		CountdownStart:     3,
		CountdownInterval:  time.Second,
		QueueSweepInterval: 30 * time.Second,
	}
}

package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/snakeladder-backend/internal/entity"
)

type Config struct {
	LogLevel   string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string        `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"24h"`
	Redis      Redis         `yaml:"redis"`
	Board      Board         `yaml:"board"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Board struct {
	Side     int         `yaml:"side" env-default:"10"`
	CellSize int         `yaml:"cell-size" env-default:"50"`
	Snakes   map[int]int `yaml:"snakes"`
	Ladders  map[int]int `yaml:"ladders"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// Transitions - the configured tables, or the default layout when none are set.
func (that *Board) Transitions() entity.Transitions {
	if len(that.Snakes) == 0 && len(that.Ladders) == 0 {
		return entity.DefaultTransitions()
	}

	return entity.Transitions{
		Snakes:  that.Snakes,
		Ladders: that.Ladders,
	}
}

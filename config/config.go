package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de capetica.
type Config struct {
	Content    ContentConfig    `yaml:"content"`
	Game       GameConfig       `yaml:"game"`
	Balance    BalanceConfig    `yaml:"balance"`
	Simulation SimulationConfig `yaml:"simulation"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
}

// ContentConfig indica de dónde se lee el contenido del juego.
type ContentConfig struct {
	Dir string `yaml:"dir"` // vacío = defaults embebidos
}

// GameConfig son las preferencias de una partida nueva.
type GameConfig struct {
	Seed       uint32 `yaml:"seed"` // 0 = derivada del id de la partida
	Difficulty string `yaml:"difficulty"`
	Profession string `yaml:"profession"` // vacío = al azar
	Goal       string `yaml:"goal"`
}

// BalanceConfig controla el check de aceptación.
type BalanceConfig struct {
	Runs       int   `yaml:"runs"`
	Turns      int   `yaml:"turns"`
	ShortTurns int   `yaml:"short_turns"`
	Seed       int64 `yaml:"seed"`
	Workers    int   `yaml:"workers"`
}

// SimulationConfig controla el informe de simulación.
type SimulationConfig struct {
	Runs      int    `yaml:"runs"`
	Months    int    `yaml:"months"`
	Seed      int64  `yaml:"seed"`
	ReportDir string `yaml:"report_dir"`
	Workers   int    `yaml:"workers"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato, nivel y destino del logging.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug | info | warn | error
	Format     string `yaml:"format"` // text | json
	File       string `yaml:"file"`   // vacío = solo stderr
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Default devuelve la configuración sin archivo: defaults más entorno.
func Default() *Config {
	var cfg Config
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están
// presentes. Los números que no parsean se ignoran.
func applyEnvOverrides(cfg *Config) {
	envInt(&cfg.Balance.Runs, "RUNS")
	envInt(&cfg.Balance.Turns, "TURNS")
	envInt(&cfg.Balance.ShortTurns, "SHORT_TURNS")
	envInt64(&cfg.Balance.Seed, "SEED")
	envInt(&cfg.Simulation.Runs, "SIM_RUNS")
	envInt(&cfg.Simulation.Months, "SIM_MONTHS")
	envInt64(&cfg.Simulation.Seed, "SIM_SEED")

	if v := os.Getenv("CAPETICA_CONTENT_DIR"); v != "" {
		cfg.Content.Dir = v
	}
	if v := os.Getenv("CAPETICA_DB"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func envInt(dst *int, key string) {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func envInt64(dst *int64, key string) {
	if v, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		*dst = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Balance.Runs <= 0 {
		cfg.Balance.Runs = 10000
	}
	if cfg.Balance.Turns <= 0 {
		cfg.Balance.Turns = 50
	}
	if cfg.Balance.ShortTurns <= 0 {
		cfg.Balance.ShortTurns = 15
	}
	if cfg.Balance.Seed == 0 {
		cfg.Balance.Seed = 1337
	}
	if cfg.Balance.Workers <= 0 {
		cfg.Balance.Workers = runtime.NumCPU()
	}
	if cfg.Simulation.Runs <= 0 {
		cfg.Simulation.Runs = 10000
	}
	if cfg.Simulation.Months <= 0 {
		cfg.Simulation.Months = 60
	}
	if cfg.Simulation.Seed == 0 {
		cfg.Simulation.Seed = 12345
	}
	if cfg.Simulation.ReportDir == "" {
		cfg.Simulation.ReportDir = "reports"
	}
	if cfg.Simulation.Workers <= 0 {
		cfg.Simulation.Workers = runtime.NumCPU()
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "capetica.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = 10
	}
	if cfg.Log.MaxBackups <= 0 {
		cfg.Log.MaxBackups = 3
	}
	if cfg.Log.MaxAgeDays <= 0 {
		cfg.Log.MaxAgeDays = 28
	}
}

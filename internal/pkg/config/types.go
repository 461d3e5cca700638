package config

import "time"

// Config holds the application configuration
type Config struct {
	Logger        LoggerConfig        `mapstructure:"logger" validate:"required"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
	Enlightenment EnlightenmentConfig `mapstructure:"enlightenment"`
	Server        ServerConfig        `mapstructure:"server"`
	Health        HealthConfig        `mapstructure:"health"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"required,oneof=json console"`
	OutputPath string `mapstructure:"output_path" validate:"required"`
}

// SchedulerConfig holds the shared worker pool configuration
type SchedulerConfig struct {
	// Workers is the number of goroutines kept while idle; 0 means runtime.NumCPU()
	Workers int `mapstructure:"workers" validate:"gte=0"`
	// MaxWorkers caps pool growth while every worker is busy; 0 means no cap
	MaxWorkers int `mapstructure:"max_workers" validate:"gte=0"`
	// IdleTimeout retires goroutines added by growth
	IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"gte=0"`
	// QueueSize bounds the pool queue; 0 means unbounded
	QueueSize       int           `mapstructure:"queue_size" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// EnlightenmentConfig shapes the host probe used by provider discovery
type EnlightenmentConfig struct {
	// Disabled lists capability kinds whose specialized providers are skipped
	Disabled []string `mapstructure:"disabled" validate:"dive,oneof=work-queue timer periodic long-running stopwatch task-pool"`
	// AllowThreads=false simulates a host that forbids dedicated threads
	AllowThreads bool `mapstructure:"allow_threads"`
	// PinThreads binds long-running threads to a CPU where the host supports it
	PinThreads bool `mapstructure:"pin_threads"`
	// EnableTaskPool registers the task pool provider
	EnableTaskPool bool `mapstructure:"enable_task_pool"`
}

// ServerConfig holds the diagnostics HTTP server configuration
type ServerConfig struct {
	Host            string `mapstructure:"host" validate:"required"`
	Port            int    `mapstructure:"port" validate:"required,gt=0,lte=65535"`
	ReadTimeout     int    `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    int    `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// HealthConfig holds health check configuration
type HealthConfig struct {
	AsyncMode      bool          `mapstructure:"async_mode"`
	CheckInterval  time.Duration `mapstructure:"check_interval" validate:"gte=0"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout" validate:"gte=0"`
	MaxQueueLength int           `mapstructure:"max_queue_length" validate:"gte=0"`
}

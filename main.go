package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v2"

	"codonlens/dataset"
	"codonlens/db"
	qhttp "codonlens/http"
	"codonlens/ml"
	"codonlens/monitoring"
)

type Config struct {
	Http struct {
		Port           int      `yaml:"port"`
		TimeoutSec     int      `yaml:"timeout_sec"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Dataset struct {
		Path  string `yaml:"path"`
		Watch bool   `yaml:"watch"`
	} `yaml:"dataset"`
	Model struct {
		Path        string `yaml:"path"`
		MetricsPath string `yaml:"metrics_path"`
	} `yaml:"model"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Cache struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logger
	logger := initLogger(config.Log.Level, config.Log.File)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// 3. Load the usage table
	table, err := dataset.LoadCSV(config.Dataset.Path)
	if err != nil {
		zap.S().Fatalw("failed to load dataset", "path", config.Dataset.Path, "error", err)
	}
	store := dataset.NewStore(table)
	zap.S().Infow("dataset loaded", "path", config.Dataset.Path,
		"rows", table.NumRows(), "codons", len(table.Codons()))

	if config.Dataset.Watch {
		watcher, err := dataset.NewWatcher(config.Dataset.Path, store)
		if err != nil {
			zap.S().Warnw("dataset watcher unavailable", "error", err)
		} else {
			defer watcher.Close()
		}
	}

	// 4. Load the trained model and its evaluation record
	model, err := ml.LoadGBTModel(config.Model.Path)
	if err != nil {
		zap.S().Fatalw("failed to load model", "path", config.Model.Path, "error", err)
	}
	metrics, err := ml.LoadEvalMetrics(config.Model.MetricsPath)
	if err != nil {
		zap.S().Fatalw("failed to load evaluation metrics", "path", config.Model.MetricsPath, "error", err)
	}

	// 5. Initialize database
	if err := db.InitDB(config.Database.Path); err != nil {
		zap.S().Fatalw("failed to initialize database", "path", config.Database.Path, "error", err)
	}
	defer db.Close()
	zap.S().Infow("database initialized", "path", config.Database.Path)

	// 6. Monitoring
	collector := monitoring.NewCollector()
	hub := monitoring.NewHub()
	go hub.Run()
	defer hub.Stop()

	// 7. Wire handlers and start the HTTP server
	qhttp.SetStore(store)
	qhttp.SetModel(model)
	qhttp.SetEvalMetrics(metrics)
	qhttp.SetCollector(collector)
	qhttp.SetHub(hub)
	qhttp.SetCacheSize(config.Cache.Size)

	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Port != 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.TimeoutSec != 0 {
		serverConfig.Timeout = time.Duration(config.Http.TimeoutSec) * time.Second
	}
	if len(config.Http.AllowedOrigins) > 0 {
		serverConfig.AllowedOrigins = config.Http.AllowedOrigins
	}

	server := qhttp.NewServer(serverConfig)
	go func() {
		if err := server.Start(); err != nil {
			zap.S().Fatalw("HTTP server failed", "error", err)
		}
	}()

	// 8. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("shutting down")

	if err := server.Stop(); err != nil {
		zap.S().Errorw("server forced to shutdown", "error", err)
	}

	zap.S().Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// initLogger builds a zap logger writing to stdout and, when a file is
// configured, to a size-rotated log file.
func initLogger(level, file string) *zap.Logger {
	var zapLevel zapcore.Level
	if err := zapLevel.Set(level); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if file != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), zapLevel)
	return zap.New(core, zap.AddCaller())
}

package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"kalshitrader/conf"
)

// Field 日志附加字段
type Field = zap.Field

var (
	mu      sync.RWMutex
	logger  = zap.NewNop()
	sugared = logger.Sugar()
)

// InitLogger 根据配置初始化全局日志，文件输出使用lumberjack切割
func InitLogger(cfg *conf.LogConfig, appName string) {
	level := zapcore.InfoLevel
	if cfg != nil && cfg.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			level = zapcore.InfoLevel
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg != nil && cfg.TimeFormat != "" {
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)
	}
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var cores []zapcore.Core
	if cfg != nil && cfg.FileName != "" {
		writer := &lumberjack.Logger{
			Filename:   cfg.FileName,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  cfg.LocalTime,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(writer), level))
	}
	if cfg == nil || cfg.Console || len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), level))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	if appName != "" {
		l = l.With(zap.String("app", appName))
	}

	mu.Lock()
	logger = l
	sugared = l.Sugar()
	mu.Unlock()
}

func current() (*zap.Logger, *zap.SugaredLogger) {
	mu.RLock()
	defer mu.RUnlock()
	return logger, sugared
}

// Pair 构造日志字段
func Pair(key string, value any) Field {
	return zap.Any(key, value)
}

// Err 错误字段
func Err(err error) Field {
	return zap.Error(err)
}

func Debug(msg string, fields ...Field) {
	l, _ := current()
	l.Debug(msg, fields...)
}

func Info(msg string, fields ...Field) {
	l, _ := current()
	l.Info(msg, fields...)
}

func Warn(msg string, fields ...Field) {
	l, _ := current()
	l.Warn(msg, fields...)
}

func Error(msg string, fields ...Field) {
	l, _ := current()
	l.Error(msg, fields...)
}

func Fatal(msg string, fields ...Field) {
	l, _ := current()
	l.Fatal(msg, fields...)
}

func Debugf(template string, args ...any) {
	_, s := current()
	s.Debugf(template, args...)
}

func Infof(template string, args ...any) {
	_, s := current()
	s.Infof(template, args...)
}

func Warnf(template string, args ...any) {
	_, s := current()
	s.Warnf(template, args...)
}

func Errorf(template string, args ...any) {
	_, s := current()
	s.Errorf(template, args...)
}

func Fatalf(template string, args ...any) {
	_, s := current()
	s.Fatalf(template, args...)
}

// Sync 刷新缓冲，进程退出前调用
func Sync() error {
	l, _ := current()
	err := l.Sync()
	// stdout 在部分平台上不支持 sync
	if err != nil && strings.Contains(err.Error(), "/dev/stdout") {
		return nil
	}
	return err
}

// 包 logger：统一初始化与获取日志器；批处理命令共用同一套级别与格式配置
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// 默认日志器：进程级复用，命令入口 Setup 一次，其余模块通过 L 获取
var defaultLogger *slog.Logger

// Setup：按环境变量初始化默认日志器并返回
// 背景：LOG_LEVEL 控制级别（debug/info/warn/error），LOG_FORMAT=json 输出结构化日志
// 约束：输出固定为标准错误，标准输出留给命令本身
func Setup() *slog.Logger {
	return SetupWriter(os.Stderr)
}

// SetupWriter：与 Setup 相同，但允许指定输出目标（测试中写入缓冲区）
func SetupWriter(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(os.Getenv("LOG_LEVEL"))}
	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	defaultLogger = slog.New(h)
	return defaultLogger
}

// ParseLevel：未知取值回退到 info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// L：获取默认日志器；未初始化时回退到 Setup
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}

// Timed：记录一个阶段的开始，返回的函数在阶段结束时输出耗时
// 用法：defer logger.Timed("outline_merge", "district", name)()
func Timed(event string, attrs ...any) func() {
	start := time.Now()
	L().Debug(event+"_begin", attrs...)
	return func() {
		L().Debug(event+"_done", append(attrs, "duration_ms", time.Since(start).Milliseconds())...)
	}
}

// 包 logger：统一初始化与获取日志器，避免各模块重复配置；级别与格式来自配置层
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// 默认日志器：进程级复用；并发读取安全
var defaultLogger atomic.Pointer[slog.Logger]

// Setup：按级别与格式初始化默认日志器并返回
// 约束：输出固定为标准错误；未识别的级别回退到 info，未识别的格式回退到文本
func Setup(level, format string) *slog.Logger {
	return SetupWriter(os.Stderr, level, format)
}

// SetupWriter：同 Setup，但允许指定输出目标（测试中写入缓冲区）
func SetupWriter(w io.Writer, level, format string) *slog.Logger {
	l := newLogger(w, level, format)
	defaultLogger.Store(l)
	return l
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel：debug/warn/error，其余视为 info
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

// L：获取默认日志器；未初始化时按环境变量回退初始化
// 约束：并发首次调用只有一个回退日志器生效，已由 Setup 设置的日志器不会被覆盖
func L() *slog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	defaultLogger.CompareAndSwap(nil, newLogger(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")))
	return defaultLogger.Load()
}

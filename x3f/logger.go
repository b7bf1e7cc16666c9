package x3f

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
)

// Logger 简洁的进度日志系统
type Logger struct {
	w          io.Writer
	stepStart  time.Time
	totalStart time.Time
}

// NewLogger 创建日志记录器，w 为 nil 时写到 stdout
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{
		w:          w,
		totalStart: time.Now(),
	}
}

// Step 开始一个处理步骤
// 格式: [步骤名] 参数 ...
func (l *Logger) Step(name string, params ...any) {
	l.stepStart = time.Now()
	if len(params) > 0 {
		fmt.Fprintf(l.w, "[%s] %v ... ", name, params[0])
	} else {
		fmt.Fprintf(l.w, "[%s] ", name)
	}
}

// Done 完成当前步骤
// 格式: → 结果 (耗时)
func (l *Logger) Done(result string) {
	elapsed := time.Since(l.stepStart)
	if elapsed > 100*time.Millisecond {
		fmt.Fprintf(l.w, "→ %s (%.2fs)\n", result, elapsed.Seconds())
	} else {
		fmt.Fprintf(l.w, "→ %s\n", result)
	}
}

// Total 输出总耗时
func (l *Logger) Total() {
	fmt.Fprintf(l.w, "\n✓ total: %.2fs\n", time.Since(l.totalStart).Seconds())
}

// Info 输出信息（不计时）
func (l *Logger) Info(format string, args ...any) {
	fmt.Fprintf(l.w, "  • "+format+"\n", args...)
}

// Warn 输出警告
func (l *Logger) Warn(format string, args ...any) {
	fmt.Fprintf(l.w, "  ⚠ "+format+"\n", args...)
}

var traceLogger atomic.Pointer[slog.Logger]

func init() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	traceLogger.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// SetTraceLogger replaces the logger used for parser debug tracing.
// A nil logger restores the default stderr handler at info level.
func SetTraceLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	traceLogger.Store(l)
}

func debug(msg string, args ...any) {
	l := traceLogger.Load()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug(msg, args...)
}

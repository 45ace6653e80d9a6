// Package logger はslogロガーの初期化とログ属性のヘルパーを提供します。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New は設定に応じたslogロガーを生成し、デフォルトロガーとして登録します。
// format が "json" の場合はJSONハンドラー、それ以外はテキストハンドラーを使用します。
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter は出力先を指定してロガーを生成します（テスト用）。
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	l := slog.New(h)
	slog.SetDefault(l)
	return l
}

// ParseLevel は文字列のログレベルをslog.Levelに変換します。不明な値はInfoになります。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Err はキー "error" のslog.Attrを返します。
//
//	slog.Error("failed to save file", logger.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

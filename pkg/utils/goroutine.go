package utils

import (
	"go.uber.org/zap"
)

// GoSafe runs fn in a goroutine and keeps a panic from taking the process down.
// The panic is reported through the global zap logger.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("Recovered from panic", zap.Any("panic", r), zap.Stack("stack"))
			}
		}()
		fn()
	}()
}

package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// SinceMs returns milliseconds elapsed since a NowMs timestamp.
func SinceMs(startMs int64) int64 { return NowMs() - startMs }

package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or batch runs can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Stagef logs one pipeline progress line prefixed with the stage tag, e.g.
// "[normalize] merged 4 variant names". Analysis stages report through this so
// a whole run can be muted or captured with one SetLogger call.
func Stagef(stage, format string, v ...interface{}) {
	args := make([]interface{}, 0, len(v)+1)
	args = append(args, stage)
	args = append(args, v...)
	Logf("[%s] "+format, args...)
}

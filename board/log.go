package board

import (
	"fmt"

	"github.com/golang/glog"
)

// Logging convention in the `board` package:
// Info:
//     abnormal but recoverable events. This level should be silent on normal operation.
//     this includes:
//     - dial and handshake errors, reconnects
//     - undecodable frames and unknown events
//     - sends dropped because the transport is down
// Error:
//     unrecoverable crash details
//     this includes:
//     - unexpected panics recovered at a goroutine root
// Debug (V(1)):
//     key engine events with ids that can be used to filter
//     - object created/removed, board created/activated/closed, identity assigned
// Trace (V(2)):
//     every frame in and out, and stale updates dropped by suppression

const LogLevelDebug = glog.Level(1)
const LogLevelTrace = glog.Level(2)

type LogFunction func(string, ...any)

// log function that is a no-op unless glog verbosity is at least `level`
func LogFn(level glog.Level, tag string) LogFunction {
	return func(format string, a ...any) {
		if glog.V(level) {
			m := fmt.Sprintf(format, a...)
			glog.InfoDepth(1, fmt.Sprintf("[%s]%s", tag, m))
		}
	}
}

func SubLogFn(log LogFunction, tag string) LogFunction {
	return func(format string, a ...any) {
		m := fmt.Sprintf(format, a...)
		log("[%s]%s", tag, m)
	}
}

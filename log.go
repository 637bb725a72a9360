package chromatica

import (
	"log"
	"os"
)

// LogFunc is the logging signature used throughout the package: Connection
// holds one each for general, debug and error output, set through Options
// the way the teacher's BrowserOption does, and TargetManager logs through
// its Connection's.
type LogFunc func(string, ...interface{})

// defaultLogger backs the zero-value LogFunc used when no logging option is
// supplied.
var defaultLogger = log.New(os.Stderr, "chromatica ", log.LstdFlags)

func defaultLogf(s string, v ...interface{}) { defaultLogger.Printf(s, v...) }

func defaultErrf(s string, v ...interface{}) { defaultLogger.Printf("ERROR: "+s, v...) }

func defaultDebugf(string, ...interface{}) {} // silent unless WithDebugf is set

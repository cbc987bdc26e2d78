// Package report is the diagnostics sink for the compiler: it is the only
// thing the front-end calls into to tell the user something went wrong or is
// worth noting. It is held by reference throughout the pipeline. Error, the
// recording step of Warning, and ICE take the reporter's mutex; the setters
// (SetWarnError, SetWarningEnabled), the queries (ShouldProceed, AnyErrors,
// ErrorCount), Fatal and Summary do not, so the sink as a whole is not safe
// for concurrent use. The front-end itself is single-threaded.
package report

import (
	"fmt"
	"os"
	"sync"

	"viper/internal/source"

	"github.com/pterm/pterm"
)

// Enumeration of log levels, from least to most verbose.
const (
	LogLevelSilent = iota
	LogLevelError
	LogLevelWarn
	LogLevelVerbose
)

// Reporter collects diagnostics produced by every stage of the pipeline and
// renders them to the terminal through pterm.
type Reporter struct {
	m *sync.Mutex

	logLevel int

	// werror promotes every warning to a fatal error, per -Werror.
	werror bool

	// disabledWarnings is the set of warning categories disabled via the
	// -W list. A name absent from this set is enabled by default.
	disabledWarnings map[string]struct{}

	errorCount   int
	warningCount int
}

// rep is the process-global reporter instance, initialized once by the
// driver before compilation begins.
var rep *Reporter

// Init initializes the global reporter. Calling it again resets state; this
// is primarily useful for tests that compile more than one unit in-process.
func Init(logLevel int) {
	rep = &Reporter{
		m:                &sync.Mutex{},
		logLevel:         logLevel,
		disabledWarnings: make(map[string]struct{}),
	}
}

// SetWarnError sets whether warnings should be promoted to fatal errors.
func SetWarnError(werror bool) {
	rep.werror = werror
}

// SetWarningEnabled enables or disables a named warning category. The driver
// calls it only to disable, once per name in the -W list. Unknown names are
// accepted silently, per spec §6.
func SetWarningEnabled(name string, enabled bool) {
	if enabled {
		delete(rep.disabledWarnings, name)
	} else {
		rep.disabledWarnings[name] = struct{}{}
	}
}

// ShouldProceed reports whether the pipeline should continue to its next
// phase: false once any fatal error has been recorded.
func ShouldProceed() bool {
	return rep.errorCount == 0
}

// AnyErrors reports whether any fatal error has ever been recorded.
func AnyErrors() bool {
	return rep.errorCount > 0
}

// ErrorCount returns the number of fatal errors recorded so far.
func ErrorCount() int {
	return rep.errorCount
}

// -----------------------------------------------------------------------------

// Error records a fatal compile error at the given span. A nil span produces
// a file-less message (used for whole-unit errors such as an unresolved
// import path).
func Error(span *source.Span, format string, args ...any) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount++

	if rep.logLevel > LogLevelSilent {
		displayMessage("error", pterm.FgRed, span, fmt.Sprintf(format, args...))
	}
}

// Warning records a compile warning in the given category. If the category
// has been disabled via the -W list it is dropped; if -Werror is set it is
// recorded as a fatal error instead.
func Warning(span *source.Span, category string, format string, args ...any) {
	if _, disabled := rep.disabledWarnings[category]; disabled {
		return
	}

	if rep.werror {
		Error(span, format, args...)
		return
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	rep.warningCount++

	if rep.logLevel >= LogLevelWarn {
		displayMessage(fmt.Sprintf("warning [%s]", category), pterm.FgYellow, span, fmt.Sprintf(format, args...))
	}
}

// ICE reports an internal compiler error: a condition that should never
// occur given a correct implementation. It always exits the process.
func ICE(format string, args ...any) {
	rep.m.Lock()
	defer rep.m.Unlock()

	pterm.Error.Println("internal compiler error:", fmt.Sprintf(format, args...))
	os.Exit(2)
}

// Fatal reports a fatal, non-compile error (bad flags, missing file, I/O
// failure) and exits the process with status 1, per spec §6.
func Fatal(format string, args ...any) {
	if rep == nil || rep.logLevel > LogLevelSilent {
		pterm.Error.Println(fmt.Sprintf(format, args...))
	}
	os.Exit(1)
}

// Summary prints the concluding banner for a compilation run.
func Summary(outputPath string) {
	if rep.logLevel < LogLevelVerbose {
		return
	}

	if rep.errorCount == 0 {
		pterm.Success.Printfln("compiled successfully -> %s", outputPath)
	} else {
		plural := "s"
		if rep.errorCount == 1 {
			plural = ""
		}
		pterm.Error.Printfln("compilation failed: %d error%s", rep.errorCount, plural)
	}
}

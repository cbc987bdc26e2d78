// Command viper is the compiler's command-line entry point: it parses
// spec §6's flag surface and hands the resulting driver.Options to
// internal/driver, which layers them over the optional project file. Grounded on the teacher's cmd/execute.go, which drives
// github.com/ComedicChimera/olive the same way — a single root olive.NewCLI
// with selector/string/flag arguments rather than hand-rolled os.Args
// parsing — generalized here to a flat flag set with no subcommands, since
// spec §6's CLI surface is `viper <input-file> [flags]`.
package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/ComedicChimera/olive"

	"viper/internal/driver"
	"viper/internal/report"
)

func main() {
	cli := olive.NewCLI("viper", "viper compiles a single Viper source file to LLVM IR", true)
	cli.AddPrimaryArg("input-file", "the Viper source file to compile", true)

	cli.AddStringArg("outpath", "o", "the output path for the compiled object", false)
	optArg := cli.AddStringArg("opt-level", "O", "the optimization level hint (0-3)", false)
	optArg.SetDefaultValue("0")

	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	// olive has no repeated-flag primitive, so every disabled warning
	// category is passed as one comma-separated value instead of a flag per
	// category (a policy choice, same as spec §4.7's mangling scheme being
	// "a policy choice as long as it round-trips").
	warnOffArg := cli.AddStringArg("wno", "W", "comma-separated list of warning categories to disable", false)
	warnOffArg.SetDefaultValue("")

	cli.AddFlag("werror", "Werror", "promote every warning to a fatal error")
	cli.AddFlag("debug", "d", "emit a human-readable IR dump alongside the output")

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.Fatal(err.Error())
	}

	inputPath, _ := result.PrimaryArg()

	optLevel, _ := strconv.Atoi(result.Arguments["opt-level"].(string))
	logLevel := logLevelFromName(result.Arguments["loglevel"].(string))

	var warnOff []string
	if raw, _ := result.Arguments["wno"].(string); raw != "" {
		warnOff = strings.Split(raw, ",")
	}

	outPath, _ := result.Arguments["outpath"].(string)
	_, werror := result.Arguments["werror"]
	_, debug := result.Arguments["debug"]

	c := driver.New(driver.Options{
		InputPath:   inputPath,
		OutputPath:  outPath,
		OptLevel:    optLevel,
		LogLevel:    logLevel,
		Debug:       debug,
		WarnOff:     warnOff,
		WarnAsError: werror,
	})

	os.Exit(c.Run())
}

func logLevelFromName(name string) int {
	switch name {
	case "silent":
		return report.LogLevelSilent
	case "error":
		return report.LogLevelError
	case "warn":
		return report.LogLevelWarn
	default:
		return report.LogLevelVerbose
	}
}

package report

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"viper/internal/source"

	"github.com/pterm/pterm"
)

// displayMessage prints a single compile diagnostic: a label/location line
// followed by the offending source excerpt with carets underlining the span.
func displayMessage(label string, color pterm.Color, span *source.Span, message string) {
	if span == nil {
		fmt.Printf("%s: %s\n\n", color.Sprint(label), message)
		return
	}

	fmt.Printf("%s: %s: %s\n", span.String(), color.Sprint(label), message)
	displaySourceExcerpt(span)
	fmt.Println()
}

// displaySourceExcerpt renders the lines of source text spanned by span with
// a caret line underlining the erroneous region, mirroring the teacher's
// displaySourceText but driven by pterm color codes instead of raw ANSI.
func displaySourceExcerpt(span *source.Span) {
	file, err := os.Open(span.File)
	if err != nil {
		// The file may legitimately be gone by the time we report (eg. an
		// in-memory test buffer); degrade silently rather than ICE.
		return
	}
	defer file.Close()

	var lines []string
	sc := bufio.NewScanner(file)
	for ln := 0; sc.Scan(); ln++ {
		if span.StartLine <= ln && ln <= span.EndLine {
			lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
		}
	}
	if len(lines) == 0 {
		return
	}

	minIndent := math.MaxInt
	for _, line := range lines {
		indent := 0
		for _, c := range line {
			if c != ' ' {
				break
			}
			indent++
		}
		if indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent == math.MaxInt {
		minIndent = 0
	}

	numWidth := len(strconv.Itoa(span.EndLine + 1))
	numFmt := "%-" + strconv.Itoa(numWidth) + "v | "

	for i, line := range lines {
		fmt.Printf(numFmt, i+span.StartLine+1)
		if minIndent <= len(line) {
			fmt.Println(line[minIndent:])
		} else {
			fmt.Println(line)
		}

		fmt.Print(strings.Repeat(" ", numWidth), " | ")

		var prefix int
		if i == 0 {
			prefix = span.StartCol - minIndent
		}

		var suffix int
		if i == len(lines)-1 {
			suffix = len(line) - span.EndCol
		}

		count := len(line) - suffix - prefix - minIndent
		if count < 1 {
			count = 1
		}

		fmt.Print(strings.Repeat(" ", max(prefix, 0)))
		fmt.Println(pterm.FgRed.Sprint(strings.Repeat("^", count)))
	}
}

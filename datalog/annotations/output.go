package annotations

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// OutputFormatter formats events for human-readable display.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
	renderer *RelationRenderer
}

// NewOutputFormatter creates a formatter with color support detection.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}

	// Auto-detect color support
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}

	return NewOutputFormatterWithColor(w, useColor)
}

// NewOutputFormatterWithColor creates a formatter with color forced on or off.
func NewOutputFormatterWithColor(w io.Writer, useColor bool) *OutputFormatter {
	return &OutputFormatter{
		useColor: useColor,
		writer:   w,
		renderer: NewRelationRenderer(useColor),
	}
}

// Handle implements the Handler interface - prints events as they occur
func (f *OutputFormatter) Handle(event Event) {
	output := f.Format(event)
	if output != "" {
		fmt.Fprintln(f.writer, output)
	}
}

// Format converts an event to a human-readable string.
func (f *OutputFormatter) Format(event Event) string {
	latency := f.formatLatency(event.Latency)

	switch event.Name {
	case BuildInvoked:
		return fmt.Sprintf("%s %s Build starting with %s and %d rules",
			latency,
			f.colorize("===", color.FgYellow),
			f.colorizeCount("facts", intData(event, "fact.count")),
			intData(event, "rule.count"))

	case BuildComplete:
		if success, _ := event.Data["success"].(bool); !success {
			return fmt.Sprintf("%s %s Build failed: %v",
				latency,
				f.colorize("✗", color.FgRed),
				event.Data["error"])
		}
		return fmt.Sprintf("%s %s Build done after %d passes with %s.",
			latency,
			f.colorize("===", color.FgGreen),
			intData(event, "pass.count"),
			f.colorizeCount("facts", intData(event, "fact.count")))

	case PassBegin:
		return fmt.Sprintf("%s %s Pass %d starting with %s",
			latency,
			f.colorize("---", color.FgYellow),
			intData(event, "pass"),
			f.colorizeCount("facts", intData(event, "fact.count")))

	case PassComplete:
		before := intData(event, "fact.before")
		after := intData(event, "fact.after")
		if after == before {
			return fmt.Sprintf("%s Pass %d reached fixpoint at %s",
				latency,
				intData(event, "pass"),
				f.colorizeCount("facts", after))
		}
		return fmt.Sprintf("%s Pass %d derived %s",
			latency,
			intData(event, "pass"),
			f.colorizeCount("facts", after-before))

	case RuleApplied:
		rule, _ := event.Data["rule"].(string)
		added := intData(event, "fact.added")

		var ruleStr string
		if f.useColor {
			ruleStr = fmt.Sprintf("%s%s%s",
				color.BlueString("Rule("),
				color.CyanString(truncateQuery(rule)),
				color.BlueString(")"))
		} else {
			ruleStr = fmt.Sprintf("Rule(%s)", truncateQuery(rule))
		}
		return fmt.Sprintf("%s %s%s%s",
			latency, ruleStr, f.arrow(), f.colorizeCount("new facts", added))

	case GoalEvaluated:
		goal, _ := event.Data["goal"].(string)
		symbols, _ := event.Data["symbol.order"].([]string)

		var goalStr string
		if f.useColor {
			goalStr = fmt.Sprintf("%s%s%s",
				color.BlueString("Goal("),
				color.CyanString(goal),
				color.BlueString(")"))
		} else {
			goalStr = fmt.Sprintf("Goal(%s)", goal)
		}

		relationStr := f.renderer.RenderRelationWithAttrs(symbols, intData(event, "binding.count"))
		return fmt.Sprintf("%s %s%s%s", latency, goalStr, f.arrow(), relationStr)

	case JoinBindings:
		left := intData(event, "left.size")
		right := intData(event, "right.size")
		result := intData(event, "result.size")

		leftAttrs, _ := event.Data["left.attrs"].([]string)
		rightAttrs, _ := event.Data["right.attrs"].([]string)
		resultAttrs, _ := event.Data["result.attrs"].([]string)

		var joinStr string
		if len(leftAttrs) > 0 && len(rightAttrs) > 0 && len(resultAttrs) > 0 {
			joinStr = f.renderer.RenderJoin(leftAttrs, left, rightAttrs, right, resultAttrs, result)
		} else {
			joinStr = fmt.Sprintf("%d × %d → %d bindings", left, right, result)
		}

		// Nested-loop joins are quadratic; flag the ones that come close
		if left*right > 100000 {
			return fmt.Sprintf("%s %s %s",
				latency,
				f.colorize("⚠️", color.FgYellow),
				joinStr)
		}
		return fmt.Sprintf("%s %s", latency, joinStr)

	case QueryInvoked:
		q, _ := event.Data["query"].(string)
		return fmt.Sprintf("%s Query: %s", latency, truncateQuery(q))

	case QueryComplete:
		return fmt.Sprintf("%s %s Query done with %s.",
			latency,
			f.colorize("===", color.FgGreen),
			f.colorizeCount("bindings", intData(event, "binding.count")))

	case ErrorUnsafeRule:
		return fmt.Sprintf("%s %s Unsafe rule %v: unbound %v in %v",
			latency,
			f.colorize("✗", color.FgRed),
			event.Data["rule"],
			event.Data["variables"],
			event.Data["fact"])

	case ErrorPassLimit:
		return fmt.Sprintf("%s %s No fixpoint after %d passes",
			latency,
			f.colorize("✗", color.FgRed),
			intData(event, "pass.count"))

	default:
		// Generic format for unknown events
		return fmt.Sprintf("%s %s %v", latency, event.Name, event.Data)
	}
}

func intData(event Event, key string) int {
	n, _ := event.Data[key].(int)
	return n
}

func (f *OutputFormatter) arrow() string {
	if f.useColor {
		return color.YellowString(" → ")
	}
	return " → "
}

// formatLatency formats a duration as [XXXms] or [XXXµs] with color coding.
func (f *OutputFormatter) formatLatency(d time.Duration) string {
	// Use microseconds for sub-millisecond durations
	if d < time.Millisecond {
		us := d.Microseconds()
		s := fmt.Sprintf("[%dµs]", us)
		if !f.useColor {
			return s
		}
		return color.GreenString(s)
	}

	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("[%.1fms]", ms)

	if !f.useColor {
		return s
	}

	switch {
	case ms < 50:
		return color.GreenString(s)
	case ms < 200:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

// colorizeCount formats a count with a label, using color based on the label type.
func (f *OutputFormatter) colorizeCount(label string, count int) string {
	text := fmt.Sprintf("%d %s", count, label)

	if !f.useColor {
		return text
	}

	switch strings.ToLower(label) {
	case "facts", "new facts":
		return color.CyanString(text)
	case "bindings":
		return color.MagentaString(text)
	default:
		return text
	}
}

// colorize applies color if enabled.
func (f *OutputFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

// truncateQuery shortens long rules and queries for display.
func truncateQuery(query string) string {
	query = strings.Join(strings.Fields(query), " ")

	const maxLen = 80
	if len(query) <= maxLen {
		return query
	}

	return query[:maxLen-3] + "..."
}

// ConsoleHandler creates a handler that prints formatted events to stdout.
func ConsoleHandler() Handler {
	return WriterHandler(os.Stdout)
}

// WriterHandler creates a handler that prints formatted events to w.
func WriterHandler(w io.Writer) Handler {
	return NewOutputFormatter(w).Handle
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Package logging provides the single diagnostic sink used throughout
// cimipkg. Earlier drafts of this tool's surrounding ecosystem wired a
// dependency-injected logger with timestamped directories, JSON/YAML
// export, and retention policies through a service container; the
// package processing engine only ever needed one sink, so this is that
// sink with the container removed.
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/windowsadmins/cimipkg/pkg/utils"
	"gopkg.in/yaml.v3"
)

// Level represents the severity of a log message.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// Sink is the package-level logger. It is not a singleton behind a
// sync.Once guard: callers construct one in main() and pass it down as
// a plain parameter, per the fold-into-function-parameters remapping.
type Sink struct {
	level  Level
	logger *log.Logger
	echo   bool // also write captured script lines even below verbose level
}

// New builds a Sink writing to stderr at the given level.
func New(level Level) *Sink {
	return &Sink{
		level:  level,
		logger: log.New(os.Stderr, "", 0),
	}
}

func (s *Sink) log(level Level, msg string) {
	if s == nil || level > s.level {
		return
	}
	s.logger.Printf("%s [%s] %s", time.Now().Format("2006-01-02 15:04:05"), level, msg)
}

func (s *Sink) Errorf(format string, args ...interface{}) { s.log(LevelError, fmt.Sprintf(format, args...)) }
func (s *Sink) Warnf(format string, args ...interface{})  { s.log(LevelWarn, fmt.Sprintf(format, args...)) }
func (s *Sink) Infof(format string, args ...interface{})  { s.log(LevelInfo, fmt.Sprintf(format, args...)) }
func (s *Sink) Debugf(format string, args ...interface{}) { s.log(LevelDebug, fmt.Sprintf(format, args...)) }

// ScriptLine logs one line of captured child-process output. Verbosity
// gating happens here rather than via the normal Level comparison: when
// the sink is in echo mode (--verboseR or --dumplog), every captured
// line is surfaced regardless of the sink's configured level.
func (s *Sink) ScriptLine(line string) {
	if s == nil {
		return
	}
	if s.echo {
		s.logger.Printf("%s", line)
		return
	}
	s.Debugf("%s", line)
}

// SetEcho toggles whether captured script output is always surfaced,
// independent of Level. Set when --verboseR or --dumplog is given.
func (s *Sink) SetEcho(echo bool) {
	if s == nil {
		return
	}
	s.echo = echo
}

// DumpTranscript writes a captured script transcript to path as YAML,
// the durable artifact --dumplog leaves behind after the scratch
// directory the console lines were captured from has been removed. The
// line-by-line transcript is joined by script into a literal block
// scalar for readability, matching how yaml.v3's literal-style strings
// are rendered elsewhere in this tool's ecosystem.
func DumpTranscript(path string, entries []TranscriptEntry) error {
	data, err := yaml.Marshal(struct {
		Transcript []TranscriptEntry `yaml:"transcript"`
		Output     []PhaseOutput     `yaml:"output"`
	}{entries, BuildPhaseOutputs(entries)})
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// TranscriptEntry is one captured line from a script invocation.
type TranscriptEntry struct {
	Script string `yaml:"script"` // "pre" or "post"
	Kind   string `yaml:"kind"`   // "native" or "foreign"
	Stream string `yaml:"stream"` // "combined": stdout and stderr are captured interleaved
	Line   string `yaml:"line"`
}

// PhaseOutput collapses one script phase's captured lines into a
// single literal block scalar, so --dumplog readers see the output the
// way it would have appeared on the console rather than one mapping
// per line.
type PhaseOutput struct {
	Script string              `yaml:"script"`
	Kind   string              `yaml:"kind"`
	Text   utils.LiteralString `yaml:"text"`
}

// BuildPhaseOutputs groups entries by (Script, Kind) in first-seen
// order and joins each group's lines back into one block.
func BuildPhaseOutputs(entries []TranscriptEntry) []PhaseOutput {
	var outputs []PhaseOutput
	index := map[string]int{}
	for _, e := range entries {
		key := e.Script + "/" + e.Kind
		i, ok := index[key]
		if !ok {
			i = len(outputs)
			index[key] = i
			outputs = append(outputs, PhaseOutput{Script: e.Script, Kind: e.Kind})
		}
		if outputs[i].Text != "" {
			outputs[i].Text += "\n"
		}
		outputs[i].Text += utils.LiteralString(e.Line)
	}
	return outputs
}

// ParseLevel maps a verbosity count (number of -v flags or similar) to a Level.
func ParseLevel(verboseCount int) Level {
	switch {
	case verboseCount >= 2:
		return LevelDebug
	case verboseCount == 1:
		return LevelInfo
	default:
		return LevelWarn
	}
}

// Sanitize folds the common mojibake sequences produced when UTF-8
// glyphs written by a PowerShell host get re-decoded as Windows-1252
// back to their intended characters. Table-driven, cosmetic only, and
// must never change line structure (no inserted or removed newlines).
func Sanitize(line string) string {
	r := strings.NewReplacer(
		"âœ“", "✓",
		"Ã¢Ë†", "✓",
		"âœ—", "✗",
		"â†’", "→",
		"â€¢", "•",
		"â€™", "'",
		"â€œ", "“",
		"â€", "”",
		"\xEF\xBB\xBF", "",
	)
	return r.Replace(line)
}

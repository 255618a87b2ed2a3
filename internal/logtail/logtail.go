package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed log line.
type Entry struct {
	Time      time.Time
	Level     zerolog.Level
	Component string
	Message   string
	Error     string
	// Fields holds the remaining key/value pairs, values already rendered.
	Fields map[string]string
	// Raw is the original line, kept for lines that are not JSON.
	Raw string
}

// Structured reports whether the line parsed as a JSON log record.
func (e Entry) Structured() bool {
	return e.Raw == ""
}

// Parse decodes a zerolog JSON line. Lines that are not JSON objects come
// back with only Raw set and Level NoLevel.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return Entry{Raw: line, Level: zerolog.NoLevel}
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return Entry{Raw: line, Level: zerolog.NoLevel}
	}

	entry := Entry{Level: zerolog.NoLevel, Fields: make(map[string]string)}
	for key, value := range fields {
		switch key {
		case zerolog.TimestampFieldName:
			if s, ok := value.(string); ok {
				entry.Time, _ = time.Parse(time.RFC3339Nano, s)
			}
		case zerolog.LevelFieldName:
			if s, ok := value.(string); ok {
				if level, err := zerolog.ParseLevel(s); err == nil {
					entry.Level = level
				}
			}
		case zerolog.MessageFieldName:
			entry.Message = render(value)
		case zerolog.ErrorFieldName:
			entry.Error = render(value)
		case "component":
			entry.Component = render(value)
		default:
			entry.Fields[key] = render(value)
		}
	}
	return entry
}

// String renders the entry as a single human-readable line:
//
//	15:04:05 WARN [releases] read degraded op=get_releases error="timeout"
func (e Entry) String() string {
	if !e.Structured() {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format(time.TimeOnly))
		b.WriteByte(' ')
	}
	if e.Level != zerolog.NoLevel {
		b.WriteString(strings.ToUpper(e.Level.String()))
		b.WriteByte(' ')
	}
	if e.Component != "" {
		b.WriteString("[" + e.Component + "] ")
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, quote(e.Fields[k]))
	}
	if e.Error != "" {
		fmt.Fprintf(&b, " error=%s", quote(e.Error))
	}
	return b.String()
}

// Filter keeps entries at or above min. Unstructured lines are always kept.
func Filter(entries []Entry, min zerolog.Level) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Structured() || e.Level == zerolog.NoLevel || e.Level >= min {
			out = append(out, e)
		}
	}
	return out
}

// ParseLines is Parse over a slice.
func ParseLines(lines []string) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, Parse(line))
	}
	return out
}

func render(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return "null"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

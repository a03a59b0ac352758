package extract

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// LayoutField is one column definition from a .lyt file.
type LayoutField struct {
	Pos         int    `json:"pos"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	MaxLen      int    `json:"max_len"`
	Description string `json:"description"`
}

var layoutSplit = regexp.MustCompile(`\s+`)

// ParseLayout reads column definitions. Everything up to and including the
// first line starting with "-" is header text; after it each non-blank line is
// "pos name type max_len description".
func ParseLayout(r io.Reader) ([]LayoutField, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		if strings.HasPrefix(sc.Text(), "-") {
			break
		}
	}

	var fields []LayoutField
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if strings.Trim(text, "\x1a") == "" {
			continue
		}

		parts := layoutSplit.Split(text, 5)
		if len(parts) < 4 {
			return nil, fmt.Errorf("layout line %d: expected at least 4 fields, got %d", line, len(parts))
		}
		pos, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("layout line %d: position: %w", line, err)
		}
		maxLen, err := strconv.Atoi(parts[3])
		if err != nil {
			return nil, fmt.Errorf("layout line %d: max length: %w", line, err)
		}

		f := LayoutField{Pos: pos, Name: parts[1], Type: parts[2], MaxLen: maxLen}
		if len(parts) == 5 {
			f.Description = strings.TrimSpace(parts[4])
		}
		fields = append(fields, f)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return fields, nil
}

// LoadLayout parses the layout file at path.
func LoadLayout(path string) ([]LayoutField, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout: %w", err)
	}
	defer f.Close()

	fields, err := ParseLayout(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fields, nil
}

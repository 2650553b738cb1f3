package seed

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"wishTracker/internal/models/wish"

	"gopkg.in/yaml.v3"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

type remarkEntry struct {
	Content   string `yaml:"content"`
	CreatedAt string `yaml:"created_at"`
}

type wishEntry struct {
	Title     string        `yaml:"title"`
	Status    string        `yaml:"status"`
	Category  string        `yaml:"category"`
	CreatedAt string        `yaml:"created_at"`
	Remarks   []remarkEntry `yaml:"remarks"`
}

// Load reads a YAML list of wishes. Every wish and remark gets a fresh id;
// a missing status means "wish" and a missing timestamp means now.
func Load(path string) ([]*wish.Wish, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]*wish.Wish, error) {
	var entries []wishEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	wishes := make([]*wish.Wish, 0, len(entries))
	for i, e := range entries {
		w, err := e.toWish()
		if err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		wishes = append(wishes, w)
	}
	return wishes, nil
}

func (e wishEntry) toWish() (*wish.Wish, error) {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}

	status := wish.Status(e.Status)
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", e.Status)
	}

	createdAt, err := parseTime(e.CreatedAt)
	if err != nil {
		return nil, err
	}

	remarks := make([]wish.Remark, 0, len(e.Remarks))
	for _, r := range e.Remarks {
		content := strings.TrimSpace(r.Content)
		if content == "" {
			return nil, errors.New("remark content must not be empty")
		}
		at, err := parseTime(r.CreatedAt)
		if err != nil {
			return nil, err
		}
		remarks = append(remarks, wish.NewRemark(content, at))
	}

	return wish.New(title,
		wish.WithCategory(strings.TrimSpace(e.Category)),
		wish.WithStatus(status),
		wish.WithCreatedAt(createdAt),
		wish.WithRemarks(remarks...),
	), nil
}

// parseTime returns the zero time for an empty value.
func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

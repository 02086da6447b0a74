package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"zsblog/internal/models"
)

// dateLayout is the calendar-date form dates are normalized to.
const dateLayout = "2006-01-02"

// frontmatterEnvelope mirrors the keys a post may declare.
type frontmatterEnvelope struct {
	Title       string    `yaml:"title" toml:"title" json:"title"`
	Description string    `yaml:"description" toml:"description" json:"description"`
	Author      string    `yaml:"author" toml:"author" json:"author"`
	Tags        []string  `yaml:"tags" toml:"tags" json:"tags"`
	Categories  []string  `yaml:"categories" toml:"categories" json:"categories"`
	Status      string    `yaml:"status" toml:"status" json:"status"`
	Date        dateValue `yaml:"date" toml:"date" json:"date"`
	Slug        string    `yaml:"slug" toml:"slug" json:"slug"`
}

// ParseFrontmatter splits a raw markdown document into its metadata block
// and body. A document without a leading fenced block yields empty metadata
// and the whole input as body. Only a malformed block is an error.
func ParseFrontmatter(source []byte) (models.Frontmatter, []byte, error) {
	var env frontmatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &env)
	if err != nil {
		return models.Frontmatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return models.Frontmatter{
		Title:       strings.TrimSpace(env.Title),
		Description: env.Description,
		Author:      env.Author,
		Tags:        append([]string(nil), env.Tags...),
		Categories:  append([]string(nil), env.Categories...),
		Status:      models.Status(strings.ToUpper(strings.TrimSpace(env.Status))),
		Date:        string(env.Date),
		Slug:        env.Slug,
	}, body, nil
}

// dateValue is a frontmatter date. Unquoted YAML timestamps and TOML
// datetimes are reduced to their calendar date; quoted strings are kept
// as written so later validation can reject them.
type dateValue string

// UnmarshalYAML decodes native timestamps first. yaml.v2 hands timestamps
// to an interface{} target as their raw text, so asking for time.Time is
// the only way to see them as dates.
func (d *dateValue) UnmarshalYAML(unmarshal func(any) error) error {
	var t time.Time
	if err := unmarshal(&t); err == nil {
		if !t.IsZero() {
			*d = dateValue(t.Format(dateLayout))
		}
		return nil
	}

	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*d = dateValue(normalizeDate(raw))
	return nil
}

// UnmarshalTOML receives local dates and datetimes as time.Time.
func (d *dateValue) UnmarshalTOML(v any) error {
	*d = dateValue(normalizeDate(v))
	return nil
}

func (d *dateValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = dateValue(normalizeDate(raw))
	return nil
}

// normalizeDate turns a decoded date value into its string form. Native
// timestamps become a timezone-naive YYYY-MM-DD; anything that is neither
// a string nor a timestamp is dropped.
func normalizeDate(v any) string {
	switch d := v.(type) {
	case string:
		return strings.TrimSpace(d)
	case time.Time:
		return d.Format(dateLayout)
	case *time.Time:
		if d == nil {
			return ""
		}
		return d.Format(dateLayout)
	default:
		return ""
	}
}

package resolver

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"bookingdesk/pkg/sanitizer"

	"gopkg.in/yaml.v3"
)

// Metric names looked up in the sources file.
const (
	MetricOpenServiceRequests = "open_service_requests"
	MetricUnreadMessages      = "unread_messages"
)

// StorePlaceholder in a candidate URL is replaced with the store id.
const StorePlaceholder = "{store_id}"

type candidateFile struct {
	Name  string `yaml:"name"`
	URL   string `yaml:"url"`
	Shape string `yaml:"shape"`
}

type sourcesFile struct {
	Metrics map[string][]candidateFile `yaml:"metrics"`
}

// Sources maps a metric name to its ordered candidate list.
type Sources map[string][]Descriptor

// LoadSources reads a YAML file of the form
//
//	metrics:
//	  unread_messages:
//	    - name: inbox-v2
//	      url: https://inbox.internal/api/v2/stores/{store_id}/unread
//	      shape: data.unread
//
// An empty path yields no sources.
func LoadSources(path string) (Sources, error) {
	if path == "" {
		return Sources{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metric sources file: %w", err)
	}
	return ParseSources(data)
}

func ParseSources(data []byte) (Sources, error) {
	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metric sources: %w", err)
	}

	sources := make(Sources, len(file.Metrics))
	for metric, candidates := range file.Metrics {
		for i, c := range candidates {
			d, err := c.descriptor()
			if err != nil {
				return nil, fmt.Errorf("metric %q candidate %d: %w", metric, i+1, err)
			}
			sources[metric] = append(sources[metric], d)
		}
	}
	return sources, nil
}

func (c candidateFile) descriptor() (Descriptor, error) {
	probe := strings.ReplaceAll(c.URL, StorePlaceholder, "store")
	if sanitizer.NormalizeSourceURL(probe) == "" {
		return Descriptor{}, fmt.Errorf("invalid url %q", c.URL)
	}

	d := Descriptor{Name: c.Name, URL: strings.TrimSpace(c.URL)}
	if d.Name == "" {
		d.Name = d.URL
	}
	if c.Shape != "" {
		parse, ok := ShapeParser(c.Shape)
		if !ok {
			return Descriptor{}, fmt.Errorf("unknown shape %q", c.Shape)
		}
		d.Parse = parse
	}
	return d, nil
}

// For returns the candidates of metric with the store id filled in.
func (s Sources) For(metric, storeID string) []Descriptor {
	candidates := s[metric]
	out := make([]Descriptor, 0, len(candidates))
	for _, c := range candidates {
		resolved := strings.ReplaceAll(c.URL, StorePlaceholder, url.PathEscape(storeID))
		normalized := sanitizer.NormalizeSourceURL(resolved)
		if normalized == "" {
			continue
		}
		c.URL = normalized
		out = append(out, c)
	}
	return out
}

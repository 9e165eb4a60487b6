package c4800

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"limslite-service/internal/pkg/constvars"
)

var softwareVersionPattern = regexp.MustCompile(constvars.SoftwareVersionRegexp)

// ParseSoftwareVersion returns the trailing dotted version of the raw
// software string, e.g. "2.1.0.1522" from "cobas 4800 SW 2.1.0.1522".
func ParseSoftwareVersion(software string) (string, bool) {
	match := softwareVersionPattern.FindStringSubmatch(strings.TrimSpace(software))
	if match == nil {
		return "", false
	}
	return match[1], true
}

// ProcessResult drops a trailing cp/mL units token and keeps the leading
// numeric part. Any other value passes through unchanged.
func ProcessResult(raw string) string {
	suffixLength := len(constvars.ResultUnitsSuffix)
	if len(raw) < suffixLength || !strings.EqualFold(raw[len(raw)-suffixLength:], constvars.ResultUnitsSuffix) {
		return raw
	}
	numeric := raw[:len(raw)-suffixLength]
	if len(numeric) > constvars.ResultNumericLength {
		numeric = numeric[:constvars.ResultNumericLength]
	}
	return numeric
}

// ParseFlags reads a flag note such as "FL HIGH,LOW". The two character
// prefix is dropped; a lone NONE token means no flags.
func ParseFlags(note string) []string {
	flags := []string{}
	if len(note) <= constvars.FlagsPrefixLength {
		return flags
	}
	for _, token := range strings.Split(note[constvars.FlagsPrefixLength:], ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			flags = append(flags, token)
		}
	}
	if len(flags) == 1 && flags[0] == constvars.FlagsNone {
		return []string{}
	}
	return flags
}

// ParseControlCts reads "channel,value" pairs separated by semicolons.
func ParseControlCts(note string) (map[string]float64, error) {
	cts := make(map[string]float64)
	for _, pair := range strings.Split(note, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("control ct pair %q is not channel,value", pair)
		}
		channel := strings.TrimSpace(parts[0])
		if channel == "" {
			return nil, fmt.Errorf("control ct pair %q has no channel", pair)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("control ct pair %q: %w", pair, err)
		}
		cts[channel] = value
	}
	if len(cts) == 0 {
		return nil, fmt.Errorf("no control ct values in %q", note)
	}
	return cts, nil
}

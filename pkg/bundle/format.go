package bundle

import (
	"encoding/json"
	"sort"
	"strings"
)

// PayloadFormat identifies how a verified-source payload is laid out.
type PayloadFormat int

const (
	// FormatSingleFile is a bare source file with no wrapping.
	FormatSingleFile PayloadFormat = iota
	// FormatStandardJSON is a solc standard-json input wrapped in an extra
	// brace pair, the layout Etherscan returns for multi-file verifications.
	FormatStandardJSON
	// FormatSourcesMap is a plain JSON object mapping path to
	// {"content": ...}, the layout Sourcify and some explorers return.
	FormatSourcesMap
)

func (f PayloadFormat) String() string {
	switch f {
	case FormatStandardJSON:
		return "standard-json"
	case FormatSourcesMap:
		return "sources-map"
	default:
		return "single-file"
	}
}

// sourceFile is the per-file object shared by both JSON layouts.
type sourceFile struct {
	Content string `json:"content"`
}

// parsers maps each format to its decoder. Detection picks the key, the
// table does the rest; there is no content sniffing inside the decoders.
var parsers = map[PayloadFormat]func(string) (Bundle, error){
	FormatSingleFile:   parseSingleFile,
	FormatStandardJSON: parseStandardJSON,
	FormatSourcesMap:   parseSourcesMap,
}

// DetectFormat classifies a raw payload.
func DetectFormat(payload string) PayloadFormat {
	trimmed := strings.TrimSpace(payload)
	switch {
	case strings.HasPrefix(trimmed, "{{"):
		return FormatStandardJSON
	case strings.HasPrefix(trimmed, "{"):
		return FormatSourcesMap
	default:
		return FormatSingleFile
	}
}

// Parse turns a raw verified-source payload into a Bundle. Payloads whose
// JSON wrapping turns out to be malformed degrade to a single-file bundle
// rather than failing: a scan over slightly mangled text still beats no scan.
func Parse(payload string) Bundle {
	format := DetectFormat(payload)
	b, err := parsers[format](payload)
	if err != nil || len(b) == 0 {
		b, _ = parseSingleFile(payload)
	}
	return b
}

func parseSingleFile(payload string) (Bundle, error) {
	return Bundle{{Label: "all_code", Content: payload}}, nil
}

func parseStandardJSON(payload string) (Bundle, error) {
	trimmed := strings.TrimSpace(payload)
	// Strip the outer brace pair; the remainder is standard-json input.
	inner := trimmed[1 : len(trimmed)-1]

	var input struct {
		Sources map[string]sourceFile `json:"sources"`
	}
	if err := json.Unmarshal([]byte(inner), &input); err != nil {
		return nil, err
	}
	if len(input.Sources) > 0 {
		return fromSources(input.Sources), nil
	}

	// Some payloads skip the "sources" level and map paths directly.
	var direct map[string]sourceFile
	if err := json.Unmarshal([]byte(inner), &direct); err != nil {
		return nil, err
	}
	return fromSources(direct), nil
}

func parseSourcesMap(payload string) (Bundle, error) {
	var wrapped struct {
		Sources map[string]sourceFile `json:"sources"`
	}
	if err := json.Unmarshal([]byte(payload), &wrapped); err == nil && len(wrapped.Sources) > 0 {
		return fromSources(wrapped.Sources), nil
	}

	var direct map[string]sourceFile
	if err := json.Unmarshal([]byte(payload), &direct); err != nil {
		return nil, err
	}
	return fromSources(direct), nil
}

// fromSources orders map entries by path so the bundle is deterministic.
func fromSources(sources map[string]sourceFile) Bundle {
	paths := make([]string, 0, len(sources))
	for p, f := range sources {
		if f.Content == "" {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)

	b := make(Bundle, 0, len(paths))
	for _, p := range paths {
		b = append(b, File{Label: p, Content: sources[p].Content})
	}
	return b
}

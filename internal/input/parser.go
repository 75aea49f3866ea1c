package input

import "strings"

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Parse splits raw into URL lines. Lines are separated by CRLF, CR or LF,
// trimmed, and empty lines are dropped. Input with no remaining lines
// returns ErrEmptyInput.
func Parse(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}

	lines := strings.Split(lineBreaks.Replace(raw), "\n")
	urls := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}

	if len(urls) == 0 {
		return nil, ErrEmptyInput
	}
	return urls, nil
}

package pipeline

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ai-navigator/ingest-cli/internal/model"
)

// ReadLeads loads a leads file. Both formats the crawlers emit are
// accepted: a JSON array of leads, or one JSON object per line.
func ReadLeads(path string) ([]model.Lead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: open leads file %s", path)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	first, err := firstNonSpace(reader)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read leads file %s", path)
	}

	if first == '[' {
		var leads []model.Lead
		if err := json.NewDecoder(reader).Decode(&leads); err != nil {
			return nil, eris.Wrapf(err, "pipeline: decode leads array %s", path)
		}
		return leads, nil
	}

	var leads []model.Lead
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var lead model.Lead
		if err := json.Unmarshal([]byte(text), &lead); err != nil {
			return nil, eris.Wrapf(err, "pipeline: decode lead at line %d", line)
		}
		leads = append(leads, lead)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "pipeline: scan leads file %s", path)
	}
	return leads, nil
}

// firstNonSpace peeks past leading whitespace without consuming content.
func firstNonSpace(r *bufio.Reader) (byte, error) {
	for {
		buf, err := r.Peek(1)
		if err != nil {
			return 0, err
		}
		switch buf[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := r.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return buf[0], nil
		}
	}
}

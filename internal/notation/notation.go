// Package notation implements a line-oriented text score format: header
// fields (X:, T:, M:, L:, K:, V:, Q:, %%-directives), body lines of
// whitespace-separated tokens terminated by "|", strict unknown-field
// rejection, and an inverse emitter such that parse(emit(tune))
// reproduces the tune byte-for-byte.
//
// Grounded on sergei-shchetnikov-go-cantus-firmus's internal/musicxml
// emitter for the "build a string, write it out" shape, cross-checked
// token-by-token against original_source/contrapunctus/tune.py's
// reader/writer for the exact header-field and token grammar.
package notation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go-cantus-firmus/internal/pitch"
	"go-cantus-firmus/internal/score"
)

// ErrInvalidNotation is returned for malformed input.
var ErrInvalidNotation = errors.New("notation: invalid notation")

// Emit renders tune as the line-oriented text format: header fields in a
// fixed order, then one body line per voice per bar-row.
func Emit(tune *score.Tune) string {
	var b strings.Builder
	fmt.Fprintf(&b, "X:1\n")
	if tune.Meter != "" {
		fmt.Fprintf(&b, "M:%s\n", tune.Meter)
	}
	if tune.Unit != 0 {
		fmt.Fprintf(&b, "L:1/%d\n", tune.Unit)
	}
	if tune.Key != nil {
		letter, accidental, _, _ := pitch.Spelling(tune.Key.Tonic)
		keyName := string(letter)
		switch accidental {
		case 1:
			keyName += "#"
		case -1:
			keyName += "b"
		}
		fmt.Fprintf(&b, "K:%s%s\n", keyName, modeSuffix(tune.Key.Mode))
	}
	for _, c := range tune.Comment {
		fmt.Fprintf(&b, "%%%s\n", c)
	}
	for _, v := range tune.Voices {
		fmt.Fprintf(&b, "V:%s%s\n", v.ID, voiceProps(v))
	}

	for _, v := range tune.Voices {
		fmt.Fprintf(&b, "[V:%s] ", v.ID)
		for i, bar := range v.Bars {
			for _, o := range bar.Objects {
				b.WriteString(tokenFromObject(o))
				b.WriteString(" ")
			}
			if i == len(v.Bars)-1 {
				b.WriteString("|\n")
			} else {
				b.WriteString("|")
			}
		}
	}
	return b.String()
}

func modeSuffix(mode string) string {
	switch mode {
	case "ionian", "major", "":
		return ""
	default:
		return mode[:3]
	}
}

func voiceProps(v *score.Voice) string {
	if len(v.Props) == 0 {
		return ""
	}
	var b strings.Builder
	for _, k := range []string{"clef", "name", "snm"} {
		if val, ok := v.Props[k]; ok {
			fmt.Fprintf(&b, " %s=\"%s\"", k, val)
		}
	}
	return b.String()
}

// tokenFromObject renders one bar object as
// "[accidental]?letter[octave-mark]*[digits]?[-]?", or "z<digits>" for a
// pause.
func tokenFromObject(o *score.Object) string {
	var tok string
	if o.IsPause() {
		tok = "z"
	} else {
		tok = o.Halftone.Name
	}
	if o.Duration != 1 {
		tok += strconv.Itoa(o.Duration)
	}
	if o.Bind {
		tok += "-"
	}
	return tok
}

// header holds the parsed header fields before bars are assembled.
type header struct {
	meter   string
	unit    int
	key     *pitch.Key
	comment []string
	voices  []string
	props   map[string]map[string]string
}

// Parse reads a notation-format document and reconstructs its Tune.
// Parsing is strict: an unknown single-letter field returns
// ErrInvalidNotation.
func Parse(text string) (*score.Tune, error) {
	h := &header{unit: 8, props: map[string]map[string]string{}}
	lines := strings.Split(text, "\n")

	bodyStart := len(lines)
	for i, line := range lines {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "%%") {
			h.comment = append(h.comment, line[1:])
			continue
		}
		if strings.HasPrefix(line, "%") {
			continue
		}
		if strings.HasPrefix(line, "[V:") {
			bodyStart = i
			break
		}
		if err := h.consumeField(line); err != nil {
			return nil, err
		}
	}

	tune := &score.Tune{Meter: h.meter, Unit: h.unit, Key: h.key, Comment: h.comment}
	voices := map[string]*score.Voice{}
	for _, id := range h.voices {
		v := tune.AddVoice(id)
		for k, val := range h.props[id] {
			v.Props[k] = val
		}
		voices[id] = v
	}

	for _, line := range lines[bodyStart:] {
		if line == "" || !strings.HasPrefix(line, "[V:") {
			continue
		}
		if err := parseBodyLine(line, voices, h.unit); err != nil {
			return nil, err
		}
	}

	return tune, nil
}

func (h *header) consumeField(line string) error {
	if len(line) < 2 || line[1] != ':' {
		return fmt.Errorf("%w: malformed header line %q", ErrInvalidNotation, line)
	}
	field, value := line[0], strings.TrimSpace(line[2:])
	switch field {
	case 'X', 'Q':
		// accepted, not otherwise modeled.
	case 'T':
		// title: accepted, not otherwise modeled.
	case 'M':
		h.meter = value
	case 'L':
		parts := strings.SplitN(value, "/", 2)
		if len(parts) != 2 {
			return fmt.Errorf("%w: malformed unit %q", ErrInvalidNotation, value)
		}
		den, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("%w: malformed unit denominator %q", ErrInvalidNotation, parts[1])
		}
		h.unit = den
	case 'K':
		key, err := parseKey(value)
		if err != nil {
			return err
		}
		h.key = key
	case 'V':
		id, props, err := parseVoiceDecl(value)
		if err != nil {
			return err
		}
		h.voices = append(h.voices, id)
		h.props[id] = props
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidNotation, string(field))
	}
	return nil
}

func parseKey(value string) (*pitch.Key, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: empty key field", ErrInvalidNotation)
	}
	letter := value[0]
	rest := value[1:]
	accidentalName := string(letter)
	if strings.HasPrefix(rest, "#") {
		accidentalName = "^" + accidentalName
		rest = rest[1:]
	} else if strings.HasPrefix(rest, "b") {
		accidentalName = "_" + accidentalName
		rest = rest[1:]
	}
	tonic, err := pitch.Intern(accidentalName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNotation, err)
	}
	mode := strings.TrimSpace(rest)
	if mode == "" {
		mode = "major"
	}
	mode = expandModeName(mode)
	return pitch.NewKey(tonic, mode)
}

var modeAbbrevs = map[string]string{
	"maj": "major", "min": "minor", "ion": "ionian", "dor": "dorian",
	"phr": "phrygian", "lyd": "lydian", "mix": "mixolydian",
	"aeo": "aeolian", "loc": "locrian",
}

func expandModeName(abbrev string) string {
	if full, ok := modeAbbrevs[strings.ToLower(abbrev)]; ok {
		return full
	}
	return strings.ToLower(abbrev)
}

// parseVoiceDecl parses "id clef=... name=... snm=..." with values
// optionally quoted.
func parseVoiceDecl(value string) (string, map[string]string, error) {
	fields := splitVoiceFields(value)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("%w: empty voice declaration", ErrInvalidNotation)
	}
	id := fields[0]
	props := map[string]string{}
	for _, f := range fields[1:] {
		kv := strings.SplitN(f, "=", 2)
		if len(kv) != 2 {
			return "", nil, fmt.Errorf("%w: malformed voice property %q", ErrInvalidNotation, f)
		}
		props[kv[0]] = strings.Trim(kv[1], "\"")
	}
	return id, props, nil
}

// splitVoiceFields splits on whitespace while keeping quoted substrings
// intact.
func splitVoiceFields(value string) []string {
	var out []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range value {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ' ' && !inQuotes:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func parseBodyLine(line string, voices map[string]*score.Voice, unit int) error {
	end := strings.Index(line, "]")
	if !strings.HasPrefix(line, "[V:") || end < 0 {
		return fmt.Errorf("%w: malformed body line %q", ErrInvalidNotation, line)
	}
	id := line[3:end]
	voice, ok := voices[id]
	if !ok {
		return fmt.Errorf("%w: body line references undeclared voice %q", ErrInvalidNotation, id)
	}

	rest := strings.TrimSpace(line[end+1:])
	for _, barText := range strings.Split(rest, "|") {
		barText = strings.TrimSpace(barText)
		if barText == "" {
			continue
		}
		bar := voice.AddBar(unit)
		for _, tok := range strings.Fields(barText) {
			obj, err := parseToken(tok)
			if err != nil {
				return err
			}
			if err := bar.Add(obj); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidNotation, err)
			}
		}
	}
	return nil
}

// parseToken parses "[accidental]?letter[octave-mark]*[digits]?[-]?", or
// "z" for a pause, into a bar object with Duration defaulting to 1.
func parseToken(tok string) (*score.Object, error) {
	bind := false
	if strings.HasSuffix(tok, "-") {
		bind = true
		tok = tok[:len(tok)-1]
	}

	i := len(tok)
	for i > 0 && tok[i-1] >= '0' && tok[i-1] <= '9' {
		i--
	}
	durationStr, name := tok[i:], tok[:i]
	duration := 1
	if durationStr != "" {
		d, err := strconv.Atoi(durationStr)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed duration in token %q", ErrInvalidNotation, tok)
		}
		duration = d
	}

	if name == "z" {
		return &score.Object{Duration: duration, Bind: bind}, nil
	}
	h, err := pitch.Intern(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNotation, err)
	}
	return &score.Object{Halftone: h, Duration: duration, Bind: bind}, nil
}

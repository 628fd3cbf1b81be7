package style

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// UnmarshalJSON accepts the field names as well as the generator form's
// aliases "bg" and "border" (see the package doc for which one wins).
// borderWidth may be a number or a numeric string.
func (o *Options) UnmarshalJSON(data []byte) error {
	var raw struct {
		Label       string          `json:"label"`
		Font        string          `json:"font"`
		Background  string          `json:"background"`
		Bg          string          `json:"bg"`
		FontColor   string          `json:"fontColor"`
		BorderStyle string          `json:"borderStyle"`
		Border      string          `json:"border"`
		BorderColor string          `json:"borderColor"`
		BorderWidth json.RawMessage `json:"borderWidth"`
		Layout      string          `json:"layout"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*o = Options{
		Label:       raw.Label,
		Font:        raw.Font,
		Background:  withAlias(raw.Background, raw.Bg),
		FontColor:   raw.FontColor,
		BorderStyle: withAlias(raw.BorderStyle, raw.Border),
		BorderColor: raw.BorderColor,
		BorderWidth: parseRawWidth(raw.BorderWidth),
		Layout:      raw.Layout,
	}
	return nil
}

// withAlias returns the field value, or the alias when the field is blank.
func withAlias(field, alias string) string {
	if v := strings.TrimSpace(field); v != "" {
		return v
	}
	return strings.TrimSpace(alias)
}

func parseRawWidth(msg json.RawMessage) *float64 {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return nil
	}
	if msg[0] == '"' {
		s, err := strconv.Unquote(string(msg))
		if err != nil {
			return nil
		}
		return ParseBorderWidth(s)
	}
	return ParseBorderWidth(string(msg))
}

package render

import (
	"encoding/hex"
	"image/color"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Color is an RGBA color written in descriptors either as "#rrggbb", "#rrggbbaa"
// or as a list of 3 or 4 channel values in 0..255.
type Color color.RGBA

func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA(c).RGBA()
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := ParseColor(value.Value)
		if err != nil {
			return eris.Wrapf(err, "line %d", value.Line)
		}
		*c = parsed
		return nil
	case yaml.SequenceNode:
		var channels []uint8
		if err := value.Decode(&channels); err != nil {
			return eris.Wrapf(err, "line %d", value.Line)
		}
		if len(channels) != 3 && len(channels) != 4 {
			return eris.Errorf("line %d: color needs 3 or 4 channels, got %d", value.Line, len(channels))
		}
		*c = Color{R: channels[0], G: channels[1], B: channels[2], A: 255}
		if len(channels) == 4 {
			c.A = channels[3]
		}
		return nil
	}
	return eris.Errorf("line %d: unsupported color", value.Line)
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil || (len(raw) != 3 && len(raw) != 4) {
		return Color{}, eris.Errorf("invalid color %q", s)
	}
	c := Color{R: raw[0], G: raw[1], B: raw[2], A: 255}
	if len(raw) == 4 {
		c.A = raw[3]
	}
	return c, nil
}

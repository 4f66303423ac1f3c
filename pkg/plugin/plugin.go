// Package plugin reads per-plugin settings from the server's configuration.
//
// The only setting taggraph consumes is the "options" flag, which turns on
// the network widget's configure panel. It is reported as a [Flag] with
// three states so that "not configured" and "configured off" stay distinct,
// and fetch failures are returned as errors instead of being read as off.
package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taggraph/pkg/errors"
	"github.com/matzehuels/taggraph/pkg/graphql"
	"github.com/matzehuels/taggraph/pkg/tags"
)

// DefaultID is the plugin id taggraph's settings are stored under.
const DefaultID = "tagGraph"

// OptionsKey is the configuration field that enables the configure panel.
const OptionsKey = "options"

// ConfigurationQuery fetches every plugin's configuration blob.
const ConfigurationQuery = `query Configuration {
  configuration {
    plugins
  }
}`

// Flag is a tri-state boolean setting.
type Flag int

const (
	FlagUnset Flag = iota
	FlagOff
	FlagOn
)

// Enabled reports whether the flag is on. Unset counts as off.
func (f Flag) Enabled() bool { return f == FlagOn }

func (f Flag) String() string {
	switch f {
	case FlagOn:
		return "on"
	case FlagOff:
		return "off"
	default:
		return "unset"
	}
}

// Client reads plugin configuration.
type Client struct {
	gql    tags.Doer
	logger *log.Logger
}

// NewClient returns a Client. A nil logger discards output.
func NewClient(gql tags.Doer, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{gql: gql, logger: logger}
}

type configurationData struct {
	Configuration *struct {
		Plugins map[string]map[string]json.RawMessage `json:"plugins"`
	} `json:"configuration"`
}

// Settings returns the raw configuration of pluginID. A plugin with no
// stored configuration yields a nil map and no error.
func (c *Client) Settings(ctx context.Context, pluginID string) (map[string]json.RawMessage, error) {
	if err := errors.ValidatePluginID(pluginID); err != nil {
		return nil, err
	}
	var data configurationData
	if err := c.gql.Do(ctx, graphql.Request{Query: ConfigurationQuery}, &data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigUnavailable, err, "fetch plugin configuration")
	}
	if data.Configuration == nil {
		return nil, errors.Wrap(errors.ErrCodeConfigUnavailable,
			fmt.Errorf("%w: missing data.configuration", graphql.ErrMalformedResponse),
			"fetch plugin configuration")
	}
	return data.Configuration.Plugins[pluginID], nil
}

// OptionsFlag reads the options flag of pluginID.
func (c *Client) OptionsFlag(ctx context.Context, pluginID string) (Flag, error) {
	settings, err := c.Settings(ctx, pluginID)
	if err != nil {
		return FlagUnset, err
	}
	raw, ok := settings[OptionsKey]
	if !ok {
		c.logger.Debug("plugin option not set", "plugin", pluginID, "key", OptionsKey)
		return FlagUnset, nil
	}
	f := ParseFlag(raw)
	c.logger.Debug("plugin option", "plugin", pluginID, "key", OptionsKey, "value", f)
	return f, nil
}

// ParseFlag interprets a JSON value. Truthy values are true, non-zero
// numbers and the strings true, 1, yes and on in any case. null is unset;
// anything else is off.
func ParseFlag(raw json.RawMessage) Flag {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return FlagOff
	}
	switch x := v.(type) {
	case nil:
		return FlagUnset
	case bool:
		return flagOf(x)
	case float64:
		return flagOf(x != 0)
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes", "on":
			return FlagOn
		}
		return FlagOff
	default:
		return FlagOff
	}
}

func flagOf(b bool) Flag {
	if b {
		return FlagOn
	}
	return FlagOff
}

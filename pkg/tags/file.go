package tags

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/taggraph/pkg/errors"
)

// LoadFilterFile reads a TagFilter from a .json, .yaml/.yml or .toml file.
// The decoded filter is validated.
func LoadFilterFile(path string) (*TagFilter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFilter, err, "read filter file")
	}
	return ParseFilter(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// ParseFilter decodes a TagFilter in the given format (json, yaml, yml, toml).
func ParseFilter(data []byte, format string) (*TagFilter, error) {
	var f TagFilter
	var err error
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&f)
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&f)
	case "toml":
		var md toml.MetaData
		md, err = toml.Decode(string(data), &f)
		if err == nil {
			if undec := md.Undecoded(); len(undec) > 0 {
				return nil, errors.New(errors.ErrCodeInvalidFilter, "unknown filter field %q", undec[0].String())
			}
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFilter, "unsupported filter format %q (use json, yaml or toml)", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFilter, err, "decode %s filter", format)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

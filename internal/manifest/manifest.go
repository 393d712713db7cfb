// Package manifest edits the mirror's package.json in place.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrNotObject is returned when the manifest's top level is not a JSON object.
var ErrNotObject = errors.New("manifest is not a JSON object")

// SetVersion rewrites the "version" field of the package.json at path.
// Key order is kept; a missing field is appended. The file is re-indented
// with two spaces and ends with a newline.
func SetVersion(path, version string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := Rewrite(data, "version", version)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return os.WriteFile(path, out, 0o644)
}

// Version reads the "version" field of the package.json at path.
func Version(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if err := validObject(data); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return gjson.GetBytes(data, "version").String(), nil
}

// Rewrite sets key to the string value in the JSON object data.
func Rewrite(data []byte, key, value string) ([]byte, error) {
	if err := validObject(data); err != nil {
		return nil, err
	}
	set, err := sjson.SetBytes(bytes.TrimSpace(data), escapeKey(key), value)
	if err != nil {
		return nil, fmt.Errorf("set %q: %w", key, err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, set, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func validObject(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("invalid JSON")
	}
	if !gjson.ParseBytes(data).IsObject() {
		return ErrNotObject
	}
	return nil
}

// escapeKey makes key a literal single-component path.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(`\.*?|#@!=<>%:`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

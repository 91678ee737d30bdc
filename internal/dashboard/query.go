package dashboard

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Query extracts a single value from a JSON document using JSONPath syntax
// ($.foo.bar), which is converted to gjson format.
// Array access: $.rows[0].rpm -> rows.0.rpm
func Query(body []byte, jsonPath string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("invalid JSON in response body")
	}
	value := gjson.GetBytes(body, convertJSONPath(jsonPath))
	if !value.Exists() {
		return "", fmt.Errorf("path %q not found", jsonPath)
	}
	return value.String(), nil
}

// convertJSONPath converts JSONPath syntax to gjson path format.
// $.foo.bar -> foo.bar
// $.rows[0].rpm -> rows.0.rpm
// $.columns[*].mean -> columns.#.mean
func convertJSONPath(path string) string {
	if strings.HasPrefix(path, "$.") {
		path = path[2:]
	} else if strings.HasPrefix(path, "$") {
		path = path[1:]
	}

	var result strings.Builder
	i := 0
	for i < len(path) {
		if path[i] == '[' {
			j := i + 1
			for j < len(path) && path[j] != ']' {
				j++
			}
			if j < len(path) {
				content := path[i+1 : j]
				if content == "*" {
					result.WriteString(".#")
				} else {
					result.WriteByte('.')
					result.WriteString(content)
				}
				i = j + 1
				continue
			}
		}
		result.WriteByte(path[i])
		i++
	}

	return result.String()
}

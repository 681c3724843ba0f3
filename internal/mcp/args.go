package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// bindArguments decodes MCP request arguments into target using json tags.
// Clients may send every parameter as a string, so JSON-encoded arrays and
// comma-separated lists are both accepted for slice fields.
func bindArguments[T any](args map[string]interface{}, target *T) error {
	// Unmarshal JSON-looking strings into slice and map fields
	jsonStringHook := func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t.Kind() != reflect.Slice && t.Kind() != reflect.Map {
			return data, nil
		}

		raw := strings.TrimSpace(data.(string))
		if !(strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]")) &&
			!(strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}")) {
			return data, nil
		}

		ptr := reflect.New(t)
		if err := json.Unmarshal([]byte(raw), ptr.Interface()); err != nil {
			return data, nil
		}
		return ptr.Elem().Interface(), nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// argumentsMap extracts the arguments object of a tool call.
func argumentsMap(arguments any) (map[string]interface{}, bool) {
	if arguments == nil {
		return map[string]interface{}{}, true
	}
	argsMap, ok := arguments.(map[string]interface{})
	return argsMap, ok
}

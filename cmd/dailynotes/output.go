package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// print renders v as JSON or YAML when requested, otherwise calls plain.
func (c *cli) print(w io.Writer, v any, plain func(io.Writer) error) error {
	switch {
	case c.jsonOut:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case c.yamlOut:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return plain(w)
	}
}

func printText(text string) func(io.Writer) error {
	return func(w io.Writer) error {
		if text == "" {
			return nil
		}
		_, err := fmt.Fprintln(w, text)
		return err
	}
}

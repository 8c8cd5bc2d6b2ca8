package cmd

import (
	"encoding/json"
	"fmt"
)

// outputJSON marshals and prints the result as JSON
func outputJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

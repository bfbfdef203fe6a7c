package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
)

func writeJSON(w io.Writer, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}

// writeBody indents JSON bodies and writes anything else verbatim.
func writeBody(w io.Writer, body []byte) error {
	if len(body) == 0 {
		return nil
	}
	if gjson.ValidBytes(body) {
		var out bytes.Buffer
		if err := json.Indent(&out, body, "", "  "); err == nil {
			_, err = fmt.Fprintln(w, out.String())
			return err
		}
	}
	_, err := fmt.Fprintln(w, string(body))
	return err
}

// Package plist renders the --plist output mode: an XML property-list
// document bit-exact with the macOS conventions the tool mimics, for
// the small set of string fields and arrays this tool ever reports. No
// Windows equivalent of plutil exists, so the document is hand-built
// rather than shelled out to an external formatter, the same way this
// ecosystem hand-builds any document format it needs to both read and
// write.
package plist

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
`

const footer = `</plist>
`

// KV is one ordered key/value pair for MarshalDict; plist dicts are
// conventionally key-ordered in source-document order, not sorted.
type KV struct {
	Key   string
	Value string
}

// MarshalArray renders values as a plist <array> of <string> elements.
func MarshalArray(values []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString("<array>\n")
	for _, v := range values {
		if err := writeStringElement(&buf, v); err != nil {
			return nil, err
		}
	}
	buf.WriteString("</array>\n")
	buf.WriteString(footer)
	return buf.Bytes(), nil
}

// MarshalDict renders pairs as a plist <dict> of <key>/<string> pairs,
// preserving the given order.
func MarshalDict(pairs []KV) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString("<dict>\n")
	for _, kv := range pairs {
		if err := writeKeyElement(&buf, kv.Key); err != nil {
			return nil, err
		}
		if err := writeStringElement(&buf, kv.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteString("</dict>\n")
	buf.WriteString(footer)
	return buf.Bytes(), nil
}

func writeStringElement(buf *bytes.Buffer, value string) error {
	buf.WriteString("\t<string>")
	if err := xml.EscapeText(buf, []byte(value)); err != nil {
		return fmt.Errorf("escape string value: %w", err)
	}
	buf.WriteString("</string>\n")
	return nil
}

func writeKeyElement(buf *bytes.Buffer, key string) error {
	buf.WriteString("\t<key>")
	if err := xml.EscapeText(buf, []byte(key)); err != nil {
		return fmt.Errorf("escape key: %w", err)
	}
	buf.WriteString("</key>\n")
	return nil
}

package plugin

import (
	"context"
	"errors"
	"strings"

	"github.com/beevik/etree"
)

// NewXMLParser returns the built-in XML parser. A document becomes a map
// holding its root element:
//
//	<pet id="7"><name>Rex</name><tag>a</tag><tag>b</tag></pet>
//
// decodes to
//
//	{"pet": {"@id": "7", "name": "Rex", "tag": ["a", "b"]}}
//
// Attributes are prefixed with "@", repeated child elements become
// sequences, and an element with attributes or children keeps its text under
// "#text". Leaf elements without attributes decode to their text.
func NewXMLParser() Parser {
	return Parser{
		Name:       NameXML,
		Order:      OrderXML,
		CanParse:   Extensions(".xml", ".xsd", ".wsdl"),
		AllowEmpty: true,
		Parse: func(_ context.Context, file *FileInfo) (any, error) {
			if isBlank(file.Data) {
				return Undefined, nil
			}
			doc := etree.NewDocument()
			if err := doc.ReadFromBytes(file.Data); err != nil {
				return nil, err
			}
			root := doc.Root()
			if root == nil {
				return nil, errors.New("xml document has no root element")
			}
			return map[string]any{elementName(root): elementValue(root)}, nil
		},
	}
}

func elementName(e *etree.Element) string {
	if e.Space != "" {
		return e.Space + ":" + e.Tag
	}
	return e.Tag
}

func elementValue(e *etree.Element) any {
	text := strings.TrimSpace(e.Text())
	children := e.ChildElements()
	if len(e.Attr) == 0 && len(children) == 0 {
		return text
	}

	m := make(map[string]any, len(e.Attr)+len(children)+1)
	for _, attr := range e.Attr {
		key := "@" + attr.Key
		if attr.Space != "" {
			key = "@" + attr.Space + ":" + attr.Key
		}
		m[key] = attr.Value
	}
	for _, child := range children {
		name := elementName(child)
		value := elementValue(child)
		switch existing := m[name].(type) {
		case nil:
			m[name] = value
		case []any:
			m[name] = append(existing, value)
		default:
			m[name] = []any{existing, value}
		}
	}
	if text != "" {
		m["#text"] = text
	}
	return m
}

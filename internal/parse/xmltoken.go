package parse

import (
	"encoding/xml"
	"io"
)

// XMLTokenSource adapts the vendor's nested <group name="..." class="...">
// / <param key="..." value="..."/> / </group> document to the TokenSource
// contract using encoding/xml's streaming Decoder.Token(), which reads one
// XML token at a time off the underlying io.Reader and never loads the
// whole document into memory — this is what gives the parser its
// bounded-memory guarantee on multi-hundred-megabyte inputs.
type XMLTokenSource struct {
	dec *xml.Decoder
}

// NewXMLTokenSource wraps r as a streaming TokenSource.
func NewXMLTokenSource(r io.Reader) *XMLTokenSource {
	return &XMLTokenSource{dec: xml.NewDecoder(r)}
}

func attr(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Next implements TokenSource. Only <group> and <param> elements are
// surfaced; the start and end tags of any other element produce no token
// (its nested <group>/<param> children are still surfaced), which keeps the
// parser tolerant of vendor markup it doesn't recognize.
func (x *XMLTokenSource) Next() (Token, error) {
	for {
		tok, err := x.dec.Token()
		if err != nil {
			return Token{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "group":
				return Token{
					Kind:  ElementStart,
					Name:  attr(t.Attr, "name"),
					Class: attr(t.Attr, "class"),
				}, nil
			case "param":
				return Token{
					Kind:  Param,
					Key:   attr(t.Attr, "key"),
					Value: attr(t.Attr, "value"),
				}, nil
			}
			// Unrecognized element: let the decoder walk past it normally;
			// its own EndElement will surface on a later call and be
			// ignored below since only "group" end tags matter.
		case xml.EndElement:
			if t.Name.Local == "group" {
				return Token{Kind: ElementEnd}, nil
			}
		}
	}
}

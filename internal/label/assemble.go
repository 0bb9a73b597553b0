// Package label assembles and renders the text printed on a spine label.
package label

import "fmt"

// DefaultHeader is the fixed first line of every label.
const DefaultHeader = "AMH"

// Document is the finished label text. It owns nothing and is rendered once.
type Document struct {
	UID        uint64
	Header     string
	UIDToken   string
	CallNumber []string
}

// Lines returns the label in print order: header, a blank separator, the UID
// token and the call number lines.
func (d Document) Lines() []string {
	lines := make([]string, 0, len(d.CallNumber)+3)
	lines = append(lines, d.Header, "", d.UIDToken)
	return append(lines, d.CallNumber...)
}

// Assembler builds label documents with a configurable header.
type Assembler struct {
	Header string
}

// Document builds the label document for uid and the canonical call number
// lines. The lines are copied.
func (a Assembler) Document(uid uint64, callNumber []string) Document {
	header := a.Header
	if header == "" {
		header = DefaultHeader
	}
	return Document{
		UID:        uid,
		Header:     header,
		UIDToken:   FormatUID(uid),
		CallNumber: append([]string(nil), callNumber...),
	}
}

// Assemble returns the label lines for uid.
func (a Assembler) Assemble(uid uint64, callNumber []string) []string {
	return a.Document(uid, callNumber).Lines()
}

// Assemble returns the label lines for uid using DefaultHeader.
func Assemble(uid uint64, callNumber []string) []string {
	return Assembler{}.Assemble(uid, callNumber)
}

// FormatUID renders uid as uppercase hexadecimal, zero-padded to four digits.
func FormatUID(uid uint64) string {
	return fmt.Sprintf("%04X", uid)
}

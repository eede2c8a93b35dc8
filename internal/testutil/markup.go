package testutil

import (
	"github.com/hupe1980/agentzero/core"
	"github.com/hupe1980/agentzero/model"
	"github.com/hupe1980/agentzero/protocol"
)

// Respond returns an inline response-tool request answering with text.
//
//	Respond("hi") == `<tool$ name="response">hi</tool$>`
func Respond(text string) string {
	return protocol.OpenMarker + ` name="response">` + text + protocol.CloseMarker
}

// Call renders a tool request. attrs are key/value pairs; a trailing key
// without value is ignored.
func Call(name, body string, attrs ...string) string {
	req := core.ToolRequest{Name: name, Attributes: map[string]string{}, Body: body}
	for i := 0; i+1 < len(attrs); i += 2 {
		req.Attributes[attrs[i]] = attrs[i+1]
	}
	return protocol.Format(req)
}

// Delegate renders a call_subordinate request.
func Delegate(message string) string { return Call("call_subordinate", message) }

// NewScripted returns a MockModel that streams texts, one turn each.
func NewScripted(texts ...string) *model.MockModel {
	m := model.NewMockModel("mock", "mock")
	m.AddText(texts...)
	return m
}

package chat

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

const (
	maxTokens   = 800
	temperature = 0.7
)

// Minimal OpenAI-style request payload. The configured model is not sent.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

func newChatRequest(userMessage string) chatRequest {
	return chatRequest{
		Messages:    []chatMessage{{Role: "user", Content: userMessage}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// parseCompletion extracts the reply text from a response body. It accepts
// the OpenAI-compatible shape first and a top-level "output" field second.
func parseCompletion(body []byte) (string, *Error) {
	if !utf8.Valid(body) {
		return "", newError(KindParse, errors.New("response body is not valid UTF-8"))
	}
	if !gjson.ValidBytes(body) {
		return "", newError(KindParse, errors.New("response body is not valid JSON"))
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return "", newError(KindParse, fmt.Errorf("response root is %s, not an object", root.Type))
	}

	if choices := root.Get("choices"); choices.Exists() {
		if !choices.IsArray() {
			return "", newError(KindParse, fmt.Errorf("choices is %s, not an array", choices.Type))
		}
		if items := choices.Array(); len(items) > 0 {
			first := items[0]
			if !first.IsObject() {
				return "", newError(KindParse, errors.New("choices[0] is not an object"))
			}
			if message := first.Get("message"); message.Exists() {
				if !message.IsObject() {
					return "", newError(KindParse, errors.New("choices[0].message is not an object"))
				}
				if content := message.Get("content"); content.Exists() {
					return stringOrEmpty("choices[0].message.content", content)
				}
			}
		}
	}

	if output := root.Get("output"); output.Exists() {
		return stringOrEmpty("output", output)
	}

	return "", &Error{Kind: KindParse, Message: MsgUnknownShape, Cause: errUnknownShape}
}

// stringOrEmpty treats JSON null as an empty reply.
func stringOrEmpty(field string, v gjson.Result) (string, *Error) {
	switch v.Type {
	case gjson.String:
		return v.Str, nil
	case gjson.Null:
		return "", nil
	}
	return "", newError(KindParse, fmt.Errorf("%s is %s, not a string", field, v.Type))
}

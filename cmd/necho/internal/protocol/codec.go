package protocol

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Decode parses one request line (without its terminator).
// Unknown fields are ignored.
func Decode(line string) (Request, error) {
	if !gjson.Valid(line) {
		return Request{}, &DecodeError{Reason: ErrMalformed, Detail: "input is not valid JSON"}
	}

	root := gjson.Parse(line)
	if !root.IsObject() {
		return Request{}, &DecodeError{Reason: ErrMalformed, Detail: "expected a JSON object"}
	}

	if key, ok := duplicateKey(root); ok {
		return Request{}, &DecodeError{Reason: ErrMalformed, Detail: fmt.Sprintf("duplicate key %q", key)}
	}

	n := root.Get("n")
	message := root.Get("message")
	if !n.Exists() || !message.Exists() {
		return Request{}, &DecodeError{Reason: ErrMissingField}
	}

	if n.Type != gjson.Number {
		return Request{}, &DecodeError{Reason: ErrNotInteger}
	}
	// Raw keeps the literal, so 3.0 and 1e2 are rejected instead of truncated.
	count, err := strconv.Atoi(n.Raw)
	if err != nil {
		return Request{}, &DecodeError{Reason: ErrNotInteger}
	}

	if message.Type != gjson.String {
		return Request{}, &DecodeError{Reason: ErrNotString}
	}

	return Request{N: count, Message: message.String()}, nil
}

// duplicateKey reports the first top-level key that occurs twice.
func duplicateKey(obj gjson.Result) (string, bool) {
	seen := make(map[string]struct{})
	var dup string
	found := false
	obj.ForEach(func(key, _ gjson.Result) bool {
		k := key.String()
		if _, ok := seen[k]; ok {
			dup, found = k, true
			return false
		}
		seen[k] = struct{}{}
		return true
	})
	return dup, found
}

// EncodeSuccess renders a success line with keys in status, n, echoes order.
func EncodeSuccess(n int, echoes []string) (string, error) {
	out, err := sjson.Set("", "status", StatusSuccess)
	if err != nil {
		return "", fmt.Errorf("failed to encode status: %w", err)
	}
	if out, err = sjson.Set(out, "n", n); err != nil {
		return "", fmt.Errorf("failed to encode n: %w", err)
	}
	if echoes == nil {
		echoes = []string{}
	}
	if out, err = sjson.Set(out, "echoes", echoes); err != nil {
		return "", fmt.Errorf("failed to encode echoes: %w", err)
	}
	return out, nil
}

// EncodeError renders an error line.
func EncodeError(message string) (string, error) {
	out, err := sjson.Set("", "status", StatusError)
	if err != nil {
		return "", fmt.Errorf("failed to encode status: %w", err)
	}
	if out, err = sjson.Set(out, "message", message); err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}
	return out, nil
}

// Encode renders any Response as a single line without terminator.
func Encode(resp Response) (string, error) {
	switch r := resp.(type) {
	case Success:
		return EncodeSuccess(r.N, r.Echoes)
	case Failure:
		return EncodeError(r.Message)
	default:
		return "", fmt.Errorf("unsupported response type %T", resp)
	}
}

// DecodeResponse parses a response line as produced by Encode.
func DecodeResponse(line string) (Response, error) {
	if !gjson.Valid(line) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrMalformed)
	}

	root := gjson.Parse(line)
	switch status := root.Get("status").String(); status {
	case StatusSuccess:
		n := root.Get("n")
		if n.Type != gjson.Number {
			return nil, fmt.Errorf("%w: success response without numeric n", ErrMalformed)
		}
		items := root.Get("echoes").Array()
		echoes := make([]string, 0, len(items))
		for _, item := range items {
			echoes = append(echoes, item.String())
		}
		return Success{N: int(n.Int()), Echoes: echoes}, nil
	case StatusError:
		return Failure{Message: root.Get("message").String()}, nil
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrMalformed, status)
	}
}

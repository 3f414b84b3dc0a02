package erp

import (
    "encoding/json"
    "fmt"
)

// odataError mirrors the remote error envelope. The inner error, when
// present, carries the field-validation detail worth surfacing.
type odataError struct {
    Error struct {
        Message    string `json:"message"`
        InnerError *struct {
            Message string `json:"message"`
        } `json:"innererror"`
    } `json:"error"`
}

// RemoteError is a non-2xx response from the order-entry endpoint. It keeps
// the raw body so the classifier can dig out the functional message.
type RemoteError struct {
    Op         string
    StatusCode int
    Body       []byte
}

func (e *RemoteError) Error() string {
    return fmt.Sprintf("%s: remote returned %d: %s", e.Op, e.StatusCode, e.Message())
}

// Message returns the most detailed message the response body offers:
// the nested inner error first, then the top-level message, then the raw
// body. Undecodable bodies are returned as-is.
func (e *RemoteError) Message() string {
    var oe odataError
    if err := json.Unmarshal(e.Body, &oe); err == nil {
        if oe.Error.InnerError != nil && oe.Error.InnerError.Message != "" {
            return oe.Error.InnerError.Message
        }
        if oe.Error.Message != "" {
            return oe.Error.Message
        }
    }
    return string(e.Body)
}

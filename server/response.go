// Copyright (c) Microsoft. All rights reserved.

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// writeTextChunk writes text as a single data-stream text part,
// `0:<json string>` followed by a newline, over a chunked response.
func writeTextChunk(w http.ResponseWriter, text string) error {
	var buf bytes.Buffer
	buf.WriteString("0:")
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(text); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Transfer-Encoding", "chunked")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}
	return http.NewResponseController(w).Flush()
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Copyright (c) Microsoft. All rights reserved.

package server

import (
	"encoding/base64"
	"net/http"
)

// SessionID derives a session key from the client's User-Agent and
// X-Forwarded-For headers: "session_" followed by the first 16 characters of
// their base64 encoding. Missing headers count as "unknown".
//
// Clients behind the same proxy with the same browser share a session. The
// key identifies a conversation; it does not authenticate anyone.
func SessionID(r *http.Request) string {
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		ua = "unknown"
	}
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = "unknown"
	}
	enc := base64.StdEncoding.EncodeToString([]byte(ua + ip))
	if len(enc) > 16 {
		enc = enc[:16]
	}
	return "session_" + enc
}

// Package httpx holds the uniform JSON envelope every response goes
// through. No other component writes to the response body directly.
package httpx

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func OK(w http.ResponseWriter, status int, data any) {
	write(w, status, envelope{Success: true, Status: status, Data: data})
}

func Message(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Success: true, Status: status, Message: message})
}

func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Success: false, Status: status, Message: message})
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

package response

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// JSON writes data as a JSON response. The body is encoded before the
// header is sent, so an encoding failure still yields a clean 500.
func JSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if data != nil {
		if err := json.NewEncoder(&buf).Encode(data); err != nil {
			http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"internal server error"}}`, http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

package respond

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, map[string]string{"error": message})
}

// ValidationError отдает список сообщений формы
func ValidationError(w http.ResponseWriter, r *http.Request, details []string) {
	JSON(w, r, http.StatusBadRequest, map[string]interface{}{
		"error":   "validation error",
		"details": details,
	})
}

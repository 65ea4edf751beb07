package controllers

import "net/http"

// Health reports that the API is up
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageBody{Message: "D's Choco Bliss API is running!"})
}

// NotFound answers unknown routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Route not found"})
}

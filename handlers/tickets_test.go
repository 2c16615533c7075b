package handlers

import (
	"errors"
	"net/http"
	"testing"

	"campus-facilities-api/services"
)

func TestTicketErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", services.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", errors.New("x"), http.StatusInternalServerError},
		{"validation", &services.ValidationError{Field: "description", Reason: "must not be blank"}, http.StatusBadRequest},
		{"remote status", &services.RemoteServiceError{Op: "post", StatusCode: 401}, http.StatusBadGateway},
		{"remote transport", &services.RemoteServiceError{Op: "get", Err: errors.New("connection refused")}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := ticketErrorStatus(tc.err)
			if got != tc.want {
				t.Errorf("ticketErrorStatus(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

package middleware

import (
	"github.com/go-chi/cors"
)

// NewCORS lets the listed browser origins call the ledger API. Only the verbs the
// router serves are allowed, and X-Request-Id is exposed so a client can quote the
// id chi assigned to a failed request.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			"X-Request-Id",
		},
		ExposedHeaders:   []string{"Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// Package web exposes the JSON API over net/http.
package web

import (
	"net/http"
	"time"

	"traindesk/internal/adapters/email"
	"traindesk/internal/adapters/http/middleware"
	"traindesk/internal/adapters/http/perf"
	courseStore "traindesk/internal/adapters/storage/course"
	enrollmentStore "traindesk/internal/adapters/storage/enrollment"
	mentorStore "traindesk/internal/adapters/storage/mentor"
	studentStore "traindesk/internal/adapters/storage/student"
)

// Stores holds all storage dependencies.
type Stores struct {
	CourseStore     courseStore.Store
	EnrollmentStore enrollmentStore.Store
	StudentStore    studentStore.Store
	MentorStore     mentorStore.Store
}

// Global stores instance (set by NewMux)
var stores *Stores

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector

	mux := http.NewServeMux()
	registerRoutes(mux)

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}

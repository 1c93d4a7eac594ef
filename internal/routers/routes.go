package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/korobprog/supermock-app-sub000/internal/handlers"
)

// Register mounts every API route on the router.
func Register(r *chi.Mux,
	profiles *handlers.ProfileHandler,
	availability *handlers.AvailabilityHandler,
	match *handlers.MatchingHandler,
	sessions *handlers.SessionHandler,
) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/profiles", func(r chi.Router) {
			r.Post("/candidates", profiles.CreateCandidate)
			r.Post("/interviewers", profiles.CreateInterviewer)
			r.Get("/interviewers/{interviewerId}", profiles.GetInterviewer)
		})

		r.Route("/interviewers/{interviewerId}", func(r chi.Router) {
			r.Get("/availability", availability.List)
			r.Post("/availability", availability.Create)
			r.Get("/sessions", match.InterviewerSessions)
		})
		r.Delete("/availability/{slotId}", availability.Delete)

		r.Route("/match", func(r chi.Router) {
			r.Post("/requests", match.CreateRequest)
			r.Get("/requests/{requestId}", match.GetRequest)
			r.Get("/requests/{requestId}/previews", match.GetPreviews)
			r.Post("/requests/{requestId}/schedule", match.Schedule)
			r.Post("/matches/{matchId}/complete", match.Complete)
			r.Get("/sessions", match.RecentSessions)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessions.Create)
			r.Get("/", sessions.List)
			r.Get("/snapshot", sessions.Snapshot)
			r.Get("/counts", sessions.Counts)
			r.HandleFunc("/ws", sessions.Watch)
			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", sessions.Get)
				r.Delete("/", sessions.Remove)
				r.Post("/join", sessions.Join)
				r.Post("/heartbeat", sessions.Heartbeat)
				r.Post("/leave", sessions.Leave)
				r.Post("/status", sessions.UpdateStatus)
				r.Post("/token", sessions.IssueToken)
			})
		})
	})
}

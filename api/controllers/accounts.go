package controllers

import (
	"net/http"

	"github.com/nayeemhasan/glamspot-backend/api/responses"
	"github.com/nayeemhasan/glamspot-backend/api/validators"
	"github.com/nayeemhasan/glamspot-backend/internal/accounts"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
)

type onboardingLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// OnboardingLink issues a fresh processor onboarding URL for the seller.
func OnboardingLink(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req onboardingLinkRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		link, err := svc.OnboardingLink(r.Context(), userID, req.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"onboarding_url": link})
	}
}

// AccountMe returns the user's processor account state as last synced.
func AccountMe(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		acct, err := svc.GetForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAccountResponse(acct))
	}
}

// AccountSync refreshes onboarding state from the processor.
func AccountSync(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		acct, err := svc.SyncStatus(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAccountResponse(acct))
	}
}

// TopSellers returns the current popularity leaderboard.
func TopSellers(repo accounts.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 10, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := repo.TopSellers(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]accountResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newAccountResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

type UsersHandler struct {
	ProfileService *service.ProfileService
}

// HandleGetMe returns the caller's profile.
//
//	@Summary		Own profile
//	@Description	The source field tells whether the cache answered.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.Response[authsdk.Profile]
//	@Failure		404	{object}	authsdk.APIError
//	@Router			/api/users/me [get].
func (h *UsersHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFromContext(r.Context())

	profile, src, err := h.ProfileService.GetSelf(r.Context(), p.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSourced(w, "", toProfile(profile), src)
}

// HandleUpdateMe changes the caller's name and/or email.
//
//	@Summary		Update own profile
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.UpdateProfileRequest	true	"Fields to change"
//	@Success		200		{object}	authsdk.Response[authsdk.Profile]
//	@Failure		400		{object}	authsdk.APIError
//	@Failure		409		{object}	authsdk.APIError
//	@Router			/api/users/me [put].
func (h *UsersHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFromContext(r.Context())

	var req authsdk.UpdateProfileRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	profile, err := h.ProfileService.UpdateSelf(r.Context(), p.ID, domain.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "profile updated", toProfile(profile))
}

// HandleDeleteMe deletes the caller's account and sessions.
//
//	@Summary		Delete own account
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.Response[any]
//	@Failure		404	{object}	authsdk.APIError
//	@Router			/api/users/me [delete].
func (h *UsersHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFromContext(r.Context())

	if err := h.ProfileService.DeleteSelf(r.Context(), p.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "account deleted", nil)
}

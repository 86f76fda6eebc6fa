package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

type AdminHandler struct {
	AdminService *service.AdminService
}

// HandleList returns one page of users.
//
//	@Summary		List users
//	@Description	page and limit default to 1 and 10; limit is capped at 100.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page	query		int	false	"Page number"
//	@Param			limit	query		int	false	"Page size"
//	@Success		200		{object}	authsdk.Response[authsdk.UserPage]
//	@Failure		403		{object}	authsdk.APIError	"Caller is not an admin"
//	@Router			/api/users/admin [get].
func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFromContext(r.Context())

	// Non-numeric values fall back to the defaults.
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, src, err := h.AdminService.ListUsers(r.Context(), p.ID, page, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSourced(w, "", toPage(result), src)
}

// HandleGet returns one user, always from the database.
//
//	@Summary		Get a user
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	authsdk.Response[authsdk.Profile]
//	@Failure		403	{object}	authsdk.APIError
//	@Failure		404	{object}	authsdk.APIError
//	@Router			/api/users/admin/users/{id} [get].
func (h *AdminHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFromContext(r.Context())

	profile, err := h.AdminService.GetUser(r.Context(), p.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "", toProfile(profile))
}

// HandleDelete deletes a user and all of their sessions.
//
//	@Summary		Delete a user
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	authsdk.Response[any]
//	@Failure		403	{object}	authsdk.APIError
//	@Failure		404	{object}	authsdk.APIError
//	@Router			/api/users/admin/users/{id} [delete].
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFromContext(r.Context())

	if err := h.AdminService.DeleteUser(r.Context(), p.ID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "user deleted", nil)
}

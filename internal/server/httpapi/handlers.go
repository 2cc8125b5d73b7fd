package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/keywarden/internal/common"
	"github.com/dmitrijs2005/keywarden/internal/server/models"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "username and password are required"})
		return
	}

	token, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "username and password are required"})
		return
	}

	token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), r.Header.Get("Authorization")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type provisionRequest struct {
	Kind     string `json:"kind"`
	Password string `json:"password"`
}

func (s *Server) handleProvision(w http.ResponseWriter, r *http.Request) {
	userID, _, _, err := s.auth.VerifyRequest(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req provisionRequest
	if err := decodeJSON(r, &req); err != nil || req.Kind == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "kind and password are required"})
		return
	}

	if err := s.auth.Provision(r.Context(), userID, models.ResourceKind(req.Kind), req.Password); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// courseKey authenticates the request and unwraps the course-category key
// for it. Every course handler starts here.
func (s *Server) courseKey(r *http.Request) (userID int64, key []byte, err error) {
	userID, sessionID, secret, err := s.auth.VerifyRequest(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		return 0, nil, err
	}

	key, err = s.auth.UnwrapResourceKey(r.Context(), userID, models.KindCourse, sessionID, secret)
	if err != nil {
		return 0, nil, err
	}

	return userID, key, nil
}

type courseResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type courseRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCourseList(w http.ResponseWriter, r *http.Request) {
	userID, key, err := s.courseKey(r)
	if err != nil {
		writeError(w, err)
		return
	}

	views, err := s.courses.List(r.Context(), userID, key)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]courseResponse, 0, len(views))
	for _, v := range views {
		out = append(out, courseResponse{ID: v.ID, Name: v.Name})
	}
	writeJSON(w, http.StatusOK, map[string][]courseResponse{"courses": out})
}

func (s *Server) handleCourseCreate(w http.ResponseWriter, r *http.Request) {
	userID, key, err := s.courseKey(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req courseRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	id, err := s.courses.Create(r.Context(), userID, key, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleCourseRename(w http.ResponseWriter, r *http.Request) {
	userID, key, err := s.courseKey(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, common.ErrNotFound)
		return
	}

	var req courseRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	if err := s.courses.Rename(r.Context(), userID, key, id, req.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCourseDelete(w http.ResponseWriter, r *http.Request) {
	userID, _, err := s.courseKey(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, common.ErrNotFound)
		return
	}

	if err := s.courses.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Package httpapi exposes the NoteHub REST API over chi.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/notehub-app/notehub/internal/errs"
	"github.com/notehub-app/notehub/internal/model"
	"github.com/notehub-app/notehub/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth  service.AuthService
	notes service.NoteService
	admin service.AdminService
	log   *zap.Logger
}

// New constructs a server with injected services.
func New(auth service.AuthService, notes service.NoteService, admin service.AdminService, log *zap.Logger) *Server {
	return &Server{auth: auth, notes: notes, admin: admin, log: log}
}

// Router assembles middleware and routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(Recover(s.log))
	r.Use(Logging(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(s.auth))

		r.Get("/notes", s.handleListNotes)
		r.Post("/notes", s.handleCreateNote)
		r.Get("/notes/{noteID:[0-9]+}", s.handleGetNote)
		r.Put("/notes/{noteID:[0-9]+}", s.handleUpdateNote)
		r.Delete("/notes/{noteID:[0-9]+}", s.handleDeleteNote)

		r.Get("/notes/{noteID:[0-9]+}/plans", s.handleListPlans)
		r.Post("/notes/{noteID:[0-9]+}/plans", s.handleCreatePlan)
		r.Get("/notes/{noteID:[0-9]+}/plans/{planID:[0-9]+}", s.handleGetPlan)
		r.Put("/notes/{noteID:[0-9]+}/plans/{planID:[0-9]+}", s.handleUpdatePlan)
		r.Delete("/notes/{noteID:[0-9]+}/plans/{planID:[0-9]+}", s.handleDeletePlan)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin(s.auth))
			r.Get("/admin/users", s.handleAdminListUsers)
			r.Get("/admin/notes", s.handleAdminListNotes)
			r.Get("/admin/users/{userID:[0-9]+}/notes", s.handleAdminListUserNotes)
		})
	})

	return r
}

// --- wire types ---

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userJSON struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type tokenJSON struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type planJSON struct {
	ID        int64     `json:"id"`
	NoteID    int64     `json:"note_id"`
	Title     string    `json:"title"`
	IsDone    bool      `json:"is_done"`
	CreatedAt time.Time `json:"created_at"`
}

type noteJSON struct {
	ID        int64      `json:"id"`
	OwnerID   int64      `json:"owner_id"`
	Title     string     `json:"title"`
	Content   *string    `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Plans     []planJSON `json:"plans,omitempty"`
}

type noteRequest struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
}

type notePatchRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type planRequest struct {
	Title  string `json:"title"`
	IsDone bool   `json:"is_done"`
}

type planPatchRequest struct {
	Title  *string `json:"title"`
	IsDone *bool   `json:"is_done"`
}

func toUserJSON(u model.User) userJSON {
	return userJSON{ID: u.ID, Username: u.Username}
}

func toPlanJSON(p model.Plan) planJSON {
	return planJSON{ID: p.ID, NoteID: p.NoteID, Title: p.Title, IsDone: p.IsDone, CreatedAt: p.CreatedAt}
}

func toPlansJSON(plans []model.Plan) []planJSON {
	out := make([]planJSON, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanJSON(p))
	}
	return out
}

func toNoteJSON(n model.Note) noteJSON {
	return noteJSON{
		ID:        n.ID,
		OwnerID:   n.OwnerID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toNoteWithPlansJSON(n model.NoteWithPlans) noteJSON {
	out := toNoteJSON(n.Note)
	out.Plans = toPlansJSON(n.Plans)
	return out
}

// --- helpers ---

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.ErrValidation
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.ErrNotFound
	}
	return id, nil
}

func ownerFromReq(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	u, ok := UserFromCtx(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthenticated)
	}
	return u, ok
}

// --- handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserJSON(*u))
}

// handleLogin consumes form fields (OAuth2 password-flow shape) and returns a
// bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, errs.ErrValidation)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	tokens, _, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenJSON{AccessToken: tokens.AccessToken, TokenType: "bearer"})
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	u, ok := ownerFromReq(w, r)
	if !ok {
		return
	}
	notes, err := s.notes.ListNotes(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]noteJSON, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteJSON(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	u, ok := ownerFromReq(w, r)
	if !ok {
		return
	}
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	n, err := s.notes.CreateNote(r.Context(), u.ID, req.Title, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toNoteJSON(*n))
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	u, ok := ownerFromReq(w, r)
	if !ok {
		return
	}
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, err)
		return
	}
	n, err := s.notes.GetNote(r.Context(), u.ID, noteID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteWithPlansJSON(*n))
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	u, ok := ownerFromReq(w, r)
	if !ok {
		return
	}
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req notePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	n, err := s.notes.UpdateNote(r.Context(), u.ID, noteID, model.NotePatch{Title: req.Title, Content: req.Content})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteJSON(*n))
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	u, ok := ownerFromReq(w, r)
	if !ok {
		return
	}
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.notes.DeleteNote(r.Context(), u.ID, noteID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	u, ok := ownerFromReq(w, r)
	if !ok {
		return
	}
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, err)
		return
	}
	plans, err := s.notes.ListPlans(r.Context(), u.ID, noteID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlansJSON(plans))
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	u, ok := ownerFromReq(w, r)
	if !ok {
		return
	}
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.notes.CreatePlan(r.Context(), u.ID, noteID, req.Title, req.IsDone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanJSON(*p))
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	u, ok := ownerFromReq(w, r)
	if !ok {
		return
	}
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, err)
		return
	}
	planID, err := pathID(r, "planID")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.notes.GetPlan(r.Context(), u.ID, noteID, planID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanJSON(*p))
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	u, ok := ownerFromReq(w, r)
	if !ok {
		return
	}
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, err)
		return
	}
	planID, err := pathID(r, "planID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req planPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.notes.UpdatePlan(r.Context(), u.ID, noteID, planID, model.PlanPatch{Title: req.Title, IsDone: req.IsDone})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanJSON(*p))
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	u, ok := ownerFromReq(w, r)
	if !ok {
		return
	}
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, err)
		return
	}
	planID, err := pathID(r, "planID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.notes.DeletePlan(r.Context(), u.ID, noteID, planID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// --- admin handlers ---

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.admin.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]userJSON, 0, len(users))
	for _, u := range users {
		out = append(out, toUserJSON(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdminListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.admin.ListNotes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]noteJSON, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteWithPlansJSON(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdminListUserNotes(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}
	notes, err := s.admin.ListUserNotes(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]noteJSON, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteWithPlansJSON(n))
	}
	writeJSON(w, http.StatusOK, out)
}

package recordstore

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"medcore/m/domain"
	"medcore/m/internal/remote"
)

// maxBody caps a single record payload.
const maxBody = 4 << 20

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store  *Store
	secret string
	log    zerolog.Logger
}

// New constructs a Handler.
func New(store *Store, secret string, log zerolog.Logger) *Handler {
	return &Handler{store: store, secret: secret, log: log}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/api/{collection}", func(r chi.Router) {
		r.Use(h.authMiddleware)
		r.Use(h.collectionMiddleware)
		r.Get("/", h.list)
		r.Post("/", h.upsert)
		r.Get("/{id}", h.get)
		r.Delete("/{id}", h.delete)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if claims.Subject != remote.TokenSubject {
			respondError(w, http.StatusForbidden, "token not issued for sync")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// collectionMiddleware rejects unknown collection names before any SQL runs.
func (h *Handler) collectionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := domain.ParseEntity(chi.URLParam(r, "collection")); err != nil {
			respondError(w, http.StatusNotFound, "invalid route")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func collection(r *http.Request) domain.EntityType {
	e, _ := domain.ParseEntity(chi.URLParam(r, "collection"))
	return e
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := BillFilter{
		PatientID:          q.Get("patientId"),
		ReferringDoctorID:  q.Get("referringDoctorId"),
		ConsultantDoctorID: q.Get("consultantDoctorId"),
		From:               q.Get("from"),
		To:                 q.Get("to"),
		DueOnly:            q.Get("status") == "due",
	}
	records, err := h.store.List(r.Context(), collection(r), f)
	if err != nil {
		h.log.Error().Err(err).Msg("list failed")
		respondError(w, http.StatusInternalServerError, "unable to list records")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Get(r.Context(), collection(r), chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error().Err(err).Msg("get failed")
		respondError(w, http.StatusInternalServerError, "unable to load record")
		return
	}
	if rec == nil {
		respondJSON(w, http.StatusOK, nil)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unable to read body")
		return
	}
	if !json.Valid(body) {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	entity := collection(r)
	id, err := h.store.Upsert(r.Context(), entity, body)
	if errors.Is(err, ErrInvalidRecord) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("collection", string(entity)).Msg("upsert failed")
		respondError(w, http.StatusInternalServerError, "unable to store record")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success", "id": id})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	entity := collection(r)
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), entity, id); err != nil {
		h.log.Error().Err(err).Str("collection", string(entity)).Str("id", id).Msg("delete failed")
		respondError(w, http.StatusInternalServerError, "unable to delete record")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

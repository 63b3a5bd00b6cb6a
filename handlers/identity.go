package handlers

import (
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/facegate/backend/repository"
)

type IdentityHandler struct {
	Repo repository.IdentityRepositoryInterface
}

// identitySummary is the list representation: names and enrollment times,
// no signature payloads
type identitySummary struct {
	Name           string `json:"name"`
	SignatureCount int    `json:"signature_count"`
	EnrolledAt     string `json:"enrolled_at"`
}

func (ih *IdentityHandler) ListIdentities(w http.ResponseWriter, r *http.Request) {
	identities, err := ih.Repo.List()
	if err != nil {
		log.Printf("Error listing identities: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve identities"})
		return
	}

	summaries := make([]identitySummary, 0, len(identities))
	for _, identity := range identities {
		summaries = append(summaries, identitySummary{
			Name:           identity.Name,
			SignatureCount: len(identity.Signatures),
			EnrolledAt:     time.Unix(identity.CreatedAt, 0).UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (ih *IdentityHandler) DeleteIdentity(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing or invalid identity name"})
		return
	}

	if err := ih.Repo.Remove(name); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Identity deleted successfully"})
}

package host

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corbenferris/figjam-plantuml/internal/session"
	"github.com/corbenferris/figjam-plantuml/internal/store"
)

func registerNodeRoutes(r chi.Router, nodes *store.Store, renderServer string) {
	r.Get("/api/nodes", listNodesHandler(nodes))
	r.Post("/api/nodes", createNodeHandler(nodes, renderServer))
	r.Get("/api/nodes/{id}", getNodeHandler(nodes))
	r.Delete("/api/nodes/{id}", deleteNodeHandler(nodes))
	r.Get("/api/nodes/{id}/svg", nodeSVGHandler(nodes))
}

func listNodesHandler(nodes *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := nodes.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if result == nil {
			result = []store.Node{}
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// createNodeHandler inserts a node holding the default diagram. New nodes
// always start from the default state; edits go through the event channel.
func createNodeHandler(nodes *store.Store, renderServer string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := nodes.Create(r.Context(), session.DefaultState(renderServer))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, n)
	}
}

func getNodeHandler(nodes *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, ok := lookupNode(w, r, nodes)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, n)
	}
}

func deleteNodeHandler(nodes *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := nodes.Delete(r.Context(), chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "node not found", http.StatusNotFound)
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func nodeSVGHandler(nodes *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, ok := lookupNode(w, r, nodes)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write([]byte(n.State.Src))
	}
}

// lookupNode resolves the {id} URL parameter, answering 404 or 500 itself
// when it cannot.
func lookupNode(w http.ResponseWriter, r *http.Request, nodes *store.Store) (*store.Node, bool) {
	n, err := nodes.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "node not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

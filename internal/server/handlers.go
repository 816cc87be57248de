package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mailframe/mailframe/internal/patcher"
)

func (s *PreviewServer) routes(mux *http.ServeMux) {
	mux.Handle("GET /{$}", templ.Handler(shellPage()))
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	mux.HandleFunc("GET /api/preview", s.handlePreview)
	mux.HandleFunc("GET /api/schemas", s.handleSchemas)

	mux.HandleFunc("GET /api/source", s.handleGetSource)
	mux.HandleFunc("PUT /api/source", s.handlePutSource)

	mux.HandleFunc("POST /api/components", s.handleAddComponent)
	mux.HandleFunc("DELETE /api/components/{index}", s.handleRemoveComponent)
	mux.HandleFunc("POST /api/components/{index}/duplicate", s.handleDuplicateComponent)
	mux.HandleFunc("POST /api/components/move", s.handleMoveComponent)

	mux.HandleFunc("PUT /api/components/{index}/props", s.handleSetProp)
	mux.HandleFunc("DELETE /api/components/{index}/props/{key}", s.handleDeleteProp)
	mux.HandleFunc("PUT /api/components/{index}/content", s.handleSetContent)
	mux.HandleFunc("PUT /api/base/props", s.handleSetBaseProp)
	mux.HandleFunc("PUT /api/frontmatter", s.handleSetFrontmatter)
	mux.HandleFunc("DELETE /api/frontmatter/{key}", s.handleDeleteFrontmatter)

	mux.HandleFunc("POST /api/patch", s.handlePatch)

	mux.HandleFunc("POST /api/undo", s.handleUndo)
	mux.HandleFunc("POST /api/redo", s.handleRedo)

	mux.HandleFunc("PUT /api/selection", s.handleSelect)
	mux.HandleFunc("POST /api/components/{index}/toggle-expanded", s.handleToggleExpanded)
	mux.HandleFunc("POST /api/components/{index}/toggle-hidden", s.handleToggleHidden)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return 0, false
	}
	return i, true
}

// sessionState is the common success payload: the serialized document plus
// the view state the panel needs to re-render itself.
type sessionState struct {
	Source   string `json:"source"`
	Selected int    `json:"selected"`
}

func (s *PreviewServer) writeState(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, sessionState{
		Source:   s.session.Source(),
		Selected: s.session.Selected(),
	})
}

func (s *PreviewServer) handlePreview(w http.ResponseWriter, _ *http.Request) {
	html, compileErr := s.Preview()
	writeJSON(w, http.StatusOK, map[string]string{
		"html":  html,
		"error": compileErr,
	})
}

func (s *PreviewServer) handleSchemas(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.All())
}

func (s *PreviewServer) handleGetSource(w http.ResponseWriter, _ *http.Request) {
	s.writeState(w)
}

func (s *PreviewServer) handlePutSource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source string `json:"source"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.session.SetSource(req.Source); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.writeState(w)
}

func (s *PreviewServer) handleAddComponent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
		At   int    `json:"at"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if _, ok := s.registry.Lookup(req.Type); !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown component type: " + req.Type})
		return
	}
	s.session.AddComponent(req.Type, req.At)
	s.writeState(w)
}

func (s *PreviewServer) handleRemoveComponent(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	if err := s.session.RemoveComponent(i); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeState(w)
}

func (s *PreviewServer) handleDuplicateComponent(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	if err := s.session.DuplicateComponent(i); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeState(w)
}

func (s *PreviewServer) handleMoveComponent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.session.MoveComponent(req.From, req.To); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeState(w)
}

func (s *PreviewServer) handleSetProp(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.session.SetProp(i, req.Key, req.Value); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeState(w)
}

func (s *PreviewServer) handleDeleteProp(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	if err := s.session.DeleteProp(i, r.PathValue("key")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeState(w)
}

func (s *PreviewServer) handleSetContent(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.session.SetContent(i, req.Content); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeState(w)
}

func (s *PreviewServer) handleSetBaseProp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.session.SetBaseProp(req.Key, req.Value)
	s.writeState(w)
}

func (s *PreviewServer) handleSetFrontmatter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.session.SetFrontmatter(req.Key, req.Value)
	s.writeState(w)
}

func (s *PreviewServer) handleDeleteFrontmatter(w http.ResponseWriter, r *http.Request) {
	s.session.DeleteFrontmatter(r.PathValue("key"))
	s.writeState(w)
}

// handlePatch applies a live style change to the held preview so color and
// spacing tweaks show up without waiting for the compile round trip. The
// document itself is updated through the normal prop route; this endpoint
// only rewrites the preview HTML already on screen.
func (s *PreviewServer) handlePatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index    int    `json:"index"`
		Property string `json:"property"`
		Value    string `json:"value"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	patched, applied := patcher.Patch(s.previewHTML, req.Index, req.Property, req.Value)
	if applied {
		s.previewHTML = patched
	}
	s.mu.Unlock()

	if applied {
		s.broadcast(pushMessage{Type: "preview", HTML: patched})
	}
	writeJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

func (s *PreviewServer) handleUndo(w http.ResponseWriter, _ *http.Request) {
	if !s.session.Undo() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "nothing to undo"})
		return
	}
	s.writeState(w)
}

func (s *PreviewServer) handleRedo(w http.ResponseWriter, _ *http.Request) {
	if !s.session.Redo() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "nothing to redo"})
		return
	}
	s.writeState(w)
}

func (s *PreviewServer) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.session.Select(req.Index)
	s.writeState(w)
}

func (s *PreviewServer) handleToggleExpanded(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	s.session.ToggleExpanded(i)
	s.writeState(w)
}

func (s *PreviewServer) handleToggleHidden(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	s.session.ToggleHidden(i)
	s.writeState(w)
}

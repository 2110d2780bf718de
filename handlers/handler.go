package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"novel_ai/ending"
	"novel_ai/engine"
	"novel_ai/save"
	"novel_ai/templates"
	"novel_ai/transcript"
)

// Handler serves the web player for one session.
type Handler struct {
	Session *engine.Session
	Saves   *save.Manager
	Screen  *Screen
	Title   string
	Logger  *log.Logger
}

func (h *Handler) logf(format string, args ...any) {
	if h.Logger != nil {
		h.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	if err := c.Render(r.Context(), w); err != nil {
		h.logf("handlers: render %s: %v", r.URL.Path, err)
	}
}

// view renders what the engine last showed, or nil before anything was shown.
func (h *Handler) view() templ.Component {
	f := h.Screen.Frame()
	switch {
	case f.Failure != nil:
		return templates.ErrorView("The next chapter could not be written. Please try again.", true)
	case f.Ending != nil:
		return templates.EndingView(*f.Ending, f.Epilogue)
	case f.Line != nil:
		return templates.LineView(*f.Line, h.Session.Snapshot(), h.Session.Project())
	}
	return nil
}

// respond renders the outcome of a session action.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrBusy):
			w.WriteHeader(http.StatusConflict)
			h.render(w, r, templates.Notice("Please wait"))
			return
		case h.Session.State() == engine.Failed:
			h.logf("handlers: %s: %v", r.URL.Path, err)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	c := h.view()
	if c == nil {
		c = templates.StartView()
	}
	h.render(w, r, c)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.render(w, r, templates.Index(h.Title, h.view()))
}

func (h *Handler) StartStory(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Session.Start(r.Context()))
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Session.Advance(r.Context()))
}

func (h *Handler) Choose(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		http.Error(w, "Choice index must be a number.", http.StatusBadRequest)
		return
	}
	h.respond(w, r, h.Session.Choose(r.Context(), index))
}

func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Session.Retry(r.Context()))
}

// Save writes the current state to the slot named by the "slot" form value,
// either a slot number or "quick".
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if h.Session.State() == engine.Idle {
		http.Error(w, "Start a story before saving.", http.StatusBadRequest)
		return
	}
	index, err := slotIndex(r.FormValue("slot"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slot, err := h.Saves.Save(r.Context(), index, strings.TrimSpace(r.FormValue("name")), h.Session.Snapshot())
	if err != nil {
		h.saveError(w, r, err)
		return
	}
	h.render(w, r, templates.Notice("Saved to "+slot.Name))
}

// Load resumes the story from a save slot.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	index, err := slotIndex(r.FormValue("slot"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	state, err := h.Saves.Load(r.Context(), index)
	if err != nil {
		h.saveError(w, r, err)
		return
	}
	h.respond(w, r, h.Session.Resume(r.Context(), state))
}

func (h *Handler) ListSaves(w http.ResponseWriter, r *http.Request) {
	slots, err := h.Saves.List(r.Context())
	if err != nil {
		h.saveError(w, r, err)
		return
	}
	h.render(w, r, templates.SavesView(slots))
}

func (h *Handler) saveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, save.ErrInvalidSlot):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, save.ErrNotFound):
		http.Error(w, "That slot is empty.", http.StatusNotFound)
	default:
		h.logf("handlers: %s: %v", r.URL.Path, err)
		http.Error(w, "The save could not be accessed. Please try again.", http.StatusInternalServerError)
	}
}

// DownloadStory sends the dialogue log as a PDF.
func (h *Handler) DownloadStory(w http.ResponseWriter, r *http.Request) {
	var result *ending.Result
	if res, ok := h.Session.Result(); ok {
		result = &res
	}
	var buf bytes.Buffer
	if err := transcript.WritePDF(&buf, h.Title, h.Session.Log(0), result); err != nil {
		h.logf("handlers: %v", err)
		http.Error(w, "Failed to generate PDF.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="story.pdf"`)
	if _, err := buf.WriteTo(w); err != nil {
		h.logf("handlers: download: %v", err)
	}
}

func slotIndex(value string) (int, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "quick") {
		return save.QuickSlot, nil
	}
	index, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.New("slot must be a number or \"quick\"")
	}
	return index, save.ValidSlot(index)
}

// Routes registers the player's endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", h.Index)
	mux.HandleFunc("POST /start", h.StartStory)
	mux.HandleFunc("POST /advance", h.Advance)
	mux.HandleFunc("POST /choose", h.Choose)
	mux.HandleFunc("POST /retry", h.Retry)
	mux.HandleFunc("POST /save", h.Save)
	mux.HandleFunc("POST /load", h.Load)
	mux.HandleFunc("GET /saves", h.ListSaves)
	mux.HandleFunc("GET /download", h.DownloadStory)
}

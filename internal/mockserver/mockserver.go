package mockserver

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// SearchPath is the path the mock search endpoint is served on.
const SearchPath = "/search.php"

// FixtureName is the file name looked up for a search, e.g. MAD_FUE_2024-07-09_2024-07-16.json.
func FixtureName(from, to, depart, ret string) string {
	return fmt.Sprintf("%s_%s_%s_%s.json", from, to, depart, ret)
}

type handler struct {
	fixturesDir string
	log         logrus.FieldLogger
}

// NewHandler serves canned search responses from fixturesDir. Unknown
// searches get a 404, requests missing a parameter a 400.
func NewHandler(fixturesDir string, log logrus.FieldLogger) http.Handler {
	h := &handler{fixturesDir: fixturesDir, log: log}

	r := mux.NewRouter()
	r.HandleFunc(SearchPath, h.search).Methods(http.MethodGet)
	return r
}

// Start binds the mock search API on the given port (e.g. "8087", or "0" for
// any free port) and serves it in the background. The listener is bound before
// Start returns; srv.Addr holds the bound address. Callers shut it down when done.
func Start(port, fixturesDir string, log logrus.FieldLogger) (*http.Server, error) {
	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("mockserver: listen on port %s: %w", port, err)
	}

	srv := &http.Server{Addr: ln.Addr().String(), Handler: NewHandler(fixturesDir, log)}
	go func() {
		log.WithField("address", srv.Addr).Info("mockserver: listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("mockserver: Serve error")
		}
	}()
	return srv, nil
}

// SearchURL is the loopback URL of the search endpoint served by srv.
func SearchURL(srv *http.Server) (string, error) {
	_, port, err := net.SplitHostPort(srv.Addr)
	if err != nil {
		return "", fmt.Errorf("mockserver: bad address %q: %w", srv.Addr, err)
	}
	return "http://" + net.JoinHostPort("127.0.0.1", port) + SearchPath, nil
}

func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, depart, ret := q.Get("from"), q.Get("to"), q.Get("depart"), q.Get("return")
	if from == "" || to == "" || depart == "" || ret == "" {
		http.Error(w, "from, to, depart and return are required", http.StatusBadRequest)
		return
	}

	name := FixtureName(from, to, depart, ret)
	data, err := os.ReadFile(filepath.Join(h.fixturesDir, filepath.Base(name)))
	if errors.Is(err, os.ErrNotExist) {
		h.log.WithField("fixture", name).Debug("mockserver: no fixture for search")
		http.Error(w, "no flights for this search", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.WithError(err).Error("mockserver: failed to read fixture")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

package mockapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/deividlukks/Fayol-sub007/pkg/httputil"
)

// Fault makes matching requests fail. Method "" matches any method; Path
// is compared against the request path with the API prefix removed.
type Fault struct {
	Method string
	Path   string

	// Times is how many matching requests fail; <= 0 means every one.
	Times int

	Status int
	Body   any
	Header http.Header

	// Drop closes the connection without a response.
	Drop bool

	// Delay is applied before the fault (or the real handler, if Status
	// is 0 and Drop is false).
	Delay time.Duration
}

type faultEntry struct {
	Fault
	remaining int
	unlimited bool
}

type faultSet struct {
	mu      sync.Mutex
	entries []*faultEntry
	hits    map[string]int
}

func newFaultSet() *faultSet {
	return &faultSet{hits: make(map[string]int)}
}

func (fs *faultSet) add(f Fault) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.entries = append(fs.entries, &faultEntry{Fault: f, remaining: f.Times, unlimited: f.Times <= 0})
}

func (fs *faultSet) reset() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.entries = nil
	fs.hits = make(map[string]int)
}

func (fs *faultSet) count(method, path string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.hits[hitKey(method, path)]
}

// take records a hit and returns the first live fault matching the request.
func (fs *faultSet) take(method, path string) (Fault, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.hits[hitKey(method, path)]++
	for i, e := range fs.entries {
		if e.Method != "" && !strings.EqualFold(e.Method, method) {
			continue
		}
		if e.Path != path {
			continue
		}
		if !e.unlimited {
			e.remaining--
			if e.remaining <= 0 {
				fs.entries = append(fs.entries[:i], fs.entries[i+1:]...)
			}
		}
		return e.Fault, true
	}
	return Fault{}, false
}

func hitKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

func (s *Server) faultMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, s.prefix)
		f, ok := s.faults.take(r.Method, path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if f.Delay > 0 {
			select {
			case <-time.After(f.Delay):
			case <-r.Context().Done():
				return
			}
		}

		switch {
		case f.Drop:
			s.dropConnection(w, r)
		case f.Status != 0:
			for k, vs := range f.Header {
				for _, v := range vs {
					w.Header().Add(k, v)
				}
			}
			body := f.Body
			if body == nil {
				body = httputil.ErrorBody{Message: http.StatusText(f.Status)}
			}
			httputil.WriteJSON(w, f.Status, body)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (s *Server) dropConnection(w http.ResponseWriter, r *http.Request) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		httputil.WriteError(w, http.StatusInternalServerError, "connection drop unsupported")
		return
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		s.logger.ComponentWarn(componentMock, "Hijack failed")
		return
	}
	_ = conn.Close()
}

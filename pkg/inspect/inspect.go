package inspect

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/pebble/internal/errors"
	"github.com/vango-dev/pebble/pkg/pebble"
)

// maxBody bounds the size of a write request.
const maxBody = 1 << 20

// CellView is the JSON view of one catalog cell.
type CellView struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Value    any    `json:"value"`
	Live     bool   `json:"live"`
	ReadOnly bool   `json:"readOnly"`
}

// Inspector serves a catalog of cells from one Boundary.
type Inspector struct {
	boundary *pebble.Boundary
	cells    map[string]pebble.Cell
	names    []string
	router   chi.Router
	hub      *hub
	logger   *slog.Logger
	cancel   func()
}

// Option configures an Inspector.
type Option func(*config)

type config struct {
	gatherer    prometheus.Gatherer
	logger      *slog.Logger
	checkOrigin func(*http.Request) bool
}

// WithGatherer sets the source of /metrics. Default: prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *config) {
		c.gatherer = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithCheckOrigin sets the WebSocket origin check. Default: allow all.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(c *config) {
		c.checkOrigin = fn
	}
}

// New creates an Inspector for cells on boundary. Later cells replace
// earlier cells with the same name.
func New(b *pebble.Boundary, cells []pebble.Cell, opts ...Option) *Inspector {
	cfg := &config{
		gatherer:    prometheus.DefaultGatherer,
		logger:      slog.Default(),
		checkOrigin: func(*http.Request) bool { return true },
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger.With("component", "inspector", "manager", b.Manager().ID())
	ins := &Inspector{
		boundary: b,
		cells:    make(map[string]pebble.Cell, len(cells)),
		hub:      newHub(cfg.checkOrigin, logger),
		logger:   logger,
	}
	for _, c := range cells {
		if _, dup := ins.cells[c.Name()]; !dup {
			ins.names = append(ins.names, c.Name())
		}
		ins.cells[c.Name()] = c
	}
	sort.Strings(ins.names)

	ins.cancel = b.Manager().OnWrite(ins.hub.broadcast)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/cells", ins.handleList)
	r.Get("/cells/{name}", ins.handleGet)
	r.Post("/cells/{name}", ins.handleSet)
	r.Get("/ws", ins.hub.handleWebSocket)
	r.Handle("/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	ins.router = r

	return ins
}

// ServeHTTP implements http.Handler.
func (ins *Inspector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ins.router.ServeHTTP(w, r)
}

// Close stops forwarding write events and disconnects WebSocket clients.
func (ins *Inspector) Close() {
	ins.cancel()
	ins.hub.close()
}

func (ins *Inspector) handleList(w http.ResponseWriter, r *http.Request) {
	views := make([]CellView, 0, len(ins.names))
	err := ins.boundary.Do(func(m *pebble.Manager) error {
		for _, name := range ins.names {
			view, err := ins.view(m, ins.cells[name])
			if err != nil {
				return err
			}
			views = append(views, view)
		}
		return nil
	})
	if err != nil {
		ins.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (ins *Inspector) handleGet(w http.ResponseWriter, r *http.Request) {
	cell, ok := ins.lookup(w, r)
	if !ok {
		return
	}

	var view CellView
	err := ins.boundary.Do(func(m *pebble.Manager) (err error) {
		view, err = ins.view(m, cell)
		return err
	})
	if err != nil {
		ins.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (ins *Inspector) handleSet(w http.ResponseWriter, r *http.Request) {
	cell, ok := ins.lookup(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	action, err := pebble.DecodeAction(cell, body)
	if err != nil {
		ins.writeError(w, err)
		return
	}

	var view CellView
	err = ins.boundary.Do(func(m *pebble.Manager) error {
		if _, err := pebble.TrySet(m, cell, action); err != nil {
			return err
		}
		view, err = ins.view(m, cell)
		return err
	})
	if err != nil {
		ins.writeError(w, err)
		return
	}

	ins.logger.Debug("cell written", "cell", cell.Name())
	writeJSON(w, http.StatusOK, view)
}

func (ins *Inspector) lookup(w http.ResponseWriter, r *http.Request) (pebble.Cell, bool) {
	name := chi.URLParam(r, "name")
	cell, ok := ins.cells[name]
	if !ok {
		ins.writeError(w, errors.New("P032").WithCell(name))
	}
	return cell, ok
}

// view reads cell through m, constructing it if needed.
func (ins *Inspector) view(m *pebble.Manager, cell pebble.Cell) (CellView, error) {
	live := m.Has(cell)
	value, err := pebble.TryGet(m, cell)
	if err != nil {
		return CellView{}, err
	}
	return CellView{
		Name:     cell.Name(),
		Kind:     cell.Kind().String(),
		Value:    value,
		Live:     live,
		ReadOnly: !cell.Kind().Writable(),
	}, nil
}

func (ins *Inspector) writeError(w http.ResponseWriter, err error) {
	pe := errors.FromError(err, "P002")
	status := statusFor(pe.Code)
	if status == http.StatusInternalServerError {
		ins.logger.Error("inspector request failed", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, pe.FormatJSON())
}

func statusFor(code string) int {
	switch code {
	case "P032":
		return http.StatusNotFound
	case "P005":
		return http.StatusBadRequest
	case "P004", "P010", "P011", "P012":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-freelance-orders/internal/kafka"
	"github.com/ariefcatur/go-freelance-orders/internal/market"
	"github.com/ariefcatur/go-freelance-orders/internal/redisx"
)

const requestTimeout = 3 * time.Second

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Handler serves the users, orders and offers routes. Cache and Events are
// optional and may be nil.
type Handler struct {
	Repo    *market.Repo
	Cache   *redisx.ItemCache
	Events  Publisher
	Service string

	validate *validator.Validate
}

func NewHandler(repo *market.Repo, cache *redisx.ItemCache, events Publisher, service string) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{Repo: repo, Cache: cache, Events: events, Service: service, validate: v}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Get("/{id}", h.getUser)
		r.Put("/{id}", h.updateUser)
		r.Delete("/{id}", h.deleteUser)
	})
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}", h.updateOrder)
		r.Delete("/{id}", h.deleteOrder)
	})
	r.Route("/offers", func(r chi.Router) {
		r.Get("/", h.listOffers)
		r.Post("/", h.createOffer)
		r.Get("/{id}", h.getOffer)
		r.Put("/{id}", h.updateOffer)
		r.Delete("/{id}", h.deleteOffer)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func created(w http.ResponseWriter, collection string, id int64) {
	w.Header().Set("Location", collection+"/"+strconv.FormatInt(id, 10))
	w.WriteHeader(http.StatusCreated)
}

// fail maps store errors to a status code.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, market.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, market.ErrReference):
		writeError(w, http.StatusConflict, "referenced row is missing or still in use")
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("store failure")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// decode reads a JSON body into dst and checks required fields. On failure it
// has already written a 400.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	// the body must hold exactly one JSON value
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json: unexpected data after body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string { return fe.Field() })
			writeError(w, http.StatusBadRequest, "missing fields: "+strings.Join(fields, ", "))
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// serveItem answers an item GET, going through the cache when one is configured.
func serveItem[T any](h *Handler, w http.ResponseWriter, r *http.Request, entity string, load func(context.Context, int64) (T, error)) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	b, err := h.Cache.Get(ctx, entity, id)
	if err != nil {
		log.Warn().Err(err).Str("entity", entity).Int64("id", id).Msg("cache read failed")
	} else if b != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}

	row, err := load(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	b, err = json.Marshal(row)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.Cache.Set(ctx, entity, id, b)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// changed invalidates the cached item and publishes a change event.
func (h *Handler) changed(ctx context.Context, r *http.Request, eventType, entity string, id int64, row any) {
	if err := h.Cache.Invalidate(ctx, entity, id); err != nil {
		log.Warn().Err(err).Str("entity", entity).Int64("id", id).Msg("cache invalidate failed")
	}
	if h.Events == nil {
		return
	}

	payload := market.EntityChangedPayload{Entity: entity, ID: id}
	if row != nil {
		payload.Row = kafkax.MustMarshal(row)
	}
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: market.EntityKey(entity, id),
		Payload:       kafkax.MustMarshal(payload),
	}
	h.Events.Publish(market.PartitionKey(entity, id), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}
